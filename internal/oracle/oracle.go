// Package oracle defines the text-generation collaborator used for
// classification, reply drafting and feedback scoring.
package oracle

import (
	"context"
	"errors"
)

// Params are the generation knobs passed with each prompt.
type Params struct {
	MaxTokens   int
	Temperature float64
}

// Oracle turns a prompt into generated text. Implementations may fail or
// return malformed output; callers decide whether that degrades or surfaces.
type Oracle interface {
	Generate(ctx context.Context, prompt string, p Params) (string, error)
}

// ErrEmptyCompletion is returned by providers when the service answered
// successfully but produced no text.
var ErrEmptyCompletion = errors.New("oracle returned an empty completion")

// Func adapts a plain function to the Oracle interface.
type Func func(ctx context.Context, prompt string, p Params) (string, error)

func (f Func) Generate(ctx context.Context, prompt string, p Params) (string, error) {
	return f(ctx, prompt, p)
}
