package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hiver-ai/email-triage/internal/oracle"
)

func TestGenerate_MapsParams(t *testing.T) {
	var got generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"response":"Dear customer, ...","done":true}`))
	}))
	defer srv.Close()

	p := New(srv.URL, "llama3", 5*time.Second)
	out, err := p.Generate(context.Background(), "draft a reply", oracle.Params{MaxTokens: 500, Temperature: 0.7})
	require.NoError(t, err)
	assert.Equal(t, "Dear customer, ...", out)
	assert.Equal(t, "llama3", got.Model)
	assert.False(t, got.Stream)
	assert.Equal(t, 500, got.Options.NumPredict)
	assert.InDelta(t, 0.7, got.Options.Temperature, 1e-9)
}

func TestGenerate_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"model 'llama3' not found"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, "llama3", 5*time.Second).Generate(context.Background(), "p", oracle.Params{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestGenerate_EmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"response":"  "}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, "llama3", 5*time.Second).Generate(context.Background(), "p", oracle.Params{})
	assert.ErrorIs(t, err, oracle.ErrEmptyCompletion)
}

func TestHealthPing_ModelPresence(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"models":[{"name":"llama3:latest"}]}`))
	}))
	defer srv.Close()

	assert.NoError(t, New(srv.URL, "llama3", time.Second).HealthPing(context.Background()))
	assert.Error(t, New(srv.URL, "mistral", time.Second).HealthPing(context.Background()))
}

func TestNew_AddsScheme(t *testing.T) {
	p := New("localhost:11434", "llama3", time.Second)
	assert.Equal(t, "http://localhost:11434", p.client.BaseURL)
}
