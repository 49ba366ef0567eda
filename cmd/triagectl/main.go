package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
)

func newRootCmd(out io.Writer) *cobra.Command {
	var (
		apiFlag     string
		timeoutFlag time.Duration
	)
	rootCmd := &cobra.Command{
		Use:           "triagectl",
		Short:         "CLI client for the email triage REST API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	defaultAPI := os.Getenv("TRIAGE_API")
	if defaultAPI == "" {
		defaultAPI = "http://localhost:8080"
	}
	rootCmd.PersistentFlags().StringVarP(&apiFlag, "api", "a", defaultAPI, "Triage service base URL (env TRIAGE_API)")
	rootCmd.PersistentFlags().DurationVar(&timeoutFlag, "timeout", 60*time.Second, "Request timeout")

	client := func() *apiClient { return newAPIClient(apiFlag, timeoutFlag) }
	emit := func(data []byte, err error) error {
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(out, string(data))
		return nil
	}

	// ingest
	var subject, body, from, bodyFile string
	ingestCmd := &cobra.Command{
		Use:   "ingest",
		Short: "Ingest an email and print its classification",
		RunE: func(cmd *cobra.Command, args []string) error {
			if bodyFile != "" {
				data, err := os.ReadFile(bodyFile)
				if err != nil {
					return err
				}
				body = string(data)
			}
			if subject == "" || body == "" || from == "" {
				return fmt.Errorf("--subject, --from and --body (or --body-file) required")
			}
			return emit(client().ingest(subject, body, from, time.Now()))
		},
	}
	ingestCmd.Flags().StringVarP(&subject, "subject", "s", "", "Email subject (required)")
	ingestCmd.Flags().StringVarP(&from, "from", "f", "", "Sender address (required)")
	ingestCmd.Flags().StringVarP(&body, "body", "b", "", "Email body")
	ingestCmd.Flags().StringVar(&bodyFile, "body-file", "", "Read the email body from a file")
	rootCmd.AddCommand(ingestCmd)

	// list
	var limit int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List recent emails, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return emit(client().list(limit))
		},
	}
	listCmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of emails")
	rootCmd.AddCommand(listCmd)

	// show
	rootCmd.AddCommand(&cobra.Command{
		Use:   "show EMAIL_ID",
		Short: "Show one email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return emit(client().show(args[0]))
		},
	})

	// sample
	rootCmd.AddCommand(&cobra.Command{
		Use:   "sample",
		Short: "Show a random stored email",
		RunE: func(cmd *cobra.Command, args []string) error {
			return emit(client().sample())
		},
	})

	// reassign
	var team string
	reassignCmd := &cobra.Command{
		Use:   "reassign EMAIL_ID",
		Short: "Route an email to another team",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return emit(client().reassign(args[0], team))
		},
	}
	reassignCmd.Flags().StringVarP(&team, "team", "t", "", "New team (required)")
	_ = reassignCmd.MarkFlagRequired("team")
	rootCmd.AddCommand(reassignCmd)

	// draft
	rootCmd.AddCommand(&cobra.Command{
		Use:   "draft EMAIL_ID",
		Short: "Generate a reply draft (not saved)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return emit(client().draft(args[0]))
		},
	})

	// save-reply
	var reply string
	saveCmd := &cobra.Command{
		Use:   "save-reply EMAIL_ID",
		Short: "Save the agent reply for an email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if reply == "" {
				return fmt.Errorf("--reply required")
			}
			return emit(client().saveReply(args[0], reply))
		},
	}
	saveCmd.Flags().StringVarP(&reply, "reply", "r", "", "Reply text (required)")
	rootCmd.AddCommand(saveCmd)

	// feedback
	rootCmd.AddCommand(&cobra.Command{
		Use:   "feedback EMAIL_ID",
		Short: "Rate the saved reply's tone, clarity and helpfulness",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return emit(client().feedback(args[0]))
		},
	})

	return rootCmd
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
