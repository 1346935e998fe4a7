package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/spf13/cobra"

	"science-helper/handler"
	"science-helper/internal/config"
	"science-helper/internal/logger"
	"science-helper/internal/render"
	"science-helper/internal/tui"
	"science-helper/internal/usecase"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "science-helper",
		Short: "Explain English science sentences in simple Marathi",
		Long: "science-helper splits English science text into sentences and builds a\n" +
			"learning table: each sentence, its direct Marathi meaning and a simple\n" +
			"teacher-style Marathi explanation.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          runInteractive,
	}
	root.AddCommand(newExplainCmd(), newLambdaCmd())
	return root
}

func runInteractive(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	// Log lines would tear the alt screen.
	log := logger.Discard()

	svc, err := newService(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	return tui.Run(cmd.Context(), svc, cfg.Limits.RunTimeout)
}

func newExplainCmd() *cobra.Command {
	var (
		text   string
		format string
	)
	cmd := &cobra.Command{
		Use:   "explain [file]",
		Short: "Explain text once and print the learning table",
		Long: "Explain reads text from --text, from the given file, or from stdin when\n" +
			"neither is set (or the file is \"-\"), and prints the result.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !validFormat(format) {
				return fmt.Errorf("unknown format %q (want table, markdown, json or yaml)", format)
			}
			input, err := readInput(cmd.InOrStdin(), text, args)
			if err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := logger.New(cfg.Log)

			svc, err := newService(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Limits.RunTimeout)
			defer cancel()

			out, runErr := svc.Process(ctx, input)
			var uerr *usecase.Error
			if runErr != nil && !(errors.As(runErr, &uerr) && uerr.Code == usecase.ErrorCanceled) {
				return runErr
			}

			rendered, err := render.Export(out, format)
			if err != nil {
				return err
			}
			if _, err := io.WriteString(cmd.OutOrStdout(), rendered); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			// Partial output is printed before a cancellation is reported.
			return runErr
		},
	}
	cmd.Flags().StringVarP(&text, "text", "t", "", "text to explain")
	cmd.Flags().StringVarP(&format, "format", "f", render.FormatTable, "output format: table, markdown, json or yaml")
	return cmd
}

func newLambdaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lambda",
		Short: "Serve the API Gateway handler inside AWS Lambda",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := logger.New(cfg.Log)

			svc, err := newService(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}

			h, err := handler.NewHandler(timeoutProcessor{next: svc, timeout: cfg.Limits.RunTimeout}, log)
			if err != nil {
				return fmt.Errorf("create handler: %w", err)
			}

			lambda.StartWithOptions(h.Handle, lambda.WithContext(cmd.Context()))
			return nil
		},
	}
}

// timeoutProcessor bounds each run by RUN_TIMEOUT on top of the invocation
// deadline.
type timeoutProcessor struct {
	next    handler.Processor
	timeout time.Duration
}

func (p timeoutProcessor) Process(ctx context.Context, text string) (usecase.ProcessOutput, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	return p.next.Process(ctx, text)
}

func validFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case render.FormatTable, render.FormatMarkdown, render.FormatJSON, render.FormatYAML:
		return true
	default:
		return false
	}
}

// readInput picks the text source: --text, then a file argument, then stdin.
func readInput(stdin io.Reader, text string, args []string) (string, error) {
	if text != "" {
		return text, nil
	}
	if len(args) == 1 && args[0] != "-" {
		buf, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("read input file: %w", err)
		}
		return string(buf), nil
	}
	buf, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(buf), nil
}
