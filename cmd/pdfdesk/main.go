// Command pdfdesk submits PDFs to the document service and renders the sales
// report locally.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dgallion1/pdfdesk/internal/config"
	"github.com/dgallion1/pdfdesk/internal/remote"
	"github.com/dgallion1/pdfdesk/internal/submit"
)

var (
	verbose    bool
	serviceURL string
)

func main() {
	cfg := config.Load()

	rootCmd := &cobra.Command{
		Use:           "pdfdesk",
		Short:         "Upload, validate and preview PDF documents",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log request details to stderr")
	rootCmd.PersistentFlags().StringVar(&serviceURL, "service", cfg.ServiceURL, "Document service base URL")

	rootCmd.AddCommand(
		submitCommand("upload", "Upload a PDF and print its file key", submit.KindStore, cfg),
		submitCommand("convert", "Validate a PDF and convert it to PDF/A-3 when needed", submit.KindValidateConvert, cfg),
		reportCommand(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func submitCommand(use, short string, kind submit.Kind, cfg config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   use + " FILE",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.ServiceURL = serviceURL
			if err := cfg.ValidateClient(); err != nil {
				return err
			}
			log := newLogger()

			client := remote.NewClient(cfg.ServiceURL, cfg.APIKey, nil)
			defer client.Close()
			ctrl := submit.NewController(client, cfg.RequestTimeout, log)

			s, err := runSubmit(cmd.Context(), ctrl, kind, args[0], log)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), s.Message())
			if s.Phase == submit.PhaseFailed {
				return errors.New("request failed")
			}
			return nil
		},
	}
}

// runSubmit selects the file at path and waits for the request to settle.
func runSubmit(ctx context.Context, ctrl *submit.Controller, kind submit.Kind, path string, log *slog.Logger) (submit.Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return submit.Session{}, fmt.Errorf("read file: %w", err)
	}
	f := submit.NewFile(filepath.Base(path), data)
	if !f.LooksLikePDF() {
		log.Warn("file does not look like a PDF", "file", f.Name, "type", f.Type)
	}
	ctrl.SelectFile(f)

	ch, err := ctrl.Submit(ctx, kind)
	if err != nil {
		return submit.Session{}, err
	}
	select {
	case s := <-ch:
		return s, nil
	case <-ctx.Done():
		return submit.Session{}, ctx.Err()
	}
}
