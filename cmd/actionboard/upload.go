package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/hylla/actionboard/internal/app"
	"github.com/hylla/actionboard/internal/domain"
	"github.com/spf13/cobra"
)

func newUploadCommand(opts *cliOptions) *cobra.Command {
	var (
		destinationFlag string
		asJSON          bool
	)
	cmd := &cobra.Command{
		Use:   "upload FILE",
		Short: "Upload a meeting recording and extract action items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.openSession(cmd, "upload")
			if err != nil {
				return err
			}
			defer s.Close()

			raw := destinationFlag
			if strings.TrimSpace(raw) == "" {
				raw = s.cfg.Upload.DefaultDestination
			}
			destination, err := domain.ParseDestination(raw)
			if err != nil {
				return fmt.Errorf("--destination %q: %w", raw, err)
			}
			client, err := s.client()
			if err != nil {
				return err
			}

			upload := app.NewUpload(client, s.uploadOptions(destination)...)
			file, err := upload.SelectFile(args[0])
			if err != nil {
				return err
			}
			if !upload.AcceptsHint(file.Name) {
				s.logger.Warn("file extension outside the accepted list", "file", file.Name, "accepted", strings.Join(upload.AcceptedExtensions(), ","))
			}
			req, ok := upload.Submit()
			if !ok {
				return app.ErrNoFileSelected
			}
			s.logger.Info("uploading", "file", file.Name, "bytes", file.Size, "destination", destination)
			upload.ApplyOutcome(req(cmd.Context()))

			status, detail := upload.Status()
			if status == domain.WorkflowError {
				s.logger.Error("workflow failed", "file", file.Name, "detail", detail)
				return errors.New(detail)
			}
			result, _ := upload.Result()
			s.logger.Info("workflow complete", "job", result.JobName, "items", result.ActionItemsCount)
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			writeResultText(cmd.OutOrStdout(), app.RenderResult(result))
			return nil
		},
	}
	cmd.Flags().StringVarP(&destinationFlag, "destination", "d", "", "notion or internal (default from config)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw workflow result as JSON")
	return cmd
}

// writeResultText prints a rendered workflow result.
func writeResultText(out io.Writer, view app.ResultView) {
	_, _ = fmt.Fprintln(out, view.Headline)
	if view.Summary != "" {
		_, _ = fmt.Fprintf(out, "\n%s\n", view.Summary)
	}
	if len(view.Items) > 0 {
		_, _ = fmt.Fprintln(out)
		for _, item := range view.Items {
			_, _ = fmt.Fprintf(out, "  [%s] %s (%s)\n", item.Badge, item.Task, item.Assignee)
		}
	}
	if view.Hint != "" {
		_, _ = fmt.Fprintf(out, "\n%s\n", view.Hint)
	}
}

func writeJSON(out io.Writer, v any) error {
	encoded, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	encoded = append(encoded, '\n')
	if _, err := out.Write(encoded); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}
