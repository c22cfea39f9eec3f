package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/hylla/actionboard/internal/app"
	"github.com/hylla/actionboard/internal/domain"
	"github.com/spf13/cobra"
)

func newTasksCommand(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List and manage board tasks",
	}
	cmd.AddCommand(
		newTasksListCommand(opts),
		newTasksMoveCommand(opts),
		newTasksStepCommand(opts, "advance", "Move a task one status forward", (*app.Board).Advance),
		newTasksStepCommand(opts, "regress", "Move a task one status back", (*app.Board).Regress),
		newTasksDeleteCommand(opts),
	)
	return cmd
}

func newTasksListCommand(opts *cliOptions) *cobra.Command {
	var (
		statusFlag string
		asJSON     bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks, optionally filtered by status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var filter app.TaskFilter
			if strings.TrimSpace(statusFlag) != "" {
				status, err := domain.ParseStatus(statusFlag)
				if err != nil {
					return fmt.Errorf("--status %q: %w", statusFlag, err)
				}
				filter.Status = status
			}
			s, err := opts.openSession(cmd, "tasks list")
			if err != nil {
				return err
			}
			defer s.Close()
			client, err := s.client()
			if err != nil {
				return err
			}
			board := app.NewBoard(client)
			board.SetFilter(filter)
			board.ApplyFetch(board.FetchAll()(cmd.Context()))
			if err := board.Err(); err != nil {
				return errors.New(app.FailureDetail(err))
			}
			tasks := board.Tasks()
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), tasks)
			}
			writeTaskTable(cmd.OutOrStdout(), tasks)
			return nil
		},
	}
	cmd.Flags().StringVarP(&statusFlag, "status", "s", "", "filter by status (todo, in_progress, done)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print tasks as JSON")
	return cmd
}

func newTasksMoveCommand(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "move ID STATUS",
		Short: "Set a task's status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			status, err := domain.ParseStatus(args[1])
			if err != nil {
				return fmt.Errorf("status %q: %w", args[1], err)
			}
			return withBoard(cmd, opts, "tasks move", func(ctx context.Context, s *session, board *app.Board) (string, error) {
				req, err := board.SetStatus(id, status)
				if err != nil {
					return "", err
				}
				if alert := board.ApplyStatus(req(ctx)); alert != nil {
					return "", errors.New(alert.Message)
				}
				return fmt.Sprintf("task %d moved to %s", id, status), nil
			})
		},
	}
}

func newTasksStepCommand(opts *cliOptions, name, short string, step func(*app.Board, int64) (app.Request[app.StatusResult], error)) *cobra.Command {
	return &cobra.Command{
		Use:   name + " ID",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			return withBoard(cmd, opts, "tasks "+name, func(ctx context.Context, s *session, board *app.Board) (string, error) {
				req, err := step(board, id)
				if err != nil {
					return "", err
				}
				res := req(ctx)
				if alert := board.ApplyStatus(res); alert != nil {
					return "", errors.New(alert.Message)
				}
				return fmt.Sprintf("task %d moved to %s", id, res.Status), nil
			})
		},
	}
}

func newTasksDeleteCommand(opts *cliOptions) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			return withBoard(cmd, opts, "tasks delete", func(ctx context.Context, s *session, board *app.Board) (string, error) {
				prompt, err := board.PrepareDelete(id)
				if err != nil {
					return "", err
				}
				confirmed := true
				if !yes && s.cfg.Confirm.Delete {
					reader := bufio.NewReader(cmd.InOrStdin())
					confirmed, err = promptYesNo(reader, cmd.ErrOrStderr(), prompt.Question()+" [y/N]: ", false)
					if err != nil {
						return "", err
					}
				}
				req, ok := board.ConfirmDelete(prompt, confirmed)
				if !ok {
					return "cancelled", nil
				}
				if alert := board.ApplyDelete(req(ctx)); alert != nil {
					return "", errors.New(alert.Message)
				}
				return fmt.Sprintf("task %d deleted", id), nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

// withBoard loads the board cache, runs fn against it, and prints its message.
func withBoard(cmd *cobra.Command, opts *cliOptions, command string, fn func(context.Context, *session, *app.Board) (string, error)) error {
	s, err := opts.openSession(cmd, command)
	if err != nil {
		return err
	}
	defer s.Close()
	client, err := s.client()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	board := app.NewBoard(client)
	board.ApplyFetch(board.FetchAll()(ctx))
	if err := board.Err(); err != nil {
		return errors.New(app.FailureDetail(err))
	}
	msg, err := fn(ctx, s, board)
	if err != nil {
		s.logger.Error("command flow failed", "command", command, "err", err)
		return err
	}
	s.logger.Info("command flow complete", "command", command)
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), msg)
	return nil
}

// writeTaskTable renders tasks as a bordered table.
func writeTaskTable(out io.Writer, tasks []domain.Task) {
	if len(tasks) == 0 {
		_, _ = fmt.Fprintln(out, "no tasks")
		return
	}
	rows := make([][]string, 0, len(tasks))
	for _, task := range tasks {
		confidence := ""
		if task.Confidence != nil {
			confidence = fmt.Sprintf("%.0f%%", *task.Confidence*100)
		}
		rows = append(rows, []string{
			strconv.FormatInt(task.ID, 10),
			string(task.Status),
			task.Task,
			task.AssigneeLabel(),
			task.DueLabel(),
			confidence,
		})
	}
	cell := lipgloss.NewStyle().Padding(0, 1)
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "STATUS", "TASK", "ASSIGNEE", "DUE", "CONF").
		Rows(rows...).
		StyleFunc(func(_, _ int) lipgloss.Style { return cell })
	_, _ = fmt.Fprintln(out, t.String())
}

func parseTaskID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task id %q", raw)
	}
	return id, nil
}

// promptYesNo reads a y/n answer; an empty line takes the default.
func promptYesNo(reader *bufio.Reader, output io.Writer, prompt string, defaultYes bool) (bool, error) {
	for {
		value, err := readPromptLine(reader, output, prompt)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return defaultYes, nil
			}
			return false, err
		}
		switch strings.ToLower(value) {
		case "":
			return defaultYes, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		default:
			_, _ = fmt.Fprintln(output, "please answer y or n")
		}
	}
}

// readPromptLine renders one prompt and returns the trimmed response.
func readPromptLine(reader *bufio.Reader, output io.Writer, prompt string) (string, error) {
	if _, err := fmt.Fprint(output, prompt); err != nil {
		return "", fmt.Errorf("write prompt: %w", err)
	}
	line, err := reader.ReadString('\n')
	switch {
	case err == nil:
		return strings.TrimSpace(line), nil
	case errors.Is(err, io.EOF):
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			return "", io.EOF
		}
		return trimmed, nil
	default:
		return "", fmt.Errorf("read prompt value: %w", err)
	}
}
