package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"todolist/internal/controller"
	"todolist/internal/export"
	"todolist/internal/models"
)

// viewFlags adds the filter, search and sort flags shared by list and export.
func viewFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("filter", "f", "all", "Filter (all, active, done)")
	cmd.Flags().StringP("search", "s", "", "Case-insensitive title search")
	cmd.Flags().Bool("desc", false, "Sort by date, latest first")
}

func applyViewFlags(cmd *cobra.Command, c *controller.Controller) error {
	ctx := cmd.Context()
	filter, _ := cmd.Flags().GetString("filter")
	search, _ := cmd.Flags().GetString("search")
	desc, _ := cmd.Flags().GetBool("desc")

	mode, err := models.ParseFilterMode(filter)
	if err != nil {
		return err
	}
	for _, command := range []controller.Command{
		controller.SetFilter{Mode: mode},
		controller.SetSearch{Text: search},
		controller.SetSort{Ascending: !desc},
	} {
		if _, err := c.Dispatch(ctx, command); err != nil {
			return err
		}
	}
	return nil
}

func parseTaskID(s string) (models.TaskID, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid task id %q", s)
	}
	return models.TaskID(id), nil
}

func printView(w io.Writer, tasks []models.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks found.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, t := range tasks {
		mark := "[ ]"
		if t.Done {
			mark = "[x]"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", t.ID, mark, t.Title, models.FormatDate(t.Date))
	}
	tw.Flush()
}

// withController loads the app, runs fn and prints the resulting view.
func withController(cmd *cobra.Command, prompter controller.Prompter, fn func(ctx context.Context, c *controller.Controller) error) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	c := a.controller(prompter, out)
	if err := fn(cmd.Context(), c); err != nil {
		return err
	}
	if err := a.store.PersistErr(); err != nil {
		return fmt.Errorf("failed to save tasks: %w", err)
	}
	printView(out, c.View())
	return nil
}

func listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withController(cmd, nil, func(_ context.Context, c *controller.Controller) error {
				return applyViewFlags(cmd, c)
			})
		},
	}
	viewFlags(cmd)
	return cmd
}

func addCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add [title]",
		Short: "Add a task to the top of the list",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dateStr, _ := cmd.Flags().GetString("date")
			date, err := models.ParseDate(dateStr)
			if err != nil {
				return err
			}
			return withController(cmd, nil, func(ctx context.Context, c *controller.Controller) error {
				_, err := c.Dispatch(ctx, controller.CreateTask{Title: strings.Join(args, " "), Date: date})
				return err
			})
		},
	}
	cmd.Flags().StringP("date", "d", "", "Due date (YYYY-MM-DD)")
	return cmd
}

func editCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit [id]",
		Short: "Change the title or date of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			draft := controller.EditDraft{ID: id}
			if cmd.Flags().Changed("title") {
				title, _ := cmd.Flags().GetString("title")
				draft.Title = &title
			}
			if cmd.Flags().Changed("date") {
				dateStr, _ := cmd.Flags().GetString("date")
				if draft.Date, err = models.ParseDate(dateStr); err != nil {
					return err
				}
				draft.ClearDate = draft.Date == nil
			}

			return withController(cmd, nil, func(ctx context.Context, c *controller.Controller) error {
				res, err := c.Dispatch(ctx, controller.BeginEdit{ID: id})
				if err != nil {
					return err
				}
				if res.Task == nil {
					return fmt.Errorf("task %d not found", id)
				}
				for _, command := range []controller.Command{draft, controller.SaveEdit{ID: id}} {
					if _, err := c.Dispatch(ctx, command); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().StringP("title", "t", "", "New title")
	cmd.Flags().StringP("date", "d", "", "New due date (YYYY-MM-DD); empty clears it")
	return cmd
}

func doneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done [id]",
		Short: "Toggle whether a task is done",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			return withController(cmd, nil, func(ctx context.Context, c *controller.Controller) error {
				res, err := c.Dispatch(ctx, controller.ToggleTask{ID: id})
				if err == nil && res.Task == nil {
					return fmt.Errorf("task %d not found", id)
				}
				return err
			})
		},
	}
}

func rmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm [id]",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			var prompter controller.Prompter = newStdinPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
			if yes, _ := cmd.Flags().GetBool("yes"); yes {
				prompter = nil
			}
			return withController(cmd, prompter, func(ctx context.Context, c *controller.Controller) error {
				_, err := c.Dispatch(ctx, controller.DeleteTask{ID: id})
				if errors.Is(err, controller.ErrDeleteDeclined) {
					return nil
				}
				return err
			})
		},
	}
	cmd.Flags().BoolP("yes", "y", false, "Delete without asking")
	return cmd
}

func moveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move [source-id] [target-id]",
		Short: "Move a task to another task's position",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			target, err := parseTaskID(args[1])
			if err != nil {
				return err
			}
			return withController(cmd, nil, func(ctx context.Context, c *controller.Controller) error {
				_, err := c.Dispatch(ctx, controller.ReorderTask{Source: source, Target: target})
				return err
			})
		},
	}
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the current view as JSON, CSV or PDF",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatStr, _ := cmd.Flags().GetString("format")
			format, err := export.ParseFormat(formatStr)
			if err != nil {
				return err
			}
			output, _ := cmd.Flags().GetString("output")

			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			c := a.controller(nil, cmd.ErrOrStderr())
			if err := applyViewFlags(cmd, c); err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", output, err)
				}
				defer f.Close()
				w = f
			}
			return export.Write(w, c.View(), format)
		},
	}
	viewFlags(cmd)
	cmd.Flags().String("format", "json", "Output format (json, csv, pdf)")
	cmd.Flags().StringP("output", "o", "-", "Output file, - for stdout")
	return cmd
}

// stdinPrompter asks yes/no questions on the terminal.
type stdinPrompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newStdinPrompter(in io.Reader, out io.Writer) *stdinPrompter {
	return &stdinPrompter{in: bufio.NewReader(in), out: out}
}

func (p *stdinPrompter) Confirm(_ context.Context, message string) bool {
	fmt.Fprintf(p.out, "%s [y/N] ", message)
	answer, _ := p.in.ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
