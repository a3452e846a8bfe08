package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/adanyl0v/todo-planner/internal/client"
	"github.com/adanyl0v/todo-planner/internal/models"
	"github.com/adanyl0v/todo-planner/internal/tasklist"
	"github.com/adanyl0v/todo-planner/internal/tui"
)

const apiURLEnv = "TODO_API_URL"

type cli struct {
	apiURL  string
	logFile string

	logger  zerolog.Logger
	closeFn func() error
}

func rootCmd() *cobra.Command {
	c := &cli{logger: zerolog.Nop()}

	defaultAPIURL := os.Getenv(apiURLEnv)
	if defaultAPIURL == "" {
		defaultAPIURL = client.DefaultBaseURL
	}

	cmd := &cobra.Command{
		Use:           "todo",
		Short:         "Plan tasks against the todo API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.openLog()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return c.closeLog()
		},
		RunE: c.runTUI,
	}

	cmd.PersistentFlags().StringVar(&c.apiURL, "api", defaultAPIURL, "Base URL of the todo API (env "+apiURLEnv+")")
	cmd.PersistentFlags().StringVar(&c.logFile, "log-file", "", "Append debug logs to this file")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "tui",
			Short: "Open the interactive planner",
			Args:  cobra.NoArgs,
			RunE:  c.runTUI,
		},
		c.listCmd(),
		c.addCmd(),
		c.statusCmd(),
		c.rmCmd(),
	)
	return cmd
}

func (c *cli) openLog() error {
	if c.logFile == "" {
		return nil
	}

	f, err := os.OpenFile(c.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	c.logger = zerolog.New(f).
		Level(zerolog.DebugLevel).
		With().
		Timestamp().
		Str("api", c.apiURL).
		Logger()
	c.closeFn = f.Close
	return nil
}

func (c *cli) closeLog() error {
	if c.closeFn == nil {
		return nil
	}
	return c.closeFn()
}

func (c *cli) client() *client.Client {
	return client.New(c.apiURL, client.WithLogger(c.logger))
}

func (c *cli) runTUI(cmd *cobra.Command, _ []string) error {
	return tui.Run(cmd.Context(), c.client(), tui.WithLogger(c.logger))
}

func (c *cli) listCmd() *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks ordered by due date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter := tasklist.FilterAll
			if status != "" {
				s, err := models.ParseStatus(status)
				if err != nil {
					return err
				}
				filter = tasklist.Filter(s)
			}

			tasks, err := c.client().List(cmd.Context())
			if err != nil {
				return err
			}

			list := tasklist.New()
			list.Replace(tasks)
			list.SetFilter(filter)
			writeTasks(cmd.OutOrStdout(), list.Visible())
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", `Only show tasks with this status ("Not Started", "In Progress", "Completed")`)
	return cmd
}

func (c *cli) addCmd() *cobra.Command {
	var input client.CreateInput

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			task, err := c.client().Create(cmd.Context(), input)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Task added successfully! (%s)\n", task.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&input.Title, "title", "", "Task title")
	cmd.Flags().StringVar(&input.Description, "description", "", "Task description")
	cmd.Flags().StringVar(&input.DueDate, "due", "", "Due date ("+models.DueDateLayout+")")
	cmd.Flags().StringVar(&input.Status, "status", "", "Initial status")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("due")
	return cmd
}

func (c *cli) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <status>",
		Short: "Change the status of a task",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := models.ParseStatus(strings.Join(args[1:], " "))
			if err != nil {
				return err
			}

			task, err := c.client().SetStatus(cmd.Context(), args[0], status)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", task.Title, task.Status)
			return nil
		},
	}
}

func (c *cli) rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := c.client().Delete(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Task deleted.")
			return nil
		},
	}
}

func writeTasks(w io.Writer, tasks []*models.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks found for this status.")
		return
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "TITLE", "STATUS", "DUE")
	for _, task := range tasks {
		t.Row(task.ID, task.Title, string(task.Status), task.DueDate.Format("Jan 2"))
	}
	fmt.Fprintln(w, t.String())
}
