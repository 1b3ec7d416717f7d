package cli

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/tgienger/projman/internal/models"
	"github.com/tgienger/projman/internal/session"
)

// taskFilter collects the filter flags of the tasks command
type taskFilter struct {
	notDone bool
	prio    string
	takenBy string
	search  string
}

// matcher combines every filter that was given; no filters match everything
func (f taskFilter) matcher() (models.TaskMatcher, error) {
	var matchers []models.TaskMatcher
	if f.notDone {
		matchers = append(matchers, models.NotDoneMatcher{})
	}
	if f.prio != "" {
		p, err := models.ParsePriority(f.prio)
		if err != nil {
			return nil, err
		}
		matchers = append(matchers, models.PrioMatcher{Priority: p})
	}
	if f.takenBy != "" {
		matchers = append(matchers, models.TakenByMatcher{Name: f.takenBy})
	}
	if f.search != "" {
		matchers = append(matchers, models.DescriptionMatcher{Substring: f.search})
	}
	return models.AllOf(matchers...), nil
}

func newTasksCmd(opts *Options) *cobra.Command {
	var (
		filter taskFilter
		sorted bool
	)

	cmd := &cobra.Command{
		Use:   "tasks PROJECT_ID",
		Short: "List the tasks of a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := filter.matcher()
			if err != nil {
				return err
			}
			return inspect(opts, func(s *session.Session) error {
				p, err := lookupProject(s, args[0])
				if err != nil {
					return err
				}
				tasks := p.FindTasks(m)
				if sorted {
					slices.SortStableFunc(tasks, (*models.Task).Compare)
				}
				fmt.Fprintf(out(cmd), "%s (%s)\n", p.Title(), p.State())
				if len(tasks) == 0 {
					fmt.Fprintln(out(cmd), "No tasks.")
					return nil
				}
				printTasks(out(cmd), tasks)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&filter.notDone, "not-done", false, "Only tasks that are not done")
	cmd.Flags().StringVarP(&filter.prio, "prio", "p", "", "Only tasks with this priority (high, medium, low)")
	cmd.Flags().StringVarP(&filter.takenBy, "taken-by", "t", "", "Only tasks taken by this person")
	cmd.Flags().StringVarP(&filter.search, "search", "s", "", "Only tasks whose description contains this text")
	cmd.Flags().BoolVar(&sorted, "sort", false, "Order by priority, then description")
	return cmd
}

func newTaskCmd(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Change the tasks of a project",
	}
	cmd.AddCommand(newTaskAddCmd(opts))
	cmd.AddCommand(newTaskRemoveCmd(opts))
	cmd.AddCommand(newTaskAssignCmd(opts))
	cmd.AddCommand(newTaskStateCmd(opts))
	cmd.AddCommand(newTaskPrioCmd(opts))
	cmd.AddCommand(newTaskDescribeCmd(opts))
	return cmd
}

func newTaskAddCmd(opts *Options) *cobra.Command {
	var prio string

	cmd := &cobra.Command{
		Use:   "add PROJECT_ID DESCRIPTION",
		Short: "Add a task to a project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			priority, err := models.ParsePriority(prio)
			if err != nil {
				return err
			}
			return mutate(opts, func(s *session.Session) error {
				p, err := lookupProject(s, args[0])
				if err != nil {
					return err
				}
				t := s.AddTask(p, args[1], priority)
				fmt.Fprintf(out(cmd), "Task created: %s\n", t)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&prio, "prio", "p", "medium", "Priority (high, medium, low)")
	return cmd
}

// withTask resolves PROJECT_ID TASK_ID from args, applies fn and saves
func withTask(opts *Options, args []string, fn func(s *session.Session, p *models.Project, t *models.Task) error) error {
	return mutate(opts, func(s *session.Session) error {
		p, err := lookupProject(s, args[0])
		if err != nil {
			return err
		}
		id, err := parseID("task", args[1])
		if err != nil {
			return err
		}
		t, ok := p.TaskByID(id)
		if !ok {
			return fmt.Errorf("task %d in project %d: %w", id, p.ID(), errNotFound)
		}
		return fn(s, p, t)
	})
}

func newTaskRemoveCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "remove PROJECT_ID TASK_ID",
		Short: "Remove a task",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTask(opts, args, func(s *session.Session, p *models.Project, t *models.Task) error {
				s.RemoveTask(p, t)
				fmt.Fprintf(out(cmd), "Task removed: %s\n", t)
				return nil
			})
		},
	}
}

func newTaskAssignCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "assign PROJECT_ID TASK_ID NAME",
		Short: "Record who takes a task; a task can only be taken once",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTask(opts, args, func(s *session.Session, p *models.Project, t *models.Task) error {
				if err := s.AssignTask(p, t, args[2]); err != nil {
					return err
				}
				fmt.Fprintf(out(cmd), "Task updated: %s\n", t)
				return nil
			})
		},
	}
}

func newTaskStateCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "state PROJECT_ID TASK_ID STATE",
		Short: "Set the state of a task (todo, in-progress, done)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := models.ParseTaskState(args[2])
			if err != nil {
				return err
			}
			return withTask(opts, args, func(s *session.Session, p *models.Project, t *models.Task) error {
				s.SetTaskState(p, t, state)
				fmt.Fprintf(out(cmd), "Task updated: %s\nProject is %s\n", t, p.State())
				return nil
			})
		},
	}
}

func newTaskPrioCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "prio PROJECT_ID TASK_ID PRIORITY",
		Short: "Set the priority of a task (high, medium, low)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			priority, err := models.ParsePriority(args[2])
			if err != nil {
				return err
			}
			return withTask(opts, args, func(s *session.Session, p *models.Project, t *models.Task) error {
				s.SetTaskPriority(p, t, priority)
				fmt.Fprintf(out(cmd), "Task updated: %s\n", t)
				return nil
			})
		},
	}
}

func newTaskDescribeCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "describe PROJECT_ID TASK_ID DESCRIPTION",
		Short: "Replace the description of a task",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTask(opts, args, func(s *session.Session, p *models.Project, t *models.Task) error {
				s.SetTaskDescription(p, t, args[2])
				fmt.Fprintf(out(cmd), "Task updated: %s\n", t)
				return nil
			})
		},
	}
}

func printTasks(w io.Writer, tasks []*models.Task) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "PRIO", "STATE", "TAKEN BY", "UPDATED", "DESCRIPTION")
	for _, task := range tasks {
		who, _ := task.Assignee()
		t.Row(
			strconv.Itoa(task.ID()),
			task.Priority().String(),
			task.State().String(),
			who,
			task.LastUpdated().Format(time.DateTime),
			task.Description(),
		)
	}
	fmt.Fprintln(w, t.String())
}
