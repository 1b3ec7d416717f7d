package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/tgienger/projman/internal/models"
	"github.com/tgienger/projman/internal/session"
)

var errNotFound = errors.New("not found")

func newListCmd(opts *Options) *cobra.Command {
	var sorted bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return inspect(opts, func(s *session.Session) error {
				projects := s.Projects()
				if sorted {
					projects = s.SortedProjects()
				}
				if len(projects) == 0 {
					fmt.Fprintln(out(cmd), "No projects created.")
					return nil
				}
				printProjects(out(cmd), projects)
				if id, ok := s.HighestID(); ok {
					fmt.Fprintf(out(cmd), "%d projects, highest id #%d\n", len(projects), id)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&sorted, "sort", "s", false, "Order by title instead of creation")
	return cmd
}

func newFindCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "find TITLE",
		Short: "Find projects by exact title",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return inspect(opts, func(s *session.Session) error {
				found := s.FindProjects(args[0])
				if len(found) == 0 {
					fmt.Fprintln(out(cmd), "No matches.")
					return nil
				}
				printProjects(out(cmd), found)
				return nil
			})
		},
	}
}

func newAddCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "add TITLE [DESCRIPTION]",
		Short: "Add a project",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			description := ""
			if len(args) > 1 {
				description = args[1]
			}
			return mutate(opts, func(s *session.Session) error {
				p, err := s.AddProject(args[0], description)
				if err != nil {
					return err
				}
				fmt.Fprintf(out(cmd), "Project created: #%d %s\n", p.ID(), p.Title())
				return nil
			})
		},
	}
}

func newRemoveCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "remove PROJECT_ID",
		Short: "Remove a project and all its tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("project", args[0])
			if err != nil {
				return err
			}
			return mutate(opts, func(s *session.Session) error {
				p, ok := s.RemoveProject(id)
				if !ok {
					return fmt.Errorf("project %d: %w", id, errNotFound)
				}
				fmt.Fprintf(out(cmd), "Project removed: %s\n", p.Title())
				return nil
			})
		},
	}
}

func parseID(kind, arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid %s id %q", kind, arg)
	}
	return id, nil
}

func lookupProject(s *session.Session, arg string) (*models.Project, error) {
	id, err := parseID("project", arg)
	if err != nil {
		return nil, err
	}
	p, ok := s.Project(id)
	if !ok {
		return nil, fmt.Errorf("project %d: %w", id, errNotFound)
	}
	return p, nil
}

func printProjects(w io.Writer, projects []*models.Project) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "TITLE", "STATE", "TASKS", "UPDATED", "DESCRIPTION")
	for _, p := range projects {
		t.Row(
			strconv.Itoa(p.ID()),
			p.Title(),
			p.State().String(),
			strconv.Itoa(p.TaskCount()),
			p.LastUpdated().Format(time.DateTime),
			p.Description(),
		)
	}
	fmt.Fprintln(w, t.String())
}
