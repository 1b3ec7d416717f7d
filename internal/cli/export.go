package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tgienger/projman/internal/db"
	"github.com/tgienger/projman/internal/session"
)

func newExportCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "export DEST",
		Short: "Copy the collection into another file",
		Long: `Copy the whole collection into DEST. The format follows the extension of
DEST, so exporting projects.db to projects.yaml converts SQLite to YAML.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return inspect(opts, func(s *session.Session) error {
				dest, err := filepath.Abs(args[0])
				if err != nil {
					return err
				}
				src, err := filepath.Abs(s.Path())
				if err != nil {
					return err
				}
				if dest == src {
					return fmt.Errorf("export destination is the data file itself")
				}
				if err := s.SaveTo(db.Open(dest)); err != nil {
					return err
				}
				fmt.Fprintf(out(cmd), "Exported %d projects to %s\n", len(s.Projects()), dest)
				return nil
			})
		},
	}
}
