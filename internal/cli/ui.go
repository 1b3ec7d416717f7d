package cli

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tgienger/projman/internal/ui"
)

// runUI loads the collection, runs the interactive browser and saves on exit
func runUI(cmd *cobra.Command, opts *Options) error {
	e, err := openEnv(opts)
	if err != nil {
		return err
	}
	defer e.close()

	app := ui.NewApp(e.session, e.log)
	p := tea.NewProgram(app,
		tea.WithAltScreen(),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)

	_, runErr := p.Run()
	if runErr != nil {
		e.log.Error("ui stopped", zap.Error(runErr))
	}
	return errors.Join(runErr, e.session.Save())
}
