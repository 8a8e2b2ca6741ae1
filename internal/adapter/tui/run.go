package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"user-console/internal/usecase/console"
)

// Run starts the terminal console and blocks until the user quits or ctx is
// done. The store is closed on return.
func Run(ctx context.Context, store *console.Store, opts Options, log *zap.Logger) error {
	defer store.Close()

	p := tea.NewProgram(New(ctx, store, opts, log), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run terminal console: %w", err)
	}
	return nil
}
