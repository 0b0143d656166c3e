package cli

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"modelview/internal/config"
	"modelview/internal/tui"
)

// runView owns the terminal, so logs go to --log-file or nowhere.
func runView(ctx context.Context, cfg config.Config, opts *Options) error {
	log, closer, err := NewLogger(cfg, opts, io.Discard)
	if err != nil {
		return err
	}
	app, err := Start(ctx, cfg, log)
	if err != nil {
		if closer != nil {
			_ = closer.Close()
		}
		return err
	}
	app.logFile = closer
	defer app.Close()
	return tui.Run(ctx, app.Session, tea.WithAltScreen(), tea.WithOutput(opts.Out))
}
