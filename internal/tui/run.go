package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/idilsaglam/shoplist/internal/shoplist"
	"github.com/idilsaglam/shoplist/internal/watch"
)

// Options configure Run.
type Options struct {
	Theme string
	// WatchPath is reloaded when another process changes it. Empty disables
	// watching.
	WatchPath string
	Logger    *zap.Logger
}

// Run shows the list until the user quits or ctx ends. Every change is
// saved by the service as it happens.
func Run(ctx context.Context, svc *shoplist.Service, opt Options) error {
	log := opt.Logger
	if log == nil {
		log = zap.NewNop()
	}
	applyTheme(opt.Theme)

	var src changeSource
	if opt.WatchPath != "" {
		w, err := watch.New(ctx, opt.WatchPath, 150*time.Millisecond, log)
		if err != nil {
			log.Warn("file watch disabled", zap.Error(err))
		} else {
			defer w.Close()
			src = w
		}
	}

	p := tea.NewProgram(newModel(ctx, svc, log, src), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("ui: %w", err)
	}
	return nil
}
