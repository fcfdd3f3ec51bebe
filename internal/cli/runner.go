// Package cli implements the shoplist command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/idilsaglam/shoplist/internal/category"
	"github.com/idilsaglam/shoplist/internal/config"
	"github.com/idilsaglam/shoplist/internal/logging"
	"github.com/idilsaglam/shoplist/internal/shoplist"
	"github.com/idilsaglam/shoplist/internal/store"
	"github.com/idilsaglam/shoplist/internal/store/jsonstore"
	"github.com/idilsaglam/shoplist/internal/store/sqlitestore"
	"github.com/idilsaglam/shoplist/internal/translate"
	"github.com/idilsaglam/shoplist/internal/ui"
)

// Exit codes.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// Streams are the process's standard streams; tests swap them for buffers.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// StdStreams returns os.Stdin, os.Stdout and os.Stderr.
func StdStreams() Streams {
	return Streams{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
}

// usageError marks bad invocations, reported with exit code 2.
type usageError struct {
	err  error
	hint string
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func usagef(format string, a ...any) error {
	return &usageError{err: fmt.Errorf(format, a...)}
}

// Run executes one command line and returns an exit code (0 ok, 1 error, 2 usage).
func Run(ctx context.Context, args []string, s Streams) int {
	a := &app{}
	defer a.close()

	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetIn(s.In)
	root.SetOut(s.Out)
	root.SetErr(s.Err)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return ExitOK
	}
	fail(s.Err, err.Error())

	var ue *usageError
	switch {
	case errors.As(err, &ue):
		if ue.hint != "" {
			hint(s.Err, ue.hint)
		}
		return ExitUsage
	case errors.Is(err, store.ErrCorrupt):
		hint(s.Err, "run `shoplist reset` to start over with an empty list")
	}
	return ExitError
}

// app carries the root flags and the lazily opened service.
type app struct {
	configPath string
	dataPath   string
	lang       string
	verbose    bool

	cfg     *config.Config
	log     *zap.Logger
	svc     *shoplist.Service
	closers []func() error
}

// credentialsDir keeps the key file next to the config file.
func (a *app) credentialsDir() (string, error) {
	if a.configPath != "" {
		return filepath.Dir(a.configPath), nil
	}
	return config.Dir()
}

func (a *app) loadConfig() (*config.Config, error) {
	if a.cfg != nil {
		return a.cfg, nil
	}
	path := a.configPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if a.dataPath != "" {
		cfg.Data.Path = a.dataPath
	}
	if a.lang != "" {
		cfg.Translation.TargetLang = a.lang
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	ui.SetTheme(cfg.UI.Theme)
	ui.SetColorMode(cfg.UI.Color)
	a.cfg = cfg
	return cfg, nil
}

// open builds the service and loads the list.
func (a *app) open(ctx context.Context, forTUI bool) (*shoplist.Service, error) {
	svc, err := a.build(ctx, forTUI)
	if err != nil {
		return nil, err
	}
	if err := svc.Open(ctx); err != nil {
		return nil, err
	}
	return svc, nil
}

// build wires the service from config without loading the list. The TUI
// gets a logger that stays off the terminal.
func (a *app) build(ctx context.Context, forTUI bool) (*shoplist.Service, error) {
	if a.svc != nil {
		return a.svc, nil
	}
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, err
	}

	newLogger := logging.New
	if forTUI {
		newLogger = logging.ForTUI
	}
	log, err := newLogger(cfg.Logging, a.verbose)
	if err != nil {
		return nil, err
	}
	a.log = log
	a.closers = append(a.closers, func() error { _ = log.Sync(); return nil })

	key := cfg.Translation.APIKey
	if key == "" && cfg.Translation.Provider == "openai" {
		creds, err := a.credentials()
		if err != nil {
			return nil, err
		}
		info, err := creds.Get()
		if err != nil {
			return nil, err
		}
		if info != nil {
			key = info.Key
		}
	}
	tr, err := translate.New(translate.Options{
		Provider: cfg.Translation.Provider,
		BaseURL:  cfg.Translation.BaseURL,
		Model:    cfg.Translation.Model,
		APIKey:   key,
		Timeout:  cfg.GetTranslationTimeout(),
	}, log)
	if err != nil {
		return nil, err
	}

	cat, err := category.Load(cfg.CategoriesFile)
	if err != nil {
		return nil, err
	}

	gw, err := a.gateway(ctx, cfg)
	if err != nil {
		return nil, err
	}

	svc := shoplist.New(shoplist.Options{
		Gateway:     gw,
		Translator:  tr,
		Categorizer: cat,
		TargetLang:  cfg.Translation.TargetLang,
		Concurrency: cfg.GetConcurrency(),
		Logger:      log,
	})
	log.Debug("service ready",
		zap.String("backend", cfg.Data.Backend),
		zap.String("data", cfg.DataPath()),
		zap.String("translator", cfg.Translation.Provider),
		zap.String("lang", cfg.Translation.TargetLang))
	a.svc = svc
	return svc, nil
}

func (a *app) gateway(ctx context.Context, cfg *config.Config) (shoplist.Gateway, error) {
	switch cfg.Data.Backend {
	case "sqlite":
		db, err := sqlitestore.Open(ctx, cfg.DataPath())
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		return db, nil
	default:
		js, err := jsonstore.New(cfg.DataPath())
		if err != nil {
			return nil, err
		}
		return js, nil
	}
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i]()
	}
	a.closers = nil
}
