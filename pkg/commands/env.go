package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"tableflip.dev/somnium/pkg/app"
	"tableflip.dev/somnium/pkg/config"
	"tableflip.dev/somnium/pkg/entitlement"
	"tableflip.dev/somnium/pkg/imaging"
	"tableflip.dev/somnium/pkg/logging"
	"tableflip.dev/somnium/pkg/oracle"
	"tableflip.dev/somnium/pkg/printers"
	"tableflip.dev/somnium/pkg/snake"
	"tableflip.dev/somnium/pkg/store"
)

// env is everything a command needs, built from configuration.
type env struct {
	cfg     *config.Config
	log     zerolog.Logger
	store   *store.Store
	service *app.Service
	pp      *printers.PrettyPrint
	prompt  snake.IO

	closers []func() error
}

// loadEnv resolves config, logging, storage and the collaborators. A
// missing API key leaves the journal usable; only AI calls fail. A quiet env
// logs only to the configured file, for full screen UIs.
func loadEnv(cmd *cobra.Command, quiet bool) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	lo := logging.Options{Level: cfg.LogLevel, File: cfg.LogFile, Writer: cmd.ErrOrStderr()}
	if quiet && cfg.LogFile == "" {
		lo.Writer = io.Discard
	}
	log, closeLog, err := logging.New(lo)
	if err != nil {
		return nil, err
	}
	e := &env{
		cfg:     cfg,
		log:     log,
		pp:      &printers.PrettyPrint{Out: cmd.OutOrStdout()},
		prompt:  snake.IO{In: cmd.InOrStdin(), Out: cmd.OutOrStdout()},
		closers: []func() error{closeLog},
	}

	s, err := store.Open(cfg, store.WithLogger(log))
	if err != nil {
		_ = e.Close()
		return nil, err
	}
	if c, ok := s.Backend().(interface{ Close() error }); ok {
		e.closers = append(e.closers, c.Close)
	}
	e.store = s

	var o oracle.Oracle = oracle.Unconfigured{}
	g, err := oracle.NewGemini(commandContext(cmd), oracle.GeminiOptions{
		APIKey:     cfg.GeminiAPIKey,
		TextModel:  cfg.GeminiTextModel,
		ImageModel: cfg.GeminiImageModel,
		Logger:     log,
	})
	switch {
	case err == nil:
		o = g
	case errors.Is(err, oracle.ErrNotConfigured):
		log.Debug().Msg("no API key, AI features disabled")
	default:
		log.Warn().Err(err).Msg("oracle unavailable")
	}

	e.service = &app.Service{
		Persistence: s,
		Gate:        entitlement.NewGate(s, log),
		Analyzer:    o,
		Illustrator: o,
		Chatter:     o,
		Images:      imaging.New(log),
		Log:         log,
	}
	return e, nil
}

// Close releases the store and the log file.
func (e *env) Close() error {
	var errs []error
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// withEnv runs fn with a loaded env and always closes it.
func withEnv(cmd *cobra.Command, fn func(ctx context.Context, e *env) error) error {
	return runEnv(cmd, false, fn)
}

// withQuietEnv is withEnv for commands that own the terminal.
func withQuietEnv(cmd *cobra.Command, fn func(ctx context.Context, e *env) error) error {
	return runEnv(cmd, true, fn)
}

func runEnv(cmd *cobra.Command, quiet bool, fn func(ctx context.Context, e *env) error) error {
	e, err := loadEnv(cmd, quiet)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := e.Close(); cerr != nil {
			e.log.Warn().Err(cerr).Msg("close failed")
		}
	}()
	return fn(commandContext(cmd), e)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// denied prints the upgrade hint for a refused action.
func (e *env) denied(d entitlement.Decision) {
	e.pp.UpgradeRequired(humanAction(d.Action))
}

func humanAction(a entitlement.Action) string {
	switch a {
	case entitlement.ToggleFavorite:
		return "Favoriting"
	case entitlement.CreateCollection:
		return "Creating collections"
	case entitlement.SubmitForInterpretation:
		return "AI interpretation"
	default:
		return fmt.Sprint(a)
	}
}
