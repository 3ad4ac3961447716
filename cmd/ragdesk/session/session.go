// Package session wires what every ragdesk command needs: the layered
// configuration, the credential store with its credentials.toml persistence,
// the authenticated API client and the workspace service.
package session

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/ragdesk/pkg/client"
	"github.com/papercomputeco/ragdesk/pkg/config"
	"github.com/papercomputeco/ragdesk/pkg/credentials"
	"github.com/papercomputeco/ragdesk/pkg/logger"
	"github.com/papercomputeco/ragdesk/pkg/utils"
	"github.com/papercomputeco/ragdesk/pkg/workspace"
)

// Session is the set of collaborators built for one command invocation.
type Session struct {
	Config    *config.Config
	ConfigDir string
	Store     *credentials.Store
	Manager   *credentials.Manager
	Client    *client.Client
	Service   *workspace.Service
	Logger    *slog.Logger

	logFile *os.File
}

// Options tweak how a Session is opened.
type Options struct {
	// StreamTap receives a copy of every raw event stream.
	StreamTap io.Writer
}

// Open builds a Session from the command's flags. Callers register the client
// flags with config.AddClientFlags; Open binds them over RAGDESK_* variables
// and config.toml.
func Open(cmd *cobra.Command, opts Options) (*Session, error) {
	configDir, _ := cmd.Flags().GetString("config-dir")
	debug, _ := cmd.Flags().GetBool("debug")
	logPath, _ := cmd.Flags().GetString("log-file")

	v, err := config.InitViper(configDir)
	if err != nil {
		return nil, err
	}
	config.BindRegisteredFlags(v, cmd, config.ClientFlags, config.ClientFlagKeys)
	config.BindRegisteredFlags(v, cmd, config.ClientFlags, []string{config.FlagMarkdown, config.FlagUploadWorkers})
	cfg := config.FromViper(v)

	if _, err := cfg.Client.Timeout(); err != nil {
		return nil, err
	}

	log := logger.CLI(cmd.ErrOrStderr(), debug)

	s := &Session{
		Config:    cfg,
		ConfigDir: configDir,
		Store:     credentials.NewStore(),
	}

	if logPath != "" {
		var fileLog *slog.Logger
		fileLog, s.logFile, err = logger.OpenFile(logPath)
		if err != nil {
			return nil, err
		}
		log = logger.Multi(log, fileLog)
	}
	s.Logger = log

	if cfg.Auth.Persist {
		s.Manager, err = credentials.NewManager(configDir)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("resolving credentials: %w", err)
		}
		if err := s.Manager.Hydrate(s.Store); err != nil {
			s.Close()
			return nil, fmt.Errorf("loading credentials: %w", err)
		}
		s.Manager.Persist(s.Store, log)
	}

	clientOpts := []client.Option{
		client.WithLogger(log),
		client.WithRefreshPath(cfg.Client.RefreshPath),
		client.WithUserAgent(utils.UserAgent()),
	}
	if cfg.Client.SingleFlightRefresh {
		clientOpts = append(clientOpts, client.WithSingleFlightRefresh())
	}
	if opts.StreamTap != nil {
		clientOpts = append(clientOpts, client.WithStreamTap(opts.StreamTap))
	}

	s.Client, err = client.New(cfg.Client.APITarget, s.Store, clientOpts...)
	if err != nil {
		s.Close()
		return nil, err
	}

	s.Service = workspace.NewService(s.Client, s.Store, log)

	log.Debug("session opened",
		"api_target", cfg.Client.APITarget,
		"authenticated", s.Store.Get().Authenticated(),
		"persist", cfg.Auth.Persist,
	)

	return s, nil
}

// RequestContext bounds a non-streaming call by client.request_timeout.
// Streaming calls use the command context directly.
func (s *Session) RequestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout, _ := s.Config.Client.Timeout()
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// Watch keeps the store in sync with credentials.toml for long running
// commands. It is a no-op when persistence is disabled.
func (s *Session) Watch(ctx context.Context) {
	if s.Manager == nil {
		return
	}
	if err := s.Manager.Watch(ctx, s.Store, s.Logger); err != nil {
		s.Logger.Warn("not watching credentials", "error", err)
	}
}

// Close releases the log file, if any.
func (s *Session) Close() {
	if s.logFile != nil {
		_ = s.logFile.Close()
		s.logFile = nil
	}
}

// Stdin returns the command's input, falling back to os.Stdin.
func Stdin(cmd *cobra.Command) io.Reader {
	if in := cmd.InOrStdin(); in != nil {
		return in
	}
	return os.Stdin
}
