// Package handlers implements the business logic for CLI commands.
//
// This package contains handler functions that are called by command
// definitions in the commands package. Handlers are framework-agnostic
// and can be tested independently of the CLI framework.
package handlers

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"github.com/craftd/craftd/internal/backup"
	"github.com/craftd/craftd/internal/bot"
	"github.com/craftd/craftd/internal/config"
	"github.com/craftd/craftd/internal/logcache"
	"github.com/craftd/craftd/internal/metrics"
	"github.com/craftd/craftd/internal/minecraft"
	"github.com/craftd/craftd/internal/ops"
	"github.com/craftd/craftd/internal/platform/discord"
	"github.com/craftd/craftd/internal/platform/s3"
	"github.com/craftd/craftd/internal/platform/ssh"
	"github.com/craftd/craftd/internal/schedule"
	"github.com/craftd/craftd/internal/store"
)

// shutdownTimeout bounds the graceful drain of scheduled jobs and the
// ops listener.
const shutdownTimeout = 10 * time.Second

// session is the slice of the Discord client Run wires up.
type session interface {
	discord.Messenger
	OnMessage(handler func(*discordgo.MessageCreate))
	Open() error
	Close() error
}

// Factory function variables - can be replaced in tests for dependency injection.
var (
	// loadConfig loads the configuration for run and doctor.
	loadConfig = config.Load

	// newRunner builds the SSH command runner from the configuration.
	newRunner = func(cfg *config.Config) (ssh.Runner, error) {
		key, err := os.ReadFile(cfg.SSH.KeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read SSH key: %w", err)
		}

		client, err := ssh.NewClient(&ssh.Config{
			Host:            cfg.SSH.Host,
			Port:            cfg.SSH.Port,
			User:            cfg.SSH.User,
			PrivateKey:      key,
			KnownHostsPath:  cfg.SSH.KnownHostsPath,
			InsecureHostKey: cfg.SSH.InsecureHostKey,
		})
		if err != nil {
			return nil, err
		}

		return metrics.InstrumentRunner(client), nil
	}

	// newSession connects to the Discord gateway.
	newSession = func(token string, logger zerolog.Logger) (session, error) {
		return discord.New(token, logger)
	}

	// newObjectStore builds the S3 client for snapshots.
	newObjectStore = func(cfg s3.Config) (backup.ObjectStore, error) {
		return s3.NewClient(cfg)
	}
)

// Run starts the bot and blocks until the process receives SIGINT or
// SIGTERM.
//
// The startup order matters: configuration and key material are
// validated first so misconfiguration fails fast, the Discord session
// opens last so the bot never answers commands before the SSH side is
// wired up. Remote connectivity itself is probed lazily per command;
// use doctor for an upfront check.
func Run(ctx context.Context, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if err := cfg.ValidateRun(); err != nil {
		return err
	}
	if err := cfg.EnsureDirs(); err != nil {
		return err
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info().
		Str("host", cfg.SSH.Host).
		Str("port", cfg.SSH.Port).
		Str("user", cfg.SSH.User).
		Msg("starting craftd")

	st := store.New(cfg.Data.Dir)
	if err := st.EnsurePrivileged(); err != nil {
		return fmt.Errorf("failed to prepare data directory: %w", err)
	}

	runner, err := newRunner(cfg)
	if err != nil {
		return err
	}

	gw := minecraft.New(runner, minecraft.Options{
		ScriptsPath: cfg.Minecraft.ScriptsPath,
		LogsPath:    cfg.Minecraft.LogsPath,
		Cache:       logcache.New(cfg.Minecraft.CacheTTL),
		Logger:      logger,
	})

	sess, err := newSession(cfg.Discord.Token, logger)
	if err != nil {
		return err
	}

	b := bot.New(sess, gw, st, bot.Options{
		Prefix:    cfg.Discord.Prefix,
		OwnerID:   cfg.Discord.OwnerID,
		StaticDir: cfg.Data.StaticDir,
		Logger:    logger,
	})
	sess.OnMessage(func(m *discordgo.MessageCreate) {
		b.HandleMessage(ctx, m)
	})

	daily, err := buildDailyJob(ctx, cfg, gw, st, logger)
	if err != nil {
		return err
	}

	sched := schedule.New(ctx, logger)
	if err := sched.Add(cfg.Schedule.DailyUpdate, "daily_update", daily); err != nil {
		return err
	}

	if err := sess.Open(); err != nil {
		return err
	}
	defer func() {
		if err := sess.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close discord session")
		}
	}()

	sched.Start()

	var opsSrv *ops.Server
	if cfg.Ops.Listen != "" {
		opsSrv = ops.NewServer(cfg.Ops.Listen, func() bool { return sess.SelfID() != "" }, logger)
		go func() {
			if err := opsSrv.Start(); err != nil {
				logger.Error().Err(err).Msg("ops listener failed")
			}
		}()
	}

	logger.Info().Str("prefix", cfg.Discord.Prefix).Msg("bot is ready")

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-sigCtx.Done()

	logger.Info().Msg("shutting down")
	return shutdown(sched, opsSrv, logger)
}

// buildDailyJob composes the playtime refresh with the optional S3
// snapshot upload.
func buildDailyJob(ctx context.Context, cfg *config.Config, gw *minecraft.Gateway, st *store.Store, logger zerolog.Logger) (schedule.JobFunc, error) {
	refresh := schedule.DailyUpdate(gw, st)
	if !cfg.Backup.Enabled {
		return refresh, nil
	}

	objStore, err := newObjectStore(s3.Config{
		Endpoint:  cfg.Backup.Endpoint,
		Region:    cfg.Backup.Region,
		AccessKey: cfg.Backup.AccessKey,
		SecretKey: cfg.Backup.SecretKey,
		PathStyle: cfg.Backup.PathStyle,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build object storage client: %w", err)
	}

	files := []string{st.PlayersPath(), st.PrivilegedPath()}
	snap := backup.New(objStore, cfg.Backup.Bucket, cfg.Backup.Retention, files, logger)
	if err := snap.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("failed to prepare snapshot bucket: %w", err)
	}

	return func(ctx context.Context) error {
		if err := refresh(ctx); err != nil {
			return err
		}
		return snap.Run(ctx)
	}, nil
}

// shutdown drains scheduled jobs and stops the ops listener.
func shutdown(sched *schedule.Scheduler, opsSrv *ops.Server, logger zerolog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	select {
	case <-sched.Stop().Done():
	case <-ctx.Done():
		logger.Warn().Msg("scheduled jobs did not drain in time")
	}

	if opsSrv != nil {
		if err := opsSrv.Shutdown(ctx); err != nil {
			logger.Warn().Err(err).Msg("failed to stop ops listener")
		}
	}

	return nil
}

// newLogger builds the process logger. Interactive terminals get the
// console writer; everything else gets JSON for log collectors.
func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	var w io.Writer = os.Stderr
	if isatty.IsTerminal(os.Stderr.Fd()) {
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}

	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}
