// Command sceneedit is a line-oriented front end for the scene edit store.
// It reads editor commands from a script file or stdin and prints results.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"github.com/roomkit/sceneedit/internal/catalog"
	"github.com/roomkit/sceneedit/internal/config"
	"github.com/roomkit/sceneedit/internal/dispatcher"
	"github.com/roomkit/sceneedit/internal/handlers"
	"github.com/roomkit/sceneedit/internal/influx"
	"github.com/roomkit/sceneedit/internal/journal"
	"github.com/roomkit/sceneedit/internal/logging"
	intOtel "github.com/roomkit/sceneedit/internal/otel"
	"github.com/roomkit/sceneedit/internal/scene"
)

// Version can be set at build time via ldflags
var (
	Version   = "0.0.1"
	BuildDate = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "sceneedit:", err)
		os.Exit(1)
	}
}

// errCommandsFailed is returned when a script ran but some commands failed.
var errCommandsFailed = errors.New("one or more commands failed")

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := pflag.NewFlagSet("sceneedit", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	configDir := fs.String("config-dir", ".", "directory containing "+config.FileName)
	script := fs.StringP("script", "s", "", "read commands from this file instead of stdin")
	fs.String("log-level", "info", "debug, info, warn or error")
	fs.String("history-mode", string(scene.ModeCommand), "undo history mode: command, snapshot or lagged")
	fs.Int("history-capacity", scene.DefaultHistoryLimit, "maximum undo steps, 0 for unbounded")
	fs.String("catalog", "", "JSON preset file replacing the built-in catalog")
	fs.Bool("journal", false, "record every change to the journal database")
	fs.Bool("influx", false, "export every change to InfluxDB")
	showVersion := fs.Bool("version", false, "print the version and exit")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *showVersion {
		fmt.Fprintf(stdout, "sceneedit %s (%s)\n", Version, BuildDate)
		return nil
	}

	if err := config.BindFlags(fs); err != nil {
		return err
	}
	configErr := config.Load(*configDir)
	if configErr != nil && !errors.Is(configErr, config.ErrNotFound) {
		return configErr
	}

	sessionStart := time.Now()

	// Logging
	logFile, logPath, err := openLogFile(viper.GetString("logsDir"), sessionStart)
	if err != nil {
		return err
	}
	// fileOut stays a nil interface when file logging is off
	var fileOut io.Writer
	logOut := stderr
	if logFile != nil {
		defer logFile.Close()
		fileOut = logFile
		logOut = logFile
	}

	var otelProvider *intOtel.Provider
	otelCfg := config.GetOTelConfig()
	if otelCfg.Enabled {
		otelProvider, err = intOtel.New(intOtel.Config{
			Enabled:        otelCfg.Enabled,
			ServiceName:    otelCfg.ServiceName,
			BatchTimeout:   otelCfg.BatchTimeout,
			MetricInterval: otelCfg.MetricInterval,
			LogWriter:      fileOut,
			Endpoint:       otelCfg.Endpoint,
			Insecure:       otelCfg.Insecure,
		})
		if err != nil {
			fmt.Fprintln(stderr, "sceneedit: OTel disabled:", err)
			otelProvider = nil
		} else {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = otelProvider.Shutdown(shutdownCtx)
			}()
		}
	}

	var otelLogProvider *sdklog.LoggerProvider
	if otelProvider != nil {
		otelLogProvider = otelProvider.LoggerProvider()
	}

	logLevel := config.GetString("logLevel")
	slogManager := logging.NewSlogManager()
	slogManager.Setup(fileOut, logLevel, otelLogProvider)
	log := slogManager.Logger()
	if logPath != "" {
		log.Info("Logging to file", "path", logPath)
	}
	if configErr != nil {
		log.Warn("Failed to load config, using defaults!", "error", configErr)
	} else {
		log.Info("Loaded config", "file", viper.ConfigFileUsed())
	}

	// Scene
	hc := config.GetHistoryConfig()
	mode, err := scene.ParseMode(hc.Mode)
	if err != nil {
		return err
	}
	store, err := scene.New(
		scene.WithHistory(mode, hc.Capacity),
		scene.WithLogger(log.With("component", "scene")),
	)
	if err != nil {
		return fmt.Errorf("failed to create scene: %w", err)
	}
	log.Info("Scene ready", "historyMode", mode, "historyCapacity", hc.Capacity)

	slogManager.SetContextProvider(func() []slog.Attr {
		return []slog.Attr{
			slog.Int("objects", store.Len()),
			slog.String("selected", store.SelectedID()),
		}
	})
	log = slogManager.Logger()

	cat, err := loadCatalog(config.GetString("catalog.file"))
	if err != nil {
		return err
	}
	log.Info("Catalog loaded", "presets", cat.Len())

	// Journal
	var jrnl *journal.Journal
	if jc := config.GetJournalConfig(); jc.Enabled {
		db, err := journal.Open(jc, config.GetDBConfig())
		if err != nil {
			return fmt.Errorf("failed to open journal: %w", err)
		}
		jrnl, err = journal.New(db, log.With("component", "journal"))
		if err != nil {
			return err
		}
		defer jrnl.Close()
		detach := jrnl.Attach(store)
		defer detach()
		log.Info("Journal attached", "driver", jc.Driver, "session", jrnl.Session())
	}

	// InfluxDB export
	if ic := config.GetInfluxConfig(); ic.Enabled {
		zlInflux := logging.NewZerolog(logOut, logLevel).With().Str("component", "influx").Logger()
		mgr := influx.NewManager(influx.Config{
			Enabled:    ic.Enabled,
			URL:        ic.URL,
			Token:      ic.Token,
			Org:        ic.Org,
			Bucket:     ic.Bucket,
			BackupPath: ic.BackupPath,
		}, zlInflux)
		if err := mgr.Connect(ctx); err != nil {
			log.Warn("InfluxDB export disabled", "error", err)
		} else {
			defer mgr.Close()
			session := uuid.NewString()
			if jrnl != nil {
				session = jrnl.Session()
			}
			detach := mgr.Attach(store, session)
			defer detach()
			log.Info("InfluxDB export attached", "online", mgr.IsValid, "session", session)
		}
	}

	// Dispatcher
	zl := logging.NewZerolog(logOut, logLevel).With().Str("component", "dispatcher").Logger()
	d, err := dispatcher.New(logging.NewDispatcherLogger(zl))
	if err != nil {
		return fmt.Errorf("failed to create dispatcher: %w", err)
	}

	svc := handlers.NewService(handlers.Dependencies{
		Store:   store,
		Catalog: cat,
		Logger:  log.With("component", "handlers"),
	})
	svc.RegisterHandlers(d)

	sh := &shell{
		store:   store,
		journal: jrnl,
		out:     stdout,
		errOut:  stderr,
	}
	sh.register(d)

	// Input
	in := stdin
	if *script != "" {
		f, err := os.Open(*script)
		if err != nil {
			return fmt.Errorf("failed to open script: %w", err)
		}
		defer f.Close()
		in = f
	}

	events := make(chan dispatcher.Event, 64)
	go sh.read(ctx, in, events)

	if err := d.Run(ctx, events, sh.reply); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	if err := slogManager.Flush(context.Background()); err != nil {
		log.Warn("Failed to flush logs", "error", err)
	}
	log.Info("Session finished", "objects", store.Len(), "failed", sh.failed)

	if *script != "" && sh.failed > 0 {
		return fmt.Errorf("%w: %d", errCommandsFailed, sh.failed)
	}
	return nil
}

// openLogFile creates the session log file in logsDir. An empty logsDir
// disables file logging.
func openLogFile(logsDir string, sessionStart time.Time) (*os.File, string, error) {
	if logsDir == "" {
		return nil, "", nil
	}
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return nil, "", fmt.Errorf("failed to create logs dir: %w", err)
	}

	path := logging.LogFilePath(logsDir, logging.ServiceName, sessionStart)
	if _, err := os.Stat(path); err == nil {
		_ = os.Rename(path, path+".old")
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open log file: %w", err)
	}
	return f, path, nil
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default(), nil
	}
	c, err := catalog.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return c, nil
}
