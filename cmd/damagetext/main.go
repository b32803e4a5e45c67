package main

/*
#include <stdlib.h>
#include <stdio.h>
#include <string.h>
*/
import "C" // This is required to build as a c-shared library

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"github.com/sparroh/disablefloatingtext/internal/config"
	"github.com/sparroh/disablefloatingtext/internal/dispatcher"
	"github.com/sparroh/disablefloatingtext/internal/handlers"
	"github.com/sparroh/disablefloatingtext/internal/influx"
	"github.com/sparroh/disablefloatingtext/internal/logging"
	"github.com/sparroh/disablefloatingtext/internal/model"
	"github.com/sparroh/disablefloatingtext/internal/monitor"
	intOtel "github.com/sparroh/disablefloatingtext/internal/otel"
	"github.com/sparroh/disablefloatingtext/internal/pool"
	"github.com/sparroh/disablefloatingtext/internal/registry"
	"github.com/sparroh/disablefloatingtext/internal/storage"
	"github.com/sparroh/disablefloatingtext/internal/sweep"
	"github.com/sparroh/disablefloatingtext/internal/throttle"
	"github.com/sparroh/disablefloatingtext/internal/toggle"
	"github.com/sparroh/disablefloatingtext/internal/util"
	"github.com/sparroh/disablefloatingtext/pkg/hostbridge"
)

// module defs - BuildDate can be set at build time via ldflags
var (
	CurrentExtensionVersion string = "0.1.0"
	BuildDate               string = "unknown"

	ExtensionName string = "damagetext"
)

// file paths
var (
	// ModuleFolder holds the library and its config file.
	ModuleFolder string

	LogFilePath string
	LogFile     *os.File
)

// global variables
var (
	// SlogManager handles all slog-based logging
	SlogManager *logging.SlogManager

	// Logger is the slog logger (convenience reference)
	Logger *slog.Logger

	// ZLogger is the zerolog logger used by the dispatcher and telemetry writers
	ZLogger zerolog.Logger

	// OTelProvider handles OpenTelemetry
	OTelProvider *intOtel.Provider

	SessionStartTime time.Time = time.Now()

	// Core state
	toggleState  *toggle.State
	entries      *registry.Registry
	pools        *pool.Set
	reclaimer    *pool.Reclaimer
	reporter     *throttle.Reporter
	sweeper      *sweep.Sweeper
	handlerSvc   *handlers.Service
	monitorSvc   *monitor.Service
	eventRouter  *dispatcher.Dispatcher
	statsRecord  *storage.Recorder
	influxClient *influx.Manager
	gelfWriter   io.WriteCloser
)

// init is run automatically when the module is loaded
func init() {
	var err error

	ModuleFolder = hostbridge.ModuleFolder()

	// Initialize slog manager with initial config so config errors are visible
	SlogManager = logging.NewSlogManager()
	SlogManager.Setup(nil, "info", nil)
	Logger = SlogManager.Logger()

	if err = config.Load(ModuleFolder); err != nil {
		Logger.Warn("Failed to load config, using defaults!", "error", err)
	} else {
		Logger.Info("Loaded config")
	}

	setupLogging()

	if err = setupCore(); err != nil {
		Logger.Error("Failed to set up damage text tracking", "error", err)
		panic(err)
	}

	if err = setupHostBridge(); err != nil {
		Logger.Error("Failed to set up host bridge!", "error", err)
		panic(err)
	}
	Logger.Info("Set up host bridge", "commands", eventRouter.Commands())

	startTelemetry()

	// config-driven toggle and debug flags follow the file on disk
	applyConfig()
	config.Watch(func() {
		Logger.Info("Config file changed, reapplying")
		applyConfig()
	})
}

// setupLogging opens the session log file and wires the file, OTel and Graylog sinks.
func setupLogging() {
	var err error

	logsDir := config.GetString("logsDir")
	if !filepath.IsAbs(logsDir) {
		logsDir = filepath.Join(ModuleFolder, logsDir)
	}
	LogFile, LogFilePath, err = logging.OpenSessionLog(logsDir, ExtensionName, SessionStartTime)
	if err != nil {
		Logger.Error("Failed to create/open log file!", "error", err, "path", LogFilePath)
		LogFile = nil
	}

	var logOut io.Writer = os.Stdout
	if LogFile != nil {
		logOut = LogFile
	}

	// Initialize OTel provider if enabled (after log file is created)
	otelCfg := config.GetOTelConfig()
	if otelCfg.Enabled {
		OTelProvider, err = intOtel.New(intOtel.Config{
			Enabled:        otelCfg.Enabled,
			ServiceName:    otelCfg.ServiceName,
			BatchTimeout:   otelCfg.BatchTimeout,
			LogWriter:      logOut,
			Endpoint:       otelCfg.Endpoint,
			Insecure:       otelCfg.Insecure,
			MetricInterval: otelCfg.MetricInterval,
		})
		if err != nil {
			Logger.Error("Failed to initialize OTel provider", "error", err)
		} else {
			Logger.Info("OTel provider initialized", "file", LogFilePath, "endpoint", otelCfg.Endpoint)
		}
	}

	graylogCfg := config.GetGraylogConfig()
	if graylogCfg.Enabled {
		gelfWriter, err = logging.NewGELFWriter(graylogCfg.Address, ExtensionName)
		if err != nil {
			Logger.Error("Failed to connect to Graylog", "error", err, "address", graylogCfg.Address)
		} else {
			SlogManager.SetGELFWriter(gelfWriter, logging.ParseLevel(graylogCfg.Level))
		}
	}

	// dynamic state on every record; Count is lock-free so this is safe mid-sweep
	SlogManager.ContextProvider = func() []slog.Attr {
		if toggleState == nil || entries == nil {
			return nil
		}
		return []slog.Attr{
			slog.Bool("showEnemyText", toggleState.IsEnabled()),
			slog.Int("tracked", entries.Count()),
		}
	}

	// Re-setup logging with file output and optional OTel
	var otelLogProvider *sdklog.LoggerProvider
	if OTelProvider != nil {
		otelLogProvider = OTelProvider.LoggerProvider()
	}
	level := config.GetString("logLevel")
	SlogManager.Setup(logOut, level, otelLogProvider)
	Logger = SlogManager.Logger()
	Logger.Info("Logging to file", "path", LogFilePath)

	zlevel, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		zlevel = zerolog.InfoLevel
	}
	ZLogger = zerolog.New(logOut).Level(zlevel).With().Timestamp().Str("extension", ExtensionName).Logger()
}

// setupCore builds the registry, toggle, pools and sweeper.
func setupCore() error {
	var err error

	toggleState = toggle.New()
	entries = registry.New()
	maxIdle := config.GetInt("pools.maxSize")
	poolLog := Logger.With("component", "pool")
	pools = pool.NewSet(func(name string) pool.Options {
		return pool.Options{
			MaxSize: maxIdle,
			OnDestroy: func(obj model.TextObject) {
				poolLog.Debug("Pool full, dropping idle text", "pool", name, "handle", obj.Handle())
			},
		}
	})
	reclaimer = pool.NewReclaimer(Logger.With("component", "reclaimer"))
	reporter = throttle.New(Logger.With("component", "sweep"), config.GetDebugConfig().LogWindow)

	// OTelProvider is nil when disabled; its Meter is then a no-op
	sweeper, err = sweep.New(sweep.Dependencies{
		Registry:  entries,
		Toggle:    toggleState,
		Reclaimer: reclaimer,
		Reporter:  reporter,
		Meter:     OTelProvider.Meter(sweep.InstrumentationName),
	})
	if err != nil {
		return fmt.Errorf("failed to create sweeper: %w", err)
	}

	monitorSvc = monitor.NewService(monitor.Dependencies{
		Toggle:     toggleState,
		Registry:   entries,
		Pools:      pools,
		Reclaimer:  reclaimer,
		Logger:     Logger.With("component", "monitor"),
		StatusFile: statusFilePath(),
	})

	handlerSvc = handlers.NewService(handlers.Dependencies{
		Registry:         entries,
		Toggle:           toggleState,
		Sweeper:          sweeper,
		Pools:            pools,
		Monitor:          monitorSvc,
		Logger:           Logger.With("component", "handlers"),
		ExtensionVersion: CurrentExtensionVersion,
		BuildDate:        BuildDate,
	})

	toggleState.OnChange(func(c toggle.Change) {
		Logger.Info("Enemy damage text visibility changed", "enabled", c.Enabled, "source", c.Source)
	})
	return nil
}

func statusFilePath() string {
	if config.GetString("statusFile") == "" {
		return ""
	}
	return filepath.Join(ModuleFolder, config.GetString("statusFile"))
}

// setupHostBridge creates the dispatcher, registers commands and hands it to the bridge.
func setupHostBridge() error {
	hostbridge.SetVersion(CurrentExtensionVersion)

	d, err := dispatcher.New(logging.NewDispatcherLogger(ZLogger))
	if err != nil {
		return fmt.Errorf("failed to create dispatcher: %w", err)
	}
	handlerSvc.Register(d)
	registerLifecycleHandlers(d)

	hostbridge.SetDispatcher(d)
	eventRouter = d
	return nil
}

// registerLifecycleHandlers registers commands that are not about damage texts.
func registerLifecycleHandlers(d *dispatcher.Dispatcher) {
	d.Register(":GETDIR:MODULE:", func(e dispatcher.Event) (any, error) {
		return ModuleFolder, nil
	})

	d.Register(":GETDIR:LOG:", func(e dispatcher.Event) (any, error) {
		return LogFilePath, nil
	})

	// host-side script logging: level, function, message
	d.Register(":LOG:", func(e dispatcher.Event) (any, error) {
		if len(e.Args) < 3 {
			return nil, fmt.Errorf(":LOG: expects level, function and message, got %d args", len(e.Args))
		}
		args := util.CleanArgs(e.Args)
		SlogManager.WriteLog(args[1], args[2], args[0])
		return nil, nil
	}, dispatcher.Buffered(256))

	d.Register(":SHUTDOWN:", func(e dispatcher.Event) (any, error) {
		shutdown()
		return "ok", nil
	}, dispatcher.Logged())
}

// applyConfig pushes config values into the toggle and the reporter.
func applyConfig() {
	dbg := config.GetDebugConfig()
	reporter.SetVerbose(dbg.VerboseLogging)
	reporter.SetDedupe(dbg.DedupeTypes)
	toggleState.SetFromConfig(config.GetToggleConfig().ShowEnemyDamageText)
}

// startTelemetry connects the optional statistics store, InfluxDB and the status file.
func startTelemetry() {
	statsCfg := config.GetStatsConfig()
	if statsCfg.DumpPath != "" && !filepath.IsAbs(statsCfg.DumpPath) {
		statsCfg.DumpPath = filepath.Join(ModuleFolder, statsCfg.DumpPath)
	}
	backend, err := storage.NewBackend(statsCfg, ZLogger.With().Str("component", "stats").Logger(), CurrentExtensionVersion)
	if err == nil {
		err = backend.Init()
	}
	if err != nil {
		Logger.Error("Statistics store unavailable", "error", err, "type", statsCfg.Type)
	} else {
		statsRecord = storage.NewRecorder(backend, statsCfg.BufferSize, Logger.With("component", "stats"))
		sweeper.AddObserver(statsRecord)
		toggleState.OnChange(statsRecord.ObserveToggle)
		if sb, ok := backend.(storage.SessionBackend); ok {
			Logger.Info("Statistics store ready", "type", statsCfg.Type, "session", sb.SessionID())
		} else {
			Logger.Info("Statistics store ready", "type", statsCfg.Type)
		}
	}

	influxCfg := config.GetInfluxConfig()
	if influxCfg.Enabled {
		influxClient = influx.NewManager(
			influxCfg,
			ZLogger.With().Str("component", "influx").Logger(),
			filepath.Join(ModuleFolder, ExtensionName+"_influx_backup.log.gz"),
		)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := influxClient.Connect(ctx); err != nil {
			Logger.Error("InfluxDB unavailable", "error", err)
			influxClient = nil
		} else {
			sweeper.AddObserver(influxClient)
			toggleState.OnChange(influxClient.ObserveToggle)
		}
	}

	if err := monitorSvc.Start(); err != nil {
		Logger.Error("Failed to start status monitor", "error", err)
	}
}

// shutdown flushes and closes every sink. Safe to call more than once.
func shutdown() {
	if eventRouter != nil {
		eventRouter.Close()
	}
	monitorSvc.Stop()

	if handlerSvc != nil {
		tracked, idle := handlerSvc.Reset()
		Logger.Info("Released tracked texts", "tracked", tracked, "idle", idle)
	}

	if statsRecord != nil {
		if err := statsRecord.Close(); err != nil {
			Logger.Error("Failed to close statistics store", "error", err)
		}
	}
	if influxClient != nil {
		if err := influxClient.Close(); err != nil {
			Logger.Error("Failed to close InfluxDB client", "error", err)
		}
		influxClient = nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if OTelProvider != nil {
		if err := OTelProvider.Flush(ctx); err != nil {
			Logger.Warn("Failed to flush OTel data", "error", err)
		}
	}
	if err := SlogManager.Flush(ctx); err != nil {
		Logger.Warn("Failed to flush logs", "error", err)
	}
	if gelfWriter != nil {
		_ = gelfWriter.Close()
		gelfWriter = nil
	}
}

func main() {
	Logger.Info("Starting up headless...")
	defer shutdown()

	args := os.Args[1:]
	if len(args) == 0 {
		fmt.Println("Usage: damagetext demo [frames] | call <command> [args...]")
		return
	}

	switch strings.ToLower(args[0]) {
	case "demo":
		frames := 60
		if len(args) > 1 {
			if _, err := fmt.Sscanf(args[1], "%d", &frames); err != nil {
				fmt.Println("frames must be a number")
				return
			}
		}
		demoStart := time.Now()
		runDemo(os.Stdout, frames)
		Logger.Info("Demo finished", "duration", time.Since(demoStart))
	case "call":
		if len(args) < 2 {
			fmt.Println("No command provided.")
			return
		}
		fmt.Println(hostbridge.Call(args[1], args[2:]))
	default:
		fmt.Println("Unknown mode:", args[0])
	}
}
