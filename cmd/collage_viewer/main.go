// collage_viewer is the AR collage overlay core: it ingests tracked marker
// poses from the external tracker stream, smooths them, runs clip-region
// animations and the control surface state machine, and emits render side
// effects once per tick.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arcollage/viewer/internal/config"
	"github.com/arcollage/viewer/internal/control"
	"github.com/arcollage/viewer/internal/dispatcher"
	"github.com/arcollage/viewer/internal/engine"
	"github.com/arcollage/viewer/internal/history"
	"github.com/arcollage/viewer/internal/ingest"
	"github.com/arcollage/viewer/internal/interp"
	"github.com/arcollage/viewer/internal/logging"
	"github.com/arcollage/viewer/internal/marker"
	"github.com/arcollage/viewer/internal/monitor"
	"github.com/arcollage/viewer/pkg/core"
)

const appName = "collage_viewer"

// App owns every collaborator for one run of the viewer. All wiring is
// explicit; nothing lives in package-level state.
type App struct {
	cfg       *config.Config
	logs      *logging.Manager
	store     *marker.Store
	surface   *control.Surface
	engine    *engine.Engine
	disp      *dispatcher.Dispatcher
	client    *ingest.Client
	backend   history.Backend
	recorder  *history.Recorder
	session   *history.Session
	recording bool
	monitor   *monitor.Service

	logFile *os.File
}

func newApp(configDir string) (*App, error) {
	cfg, err := config.Load(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	app := &App{cfg: cfg, logs: logging.NewManager()}
	sessionStart := time.Now()

	if err := os.MkdirAll(cfg.LogsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}
	logPath := logging.LogFilePath(cfg.LogsDir, appName, sessionStart)
	app.logFile, err = os.Create(logPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}
	app.logs.Setup(app.logFile, cfg.LogLevel)
	logger := app.logs.Logger()

	app.store = marker.NewStore(cfg.Audio.VolumeBand)

	effects := &logEffects{logger: logger}
	app.surface = control.New(app.store, effects, cfg.Control)

	app.engine = engine.New(engine.Dependencies{
		Store:     app.store,
		Interp:    interp.New(app.store, cfg.InterpSettings()),
		Surface:   app.surface,
		Transform: cfg.Screen,
		Effects:   effects,
		Logger:    logger,
		Throttle:  cfg.ShapeThrottle(),
	})

	app.backend, err = history.NewBackend(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to create history backend: %w", err)
	}
	if err := app.backend.Init(); err != nil {
		return nil, fmt.Errorf("failed to init history backend: %w", err)
	}
	app.recorder = history.NewRecorder(app.backend,
		cfg.History.PositionThreshold, cfg.History.RotationThreshold)
	app.session = &history.Session{Name: appName, StartTime: sessionStart}

	app.disp, err = dispatcher.New(logging.NewDispatcherLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create dispatcher: %w", err)
	}
	app.registerHandlers()

	app.client = ingest.NewClient(cfg.Tracker.URL, ingest.NewParser(logger), app.disp, logger)

	app.monitor = monitor.NewService(monitor.Dependencies{
		Source:    app.engine,
		Logger:    logger,
		StatusDir: cfg.LogsDir,
		Interval:  time.Second,
	})
	return app, nil
}

func (a *App) registerHandlers() {
	a.disp.Register(core.TypeTrackingUpdate, a.engine.HandleTrackingUpdate, dispatcher.Buffered(256))
	a.disp.Register(core.TypeControlChange, a.handleControlChange)
	a.disp.Register(core.TypeTrigger, a.handleTrigger)
}

func (a *App) handleControlChange(ev dispatcher.Event) error {
	cc, ok := ev.Payload.(core.ControlChange)
	if !ok {
		return nil
	}
	a.surface.OnControlChange(cc)

	kind := history.ControlKindParam
	if cc.Channel == a.cfg.Control.SelectionDial {
		kind = history.ControlKindDial
	}
	return a.recorder.ObserveControl(history.ControlEvent{
		Time: cc.Time, Kind: kind, Channel: cc.Channel, Value: cc.Value,
	})
}

func (a *App) handleTrigger(ev dispatcher.Event) error {
	te, ok := ev.Payload.(core.TriggerEvent)
	if !ok {
		return nil
	}
	a.surface.OnTriggerEvent(te)
	return a.recorder.ObserveControl(history.ControlEvent{
		Time: te.Time, Kind: history.ControlKindTrigger, Channel: te.Note, Value: te.Velocity,
	})
}

// run connects to the tracker and drives the tick loop until a signal
// arrives.
func (a *App) run() error {
	logger := a.logs.Logger()

	if err := a.backend.StartSession(a.session); err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	a.recording = true

	if err := a.client.Start(); err != nil {
		return fmt.Errorf("failed to connect to tracker: %w", err)
	}
	logger.Info("waiting for tracker connection", "url", a.cfg.Tracker.URL)
	<-a.client.Ready()
	logger.Info("tracker connected, starting tick loop", "tickHz", a.cfg.Loop.TickHz)

	if err := a.monitor.Start(); err != nil {
		logger.Error("failed to start status monitor", "error", err)
	}
	defer a.monitor.Stop()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(a.cfg.TickInterval())
	defer ticker.Stop()

	for {
		select {
		case sig := <-sigs:
			logger.Info("shutting down", "signal", sig.String())
			return nil
		case now := <-ticker.C:
			a.engine.Tick(now)
			a.recordPoses(now)
		}
	}
}

// recordPoses feeds current marker poses through the history recorder,
// which drops samples below the motion thresholds.
func (a *App) recordPoses(now time.Time) {
	logger := a.logs.Logger()
	a.store.Each(func(m *marker.Marker) {
		if !m.Visible {
			return
		}
		if err := a.recorder.ObservePose(m.ID, m.CurrentPose, now); err != nil {
			logger.Error("failed to record pose", "marker", m.ID, "error", err)
		}
	})
}

func (a *App) shutdown() {
	logger := a.logs.Logger()

	if err := a.client.Close(); err != nil {
		logger.Error("error closing tracker client", "error", err)
	}
	if a.recording {
		if err := a.backend.EndSession(); err != nil {
			logger.Error("error ending session", "error", err)
		}
		if exp, ok := a.backend.(history.Exportable); ok && exp.ExportedFilePath() != "" {
			logger.Info("session exported", "path", exp.ExportedFilePath())
		}
	}
	if err := a.backend.Close(); err != nil {
		logger.Error("error closing history backend", "error", err)
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
}

func main() {
	configDir := "."
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	app, err := newApp(configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		os.Exit(1)
	}
	defer app.shutdown()

	if err := app.run(); err != nil {
		app.logs.Logger().Error("fatal", "error", err)
		app.shutdown()
		os.Exit(1)
	}
}
