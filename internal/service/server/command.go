package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/oshokin/vent-alarm/internal/api/grpc/panel"
	"github.com/oshokin/vent-alarm/internal/config"
	"github.com/oshokin/vent-alarm/internal/domain/alarm"
	"github.com/oshokin/vent-alarm/internal/event"
	"github.com/oshokin/vent-alarm/internal/hal"
	"github.com/oshokin/vent-alarm/internal/logger"
	"github.com/oshokin/vent-alarm/internal/repository/journal"
	"github.com/oshokin/vent-alarm/internal/service/annunciator"
	"github.com/oshokin/vent-alarm/internal/version"
)

// Options controls the alarm-controller process.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file. A missing file
	// means default settings.
	ConfigPath string
	// ListenAddress overrides the panel listen address from the settings.
	ListenAddress string
	// BeeperOutput receives the terminal bell; defaults to stdout.
	BeeperOutput io.Writer
}

// Run starts the controller and blocks until ctx is canceled or a component
// fails.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "alarm-controller")

	cfg, err := config.LoadOrDefault(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	config.ApplyLogLevel(ctx, cfg)

	catalog, err := alarm.DefaultCatalog(alarm.WithMuteLimits(cfg.MuteLimits))
	if err != nil {
		return fmt.Errorf("build alarm catalog: %w", err)
	}

	simulated, err := simulatedKeys(cfg, catalog)
	if err != nil {
		return err
	}

	output := opts.BeeperOutput
	if output == nil {
		output = os.Stdout
	}

	beeper, err := hal.NewBeeper(cfg.Beeper, output)
	if err != nil {
		return fmt.Errorf("create beeper: %w", err)
	}

	bus := event.NewBus()
	svc := annunciator.New(ctx, catalog, beeper, bus, annunciator.WithSimulatedKeys(simulated))
	display := hal.NewDisplay()

	// The annunciator sees every event first; the display and the journal
	// observe the outcome.
	bus.Subscribe(svc)
	bus.Subscribe(display)

	alarmJournal, err := journal.Open(ctx, cfg.Journal.Driver, cfg.Journal.Path)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}

	if alarmJournal != nil {
		defer func() {
			if err := alarmJournal.Close(); err != nil {
				logger.ErrorKV(ctx, "Failed to close journal", "error", err)
			}
		}()

		bus.Subscribe(journal.NewRecorder(alarmJournal))
	}

	listenAddress := cfg.Panel.ListenAddress
	if opts.ListenAddress != "" {
		listenAddress = opts.ListenAddress
	}

	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", listenAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", listenAddress, err)
	}

	grpcServer := grpc.NewServer()
	var panelOpts []panel.Option
	if alarmJournal != nil {
		panelOpts = append(panelOpts, panel.WithJournal(alarmJournal))
	}

	panel.RegisterPanelServer(grpcServer, panel.NewServer(bus, svc, display, panelOpts...))

	logger.InfoKV(ctx, "Alarm controller started",
		"version", version.Short(),
		"panel_address", lis.Addr().String(),
		"alarms", catalog.Len(),
		"beeper", cfg.Beeper,
		"journal", cfg.Journal.Driver,
	)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return bus.Run(groupCtx)
	})

	group.Go(func() error {
		runTicker(groupCtx, svc, cfg.TickInterval)
		return nil
	})

	if watchable(opts.ConfigPath) {
		watcher := config.NewWatcher(opts.ConfigPath, config.ApplyLogLevel)

		group.Go(func() error {
			return watcher.Run(groupCtx)
		})
	}

	group.Go(func() error {
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("serve panel: %w", err)
		}

		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info(ctx, "Shutting down panel server")
		grpcServer.GracefulStop()

		return nil
	})

	err = group.Wait()

	logger.Info(ctx, "Alarm controller stopped")

	return err
}

// runTicker drives the controller tick hook.
func runTicker(ctx context.Context, svc *annunciator.Service, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			svc.Tick(ctx)
		}
	}
}

// simulatedKeys resolves the configured key simulation against the catalog.
func simulatedKeys(cfg *config.Config, catalog *alarm.Catalog) (map[event.Key]alarm.ID, error) {
	keys := make(map[event.Key]alarm.ID, len(cfg.Simulation.Keys))

	for name, alarmName := range cfg.Simulation.Keys {
		key, err := event.SimulatedKey(name)
		if err != nil {
			return nil, fmt.Errorf("simulated key: %w", err)
		}

		id, err := catalog.Resolve(alarmName)
		if err != nil {
			return nil, fmt.Errorf("simulated key %q: %w", name, err)
		}

		keys[key] = id
	}

	return keys, nil
}

// watchable reports whether the settings file exists and can be watched.
func watchable(path string) bool {
	if path == "" {
		path = config.DefaultConfigFilename
	}

	_, err := os.Stat(path)

	return err == nil
}
