package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/twidi/streamdeckfs-go/internal/adapters/config"
	"github.com/twidi/streamdeckfs-go/internal/adapters/fswatch"
	"github.com/twidi/streamdeckfs-go/internal/adapters/hiddevice"
	"github.com/twidi/streamdeckfs-go/internal/adapters/logging"
	"github.com/twidi/streamdeckfs-go/internal/adapters/rasterize"
	"github.com/twidi/streamdeckfs-go/internal/core/device"
	"github.com/twidi/streamdeckfs-go/internal/core/entities"
	"github.com/twidi/streamdeckfs-go/internal/core/reconcile"
	"github.com/twidi/streamdeckfs-go/internal/core/render"
	"github.com/twidi/streamdeckfs-go/internal/core/scheduler"
	"github.com/twidi/streamdeckfs-go/internal/ui"
)

var headlessFlag bool

var runCmd = &cobra.Command{
	Use:     "run",
	Short:   "Start the daemon against a deck directory",
	GroupID: "serving",
	RunE:    runDaemon,
}

func init() {
	runCmd.Flags().BoolVar(&headlessFlag, "headless", false, "run without opening a physical device")
	rootCmd.AddCommand(runCmd)
}

func runDaemon(cmd *cobra.Command, args []string) error {
	out := ui.NewOutput().WithVerbose(Verbose)

	deckDir, err := filepath.Abs(DeckDir)
	if err != nil {
		return fmt.Errorf("run: resolve deck dir: %w", err)
	}

	daemonCfg, err := config.LoadDaemon(appViper, cfgFile)
	if err != nil {
		return fmt.Errorf("run: load daemon config: %w", err)
	}
	if Verbose {
		daemonCfg.LogLevel = "debug"
	}

	model, err := config.LoadModel(deckDir)
	if err != nil {
		return fmt.Errorf("run: load .model: %w", err)
	}

	log := logging.New(logging.Level(daemonCfg.LogLevel)).WithFields("deck", model.Serial)

	var drv device.Driver
	if headlessFlag {
		hd, err := hiddevice.NewHeadless(model.DeviceClass)
		if err != nil {
			return fmt.Errorf("run: headless driver: %w", err)
		}
		drv = hd
		out.Info(fmt.Sprintf("running headless against device class %q", model.DeviceClass))
	} else {
		hw, err := hiddevice.NewForSerial(model.DeviceClass, model.Serial)
		if err != nil {
			return fmt.Errorf("run: device driver: %w", err)
		}
		drv = hw
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := drv.Open(ctx); err != nil {
		if headlessFlag {
			return fmt.Errorf("run: open headless driver: %w", err)
		}
		out.Warning(fmt.Sprintf("device not connected yet, will retry: %v", err))
	}

	rows, cols, keyW, keyH, _ := drv.Geometry()
	deck := entities.NewDeck(deckDir, model.DeviceClass, rows, cols, keyW, keyH)
	deck.Serial = model.Serial

	watcher, err := fswatch.New()
	if err != nil {
		return fmt.Errorf("run: filesystem watcher: %w", err)
	}
	defer watcher.Close()

	fonts := rasterize.NewFontSet()
	ras := rasterize.New(fonts)

	r := reconcile.New(deckDir, deck, reconcile.Deps{
		Watcher: watcher,
		Sched:   scheduler.New(),
		Ras:     render.Rasterizer(ras),
		Drv:     drv,
		Log:     log,
		Daemon:  daemonCfg,
	})

	out.Title("streamdeckfs")
	out.KeyValue("deck", deckDir)
	out.KeyValue("device", model.DeviceClass)
	out.KeyValue("grid", fmt.Sprintf("%dx%d", rows, cols))
	out.Success("daemon running, press Ctrl-C to stop")

	r.Run(ctx)

	out.Info("shutting down")
	return drv.Close()
}
