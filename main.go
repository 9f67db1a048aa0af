package main

import (
	"log"

	"fyne.io/fyne/v2/app"
	"go.uber.org/zap"

	"github.com/PixPMusic/gopher-cc/internal/config"
	"github.com/PixPMusic/gopher-cc/internal/logging"
	"github.com/PixPMusic/gopher-cc/internal/midi"
	"github.com/PixPMusic/gopher-cc/internal/panel"
	"github.com/PixPMusic/gopher-cc/internal/params"
	"github.com/PixPMusic/gopher-cc/internal/window"
)

func main() {
	// Load configuration
	cfg, found, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	level, _ := cfg.Level()
	logger, err := logging.New(level)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Write the defaults on first launch so they can be edited
	if !found {
		if err := cfg.Save(); err != nil {
			logger.Warn("Failed to save config", zap.Error(err))
		}
	}

	// Initialize the MIDI backend; without one there is nothing to control
	drv, err := midi.NewDriver(cfg.Driver)
	if err != nil {
		logger.Fatal("Failed to initialize MIDI driver", zap.String("driver", cfg.Driver), zap.Error(err))
	}
	manager := midi.NewManager(drv, logger, cfg.MIDIOptions())

	ctrl := panel.New(manager, params.Default(), logger)
	defer ctrl.Shutdown()

	ctrl.RefreshDevices()

	fyneApp := app.NewWithID("com.pixpmusic.gophercc")
	mainWindow := window.NewMainWindow(fyneApp, ctrl, logger)

	// Blocks until the window is closed
	mainWindow.ShowAndRun()
}
