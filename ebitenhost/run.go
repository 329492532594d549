package ebitenhost

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/solarlune/framekit/config"
)

// Run opens the configured window and runs the Host until the window closes, Escape is pressed, or the loop fails. Quitting
// normally returns nil.
func Run(cfg *config.Config, host *Host) error {

	ebiten.SetWindowTitle(cfg.Window.Title)
	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetFullscreen(cfg.Window.Fullscreen)

	if cfg.Window.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	} else {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeDisabled)
	}

	if panel := host.loop.Panel(); panel != nil {
		panel.SetVisible(cfg.Debug.PanelVisible)
	}

	host.logger.WithFields(logrus.Fields{"width": cfg.Window.Width, "height": cfg.Window.Height}).Info("starting window")

	if err := ebiten.RunGame(host); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}

	return nil

}
