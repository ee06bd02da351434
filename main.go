package main

import (
	"context"
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/04pril/minesweeper-web/internal/config"
	"github.com/04pril/minesweeper-web/internal/ui"
)

const (
	windowWidth  = 1024
	windowHeight = 768
)

func newRootCmd() *cobra.Command {
	v := config.New()
	log := logrus.New()
	var (
		cfgFile string
		cfg     config.Config
	)

	root := &cobra.Command{
		Use:           "minesweeper",
		Short:         "Minesweeper for the desktop and the browser",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			var err error
			if cfg, err = config.Load(v, cfgFile); err != nil {
				return err
			}
			level, err := logrus.ParseLevel(cfg.Log.Level)
			if err != nil {
				return fmt.Errorf("log level: %w", err)
			}
			log.SetLevel(level)
			return nil
		},
		RunE: func(*cobra.Command, []string) error {
			return play(cfg, log)
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "YAML config file")
	pf.String("log-level", "", "log level (debug, info, warn, error)")
	mustBind(v, "log.level", pf.Lookup("log-level"))

	root.AddCommand(&cobra.Command{
		Use:   "play",
		Short: "Open the game window (default)",
		RunE: func(*cobra.Command, []string) error {
			return play(cfg, log)
		},
	})
	addServeCommand(root, v, &cfg, log)
	return root
}

func play(cfg config.Config, log *logrus.Logger) error {
	g, err := ui.New(cfg, log)
	if err != nil {
		return err
	}
	ebiten.SetWindowSize(windowWidth, windowHeight)
	ebiten.SetWindowTitle(g.Title())
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	return ebiten.RunGame(g)
}

func mustBind(v *viper.Viper, key string, flag *pflag.Flag) {
	if err := v.BindPFlag(key, flag); err != nil {
		panic(err)
	}
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "minesweeper:", err)
		os.Exit(1)
	}
}
