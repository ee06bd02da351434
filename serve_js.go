//go:build js

package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/04pril/minesweeper-web/internal/config"
)

// The browser build only plays; the asset server runs natively.
func addServeCommand(*cobra.Command, *viper.Viper, *config.Config, *logrus.Logger) {}
