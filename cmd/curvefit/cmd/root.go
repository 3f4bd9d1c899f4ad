package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/meenmo/curvefit/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "curvefit",
	Short: "Bootstrap discount and zero curves from market instruments",
	Long: `curvefit fits a term structure so that it reprices deposits, FRAs and
par swaps exactly, using either the iterative (pillar by pillar) or the
local (windowed) bootstrap.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "solver config file (.yaml or .toml)")
}

// loadConfig returns the file config when --config is set, else the defaults.
func loadConfig() (config.Config, error) {
	if cfgFile == "" {
		return config.GetConfig(), nil
	}
	c, err := config.Load(cfgFile)
	if err != nil {
		return config.Config{}, err
	}
	config.SetConfig(*c)
	return *c, nil
}

// newLogger builds a console or JSON logger writing to w.
func newLogger(cfg config.Log, w io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level: %w", err)
	}
	if cfg.Format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}
