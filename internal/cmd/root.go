package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/logging"
)

var (
	cfgFile string
	v       = config.NewViper()
)

var rootCmd = &cobra.Command{
	Use:   "mudra",
	Short: "Hand gestures that drive 3D scene effects",
	Long: `Mudra tracks hands from a camera, recognises pinch, tap, point, open palm
and wave gestures, and turns them into effects on the objects of a scene.

Run the live pipeline with "mudra run", or replay a scripted hand against the
configured scene with "mudra simulate".`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is "+config.ConfigFile()+")")
}

func initConfig() {
	v = config.NewViper()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(config.ConfigDir())
		v.AddConfigPath(".")
	}
}

// loadSettings reads the config file, if any, and decodes the result.
// A missing default config file is not an error; a missing explicit one is.
func loadSettings() (*config.Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}
	return config.Load(v)
}

// newLogger builds the logger described by the settings. Without a log file
// lines go to the command's error stream.
func newLogger(cmd *cobra.Command, settings *config.Config) (*logging.Logger, error) {
	lc := settings.Logging
	if lc.File == "" {
		return logging.New(cmd.ErrOrStderr(), lc.Level, lc.Format), nil
	}
	return logging.NewLogger(lc.File, lc.Level, lc.Format)
}
