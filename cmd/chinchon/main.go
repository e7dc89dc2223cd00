package main

import (
	"os"

	"chinchon/internal/config"
	"chinchon/internal/logging"
	"chinchon/internal/render"

	"github.com/spf13/cobra"
)

var (
	configFile string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "chinchon",
	Short: "Chinchón engine tools",
	Long:  `Plays bot matches and solves hands with the same engine the Nakama module runs.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		env, err := config.ParseRuntimeEnv(nil)
		if err != nil {
			return err
		}
		if !cmd.Flags().Changed("log-level") {
			logLevel = env.LogLevel
		}
		if configFile == "" {
			return nil
		}
		return config.LoadGameConfig(configFile)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "game config file (json, yaml or toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "debug, info, warn or error (default CHINCHON_LOG_LEVEL)")
	rootCmd.AddCommand(newSimulateCmd(), newMeldsCmd())
}

// renderer builds a renderer with the glyphs of the loaded game config.
func renderer() (*render.Renderer, error) {
	glyphs, err := render.ParseGlyphs(config.GetGameConfig().Glyphs)
	if err != nil {
		return nil, err
	}
	return render.NewRenderer(glyphs), nil
}

func newLogger(cmd *cobra.Command) *logging.Logger {
	return logging.New(cmd.ErrOrStderr(), "chinchon", logLevel)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
