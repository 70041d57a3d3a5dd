package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "prism",
	Short: "Branching narrative progress tracker",
	Long: `Prism tracks a player's progress through a branching narrative: the active
route, the current scene, cleared routes, and whether the true route is unlocked.
Progress, settings, and the text log persist between sessions.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default .prism.yaml)")
	flags.BoolP("verbose", "v", false, "verbose output")
	flags.String("data-dir", ".prism", "directory holding saves, settings and telemetry")
	flags.String("backend", "sqlite", "storage backend: sqlite, file or memory")
	flags.String("slot", "", "save slot to play (default: first slot)")
	flags.Bool("no-color", false, "disable colored output")

	for key, flag := range map[string]string{
		"verbose":  "verbose",
		"data_dir": "data-dir",
		"backend":  "backend",
		"slot":     "slot",
		"no_color": "no-color",
	} {
		_ = viper.BindPFlag(key, flags.Lookup(flag))
	}
}

func initConfig() {
	if cfgFile, _ := rootCmd.Flags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".prism")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetEnvPrefix("PRISM")
	viper.AutomaticEnv()

	// It's fine if no config file is found; we use defaults.
	_ = viper.ReadInConfig()
}
