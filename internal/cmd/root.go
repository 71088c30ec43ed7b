package cmd

import (
	"strings"

	"github.com/Iron-Ham/simdeck/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Build information, overridden at link time via
// -ldflags "-X github.com/Iron-Ham/simdeck/internal/cmd.version=v1.2.3".
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "simdeck",
	Short: "iOS simulator control server for coding agents",
	Long: `Simdeck manages iOS simulator devices on behalf of coding agents,
exposing device lifecycle, UI automation, and capture operations as MCP
tools over stdio or HTTP. Each agent session owns at most one simulator
device; devices created by simdeck are torn down when their session ends.`,
	Version: version,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/simdeck/config.yaml)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath("$HOME/.config/simdeck")
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("SIMDECK")
	// Replace dots with underscores for nested keys in env vars
	// e.g., SIMDECK_SERVER_LISTEN for server.listen
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}
