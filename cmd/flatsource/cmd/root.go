package cmd

import (
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/osinstall/flatsource"
)

var rootCmd = &cobra.Command{
	Use:   "flatsource",
	Short: "Flatpak image source resolution and staging",
	Long:  "CLI for sizing, staging and inspecting Flatpak content from OCI layouts and registry indices.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ~/.config/flatsource/config.yaml)")
	rootCmd.PersistentFlags().String("arch", "", "Flatpak architecture (default: current)")
	rootCmd.PersistentFlags().Bool("registry", false, "treat the source URL as a registry index")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug logging")

	viper.BindPFlag("arch", rootCmd.PersistentFlags().Lookup("arch"))
	viper.BindPFlag("registry", rootCmd.PersistentFlags().Lookup("registry"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

func initConfig() {
	if cfg := rootCmd.PersistentFlags().Lookup("config").Value.String(); cfg != "" {
		viper.SetConfigFile(cfg)
	} else {
		viper.AddConfigPath(configDir())
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("FLATSOURCE")
	viper.AutomaticEnv()

	viper.ReadInConfig()

	if viper.GetBool("verbose") {
		log.SetLevel(log.DebugLevel)
	}
}

func configDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "flatsource")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "flatsource")
	}
	return ".flatsource"
}

// newSource builds a source for the given URL based on the configured
// flags.
func newSource(url string) flatsource.Source {
	opts := []flatsource.Option{flatsource.WithArch(viper.GetString("arch"))}

	if viper.GetBool("registry") {
		return flatsource.NewRegistrySource(url, opts...)
	}
	return flatsource.NewStaticSource(flatsource.RepoConfig{BaseURL: url}, opts...)
}
