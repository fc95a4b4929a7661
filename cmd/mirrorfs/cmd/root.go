package cmd

import (
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aweris/mirrorfs"
)

var rootCmd = &cobra.Command{
	Use:   "mirrorfs",
	Short: "In-memory directory mirror CLI",
	Long:  "CLI for inspecting and following a directory through an in-memory mirror.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ~/.config/mirrorfs/config.yaml)")
	rootCmd.PersistentFlags().String("pattern", "", "only track entries matching a glob pattern")
	rootCmd.PersistentFlags().Bool("json", false, "decode .json entries")
	rootCmd.PersistentFlags().Int("concurrency", mirrorfs.DefaultConcurrency, "parallel reads per batch")
	rootCmd.PersistentFlags().Bool("verbose", false, "log cache and watcher warnings")

	viper.BindPFlag("pattern", rootCmd.PersistentFlags().Lookup("pattern"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("concurrency", rootCmd.PersistentFlags().Lookup("concurrency"))
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

	viper.SetEnvPrefix("MIRRORFS")
	viper.AutomaticEnv()

	viper.ReadInConfig()
}

func configDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "mirrorfs")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "mirrorfs")
	}
	return ".mirrorfs"
}

func openOptions() []mirrorfs.Option {
	opts := []mirrorfs.Option{
		mirrorfs.WithConcurrency(viper.GetInt("concurrency")),
	}
	if pattern := viper.GetString("pattern"); pattern != "" {
		opts = append(opts, mirrorfs.WithFilter(mirrorfs.FilterPattern(pattern)))
	}
	if viper.GetBool("json") {
		opts = append(opts, mirrorfs.WithJSON())
	}
	if viper.GetBool("verbose") {
		opts = append(opts, mirrorfs.WithLogger(log.New(os.Stderr, "[mirrorfs] ", log.LstdFlags)))
	}
	return opts
}
