// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the docbatch CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/docbatch/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

const (
	envPrefix         = "DOCBATCH"
	defaultEnvFile    = ".env"
	defaultSecretsDir = ".secrets"
	defaultLogFile    = "docbatch.log"
)

// rootCmd is the base command for the docbatch CLI.
var rootCmd = &cobra.Command{
	Use:   "docbatch",
	Short: "Batch-convert documents into JSON or Markdown",
	Long: `docbatch converts every matching document in a directory into a
structured JSON or Markdown file, sequentially or on a bounded worker pool.
Text extraction is delegated to a conversion backend: the markitdown
container, the built-in PDF text-layer reader, or a docling-serve instance.

Settings come from flags, DOCBATCH_* environment variables (a .env file in
the working directory is loaded first), and a YAML config file, in that
order of precedence.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./docbatch.yaml or ~/.config/docbatch/config.yaml)")
	pf.String("log-level", "info", "log level: debug, info, warn, or error")
	pf.String("log-encoding", "console", "stderr log encoding: console or json")
	pf.String("log-file", defaultLogFile, "rotating JSON log file (empty disables)")
	pf.String("secrets-dir", defaultSecretsDir, "directory of secret files, one per key")

	mustBind("log.level", pf.Lookup("log-level"))
	mustBind("log.encoding", pf.Lookup("log-encoding"))
	mustBind("log.file", pf.Lookup("log-file"))
	mustBind("secrets_dir", pf.Lookup("secrets-dir"))
}

func initConfig() {
	if err := secrets.LoadEnv(defaultEnvFile); err != nil {
		fmt.Fprintln(os.Stderr, "warning:", err)
	}

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("docbatch")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "docbatch"))
		}
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()
	_ = viper.BindEnv("converter.api_key")

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		fmt.Fprintln(os.Stderr, "warning: reading config file:", err)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
