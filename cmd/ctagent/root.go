package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sagearbor/clinicalTrials-s2f/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	debug   bool
	rootCmd = &cobra.Command{
		Use:   "ctagent",
		Short: "ctagent automates clinical trial documentation and monitoring tasks",
	}
)

// Execute runs the root command.
func Execute() error {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", filepath.Join(".ctagent", "config.json"), "config file path")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	if err := viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config")); err != nil {
		return fmt.Errorf("bind config flag: %w", err)
	}
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load()
		logging.Init(debug)
	}
	rootCmd.AddCommand(monitorCmd())
	rootCmd.AddCommand(dblockCmd())
	rootCmd.AddCommand(safetyCmd())
	rootCmd.AddCommand(codeCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(synopsisCmd())
	rootCmd.AddCommand(recruitCmd())
	rootCmd.AddCommand(siteperfCmd())
	rootCmd.AddCommand(csrCmd())
	rootCmd.AddCommand(proposeCmd())
	rootCmd.AddCommand(progressCmd())
	rootCmd.AddCommand(checkCmd())
	rootCmd.AddCommand(runsCmd())
	rootCmd.AddCommand(boardCmd())
	return rootCmd.Execute()
}

func initConfig() {
	path := cfgFile
	if path == "" {
		path = filepath.Join(".ctagent", "config.json")
	}
	viper.SetConfigFile(path)
	viper.SetConfigType("json")
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
}
