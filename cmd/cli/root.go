package main

import (
	"github.com/spf13/cobra"

	"campus-energy/internal/config"
	"campus-energy/internal/store"
)

var (
	cfgFile string
	dbPath  string
)

var rootCmd = &cobra.Command{
	Use:   "campus-energy",
	Short: "Forecast campus energy signals and schedule flexible load",
	Long: `campus-energy ingests 15-minute building demand, solar production and
wholesale price series, fits forecasting models, and turns the forecasts
into battery dispatch plans and lecture timetables.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database file (default from config)")
}

func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		path = config.DefaultConfigPath()
	}
	return config.Load(path)
}

func openStore(cfg *config.Config) (*store.Store, error) {
	path := dbPath
	if path == "" {
		path = cfg.Data.DBPath
	}
	return store.New(path)
}
