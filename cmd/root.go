package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile  string
	dbPath   string
	redisURL string
	logLevel string
	docsDir  string
	docsMode string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "gestor",
	Short: "Local-first management of criminal proceedings and coercive measures",
	Long: `Gestor tracks criminal proceedings ("processos") with their review and
maximum-duration deadlines, flags the ones approaching or past a deadline,
and resolves the PDF documents linked to each case from a local folder.

Features:
- Pending / closed case lists ordered by the earliest deadline
- Deadline alerts with a configurable warning window
- Reference lists for crimes, DIAPs, measures, prosecutors, judges and defendants
- Linked documents resolved from a bound folder or a set of selected files
- Word report and calendar (.ics) exports, JSON backup and restore
- Terminal UI and a scriptable command line`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.gestor.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "./data/gestor.db", "SQLite database path")
	rootCmd.PersistentFlags().StringVar(&redisURL, "redis", "", "Redis URL for the snapshot slot (empty keeps it in SQLite)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&docsDir, "docs-dir", "", "Folder holding the linked documents")
	rootCmd.PersistentFlags().StringVar(&docsMode, "docs-mode", "handle", "Document binding: handle (folder access) or files (scanned file set)")

	// Bind flags to viper
	viper.BindPFlag("database.path", rootCmd.PersistentFlags().Lookup("db"))
	viper.BindPFlag("storage.redis_url", rootCmd.PersistentFlags().Lookup("redis"))
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("documents.dir", rootCmd.PersistentFlags().Lookup("docs-dir"))
	viper.BindPFlag("documents.mode", rootCmd.PersistentFlags().Lookup("docs-mode"))
}

// initConfig reads in the .env file, the config file and ENV variables if set.
func initConfig() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "Ignoring .env:", err)
	}

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".gestor" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".gestor")
	}

	viper.SetEnvPrefix("GESTOR")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	// Set defaults
	viper.SetDefault("database.path", "./data/gestor.db")
	viper.SetDefault("storage.redis_url", "")
	viper.SetDefault("storage.slot_key", "gestor-judicial-data")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.file", "./data/gestor.log")
	viper.SetDefault("documents.dir", "")
	viper.SetDefault("documents.mode", "handle")
	viper.SetDefault("documents.extension", ".pdf")
	viper.SetDefault("urgency.threshold_days", 15)
	viper.SetDefault("viewer.command", "")
	viper.SetDefault("cache.ttl", 5*time.Minute)
	viper.SetDefault("ui.theme", "")
}

// GetConfig returns the current configuration values
func GetConfig() Config {
	return Config{
		Database: DatabaseConfig{
			Path: viper.GetString("database.path"),
		},
		Storage: StorageConfig{
			RedisURL: viper.GetString("storage.redis_url"),
			SlotKey:  viper.GetString("storage.slot_key"),
		},
		Log: LogConfig{
			Level: viper.GetString("log.level"),
			File:  viper.GetString("log.file"),
		},
		Documents: DocumentsConfig{
			Dir:       viper.GetString("documents.dir"),
			Mode:      viper.GetString("documents.mode"),
			Extension: viper.GetString("documents.extension"),
		},
		Urgency: UrgencyConfig{
			ThresholdDays: viper.GetInt("urgency.threshold_days"),
		},
		Viewer: ViewerConfig{
			Command: viper.GetString("viewer.command"),
		},
		Cache: CacheConfig{
			TTL: viper.GetDuration("cache.ttl"),
		},
		UI: UIConfig{
			Theme: viper.GetString("ui.theme"),
		},
	}
}

// Config represents the application configuration
type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Log       LogConfig       `mapstructure:"log"`
	Documents DocumentsConfig `mapstructure:"documents"`
	Urgency   UrgencyConfig   `mapstructure:"urgency"`
	Viewer    ViewerConfig    `mapstructure:"viewer"`
	Cache     CacheConfig     `mapstructure:"cache"`
	UI        UIConfig        `mapstructure:"ui"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type StorageConfig struct {
	RedisURL string `mapstructure:"redis_url"`
	SlotKey  string `mapstructure:"slot_key"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

type DocumentsConfig struct {
	Dir       string `mapstructure:"dir"`
	Mode      string `mapstructure:"mode"`
	Extension string `mapstructure:"extension"`
}

type UrgencyConfig struct {
	ThresholdDays int `mapstructure:"threshold_days"`
}

type ViewerConfig struct {
	Command string `mapstructure:"command"`
}

type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

type UIConfig struct {
	Theme string `mapstructure:"theme"`
}
