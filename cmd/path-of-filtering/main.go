package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bnema/path-of-filtering/internal/gateway"
	"github.com/bnema/path-of-filtering/internal/library"
	"github.com/bnema/path-of-filtering/internal/logging"
	"github.com/bnema/path-of-filtering/internal/models"
	"github.com/bnema/path-of-filtering/internal/store"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	cfg     models.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "path-of-filtering",
	Short: "Compose and export Path of Exile 2 loot filters",
	Long: `A companion tool that keeps a workspace of loot filters, imports the
filters found in the game's filter directory and writes them back in the
game's filter format.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ./configs/path_of_filtering.toml)")
	rootCmd.PersistentFlags().String("dir", "", "filter directory (overrides filters.directory)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")

	viper.BindPFlag("filters.directory", rootCmd.PersistentFlags().Lookup("dir"))
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.AddCommand(initCmd, listCmd, importCmd, exportCmd, newCmd, filterCmd, inspectCmd, fetchCmd, watchCmd, ruleCmd)
}

func defaultFilterDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, "Documents", "My Games", "Path of Exile 2")
}

func initConfig() {
	for _, envFile := range []string{".env", ".env.local"} {
		// missing .env files are fine
		_ = godotenv.Load(envFile)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("path_of_filtering")
		viper.SetConfigType("toml")
		viper.AddConfigPath("./configs")
		viper.AddConfigPath(".")
	}

	viper.SetEnvPrefix("POF")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("filters.directory", defaultFilterDir())
	viper.SetDefault("filters.extension", ".filter")
	viper.SetDefault("http.timeout", "30s")
	viper.SetDefault("http.retries", 3)
	viper.SetDefault("store.path", "./path_of_filtering.db")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.time_format", "2006-01-02 15:04:05")
	viper.SetDefault("log.rotation.max_size", 16)
	viper.SetDefault("log.rotation.max_backups", 3)
	viper.SetDefault("log.rotation.max_age", 30)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Error reading config: %v\n", err)
		}
	}

	if err := viper.Unmarshal(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing config: %v\n", err)
	}
	// an empty --dir flag must not override the configured directory
	if cfg.Filters.Directory == "" {
		cfg.Filters.Directory = defaultFilterDir()
	}
}

// app bundles what the commands share
type app struct {
	log     logging.LoggerService
	gateway *gateway.Gateway
	store   *store.SQLiteStore
	library *library.Library
}

// openApp opens the workspace store and loads the saved library
func openApp(ctx context.Context) (*app, error) {
	log := logging.NewLoggerService("pof", cfg.Log)
	gw := gateway.New(cfg.Filters.Directory, cfg.FilterExtension())

	st, err := store.NewSQLiteStore(store.SQLiteConfig{Path: cfg.Store.Path})
	if err != nil {
		return nil, err
	}
	if err := st.Connect(ctx); err != nil {
		return nil, fmt.Errorf("connect store: %w", err)
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, fmt.Errorf("migrate store: %w", err)
	}

	lib := library.New(gw, st, log)
	if err := lib.Load(ctx); err != nil {
		st.Close()
		return nil, err
	}

	return &app{log: log, gateway: gw, store: st, library: lib}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

// filterIndex resolves a filter by name, or the selected one when name is empty
func (a *app) filterIndex(name string) (int, error) {
	if name == "" {
		if a.library.Selected() == nil {
			return -1, fmt.Errorf("workspace is empty")
		}
		return a.library.SelectedIndex(), nil
	}
	idx, ok := a.library.FindByName(name)
	if !ok {
		return -1, fmt.Errorf("no filter named %q in workspace", name)
	}
	return idx, nil
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	RunE:  runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath := "./configs/path_of_filtering.toml"
	if cfgFile != "" {
		configPath = cfgFile
	}

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists: %s", configPath)
	}

	defaultConfig := fmt.Sprintf(`# Path of Filtering configuration

# Where the game looks for loot filters
[filters]
directory = %q
extension = ".filter"

# HTTP client settings used by "fetch"
[http]
timeout = "30s"
retries = 3

# Workspace database
[store]
path = "./path_of_filtering.db"

[log]
level = "info"
file = ""
json = false
no_color = false

[log.rotation]
max_size = 16
max_backups = 3
max_age = 30
compress = false
`, defaultFilterDir())

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return err
	}
	if err := os.WriteFile(configPath, []byte(defaultConfig), 0644); err != nil {
		return err
	}

	fmt.Printf("Created config file: %s\n", configPath)
	return nil
}
