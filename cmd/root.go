package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/conceptnav/internal/category"
	"github.com/zjrosen/conceptnav/internal/config"
	"github.com/zjrosen/conceptnav/internal/flags"
	"github.com/zjrosen/conceptnav/internal/log"
	"github.com/zjrosen/conceptnav/internal/paths"
	"github.com/zjrosen/conceptnav/internal/ui/browser"
)

func init() {
	// Query the terminal background before any Bubble Tea program starts so
	// the OSC 11 response does not race with the input loop.
	// See: https://github.com/charmbracelet/bubbletea/issues/1036
	_ = lipgloss.HasDarkBackground()
}

var (
	version    = "dev"
	cfgFile    string
	debugFlag  bool
	purgeFlag  bool
	cfg        config.Config
	cfgErr     error
	configPath string
	logCleanup func()
)

var rootCmd = &cobra.Command{
	Use:   "conceptnav",
	Short: "Browse the concepts of SDMX microdata dataflows",
	Long: `conceptnav loads dataflow structures and constraints from an SDMX registry
and shows which variables and countries each selected dataflow covers.

Run without a subcommand to open the terminal browser.

Exit Codes:
  0  - Success
  1  - General error
  2  - Malformed registry response
  3  - Invalid reference bundle
  10 - Invalid configuration`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	RunE:              runBrowser,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/conceptnav/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false,
		"write a debug log to $CONCEPTNAV_LOG (default: debug.log)")
	rootCmd.PersistentFlags().BoolVar(&purgeFlag, "purge", false,
		"bypass cached responses for this run and store fresh ones")
}

func initConfig() {
	_ = godotenv.Load()
	cfg, configPath, cfgErr = loadConfig(cfgFile)
}

// loadConfig reads the config file, environment and defaults. A missing file
// is replaced by the commented default template.
func loadConfig(path string) (config.Config, string, error) {
	v := viper.New()
	setDefaults(v, config.Defaults())
	v.SetEnvPrefix("CONCEPTNAV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// Config lookup order:
	// 1. --config
	// 2. .conceptnav/config.yaml (current directory)
	// 3. ~/.config/conceptnav/config.yaml (user config)
	target := path
	switch {
	case path != "":
		v.SetConfigFile(path)
	default:
		if _, err := os.Stat(paths.LocalConfigFile); err == nil {
			v.SetConfigFile(paths.LocalConfigFile)
		} else {
			v.AddConfigPath(paths.ConfigDir())
			v.SetConfigName("config")
			v.SetConfigType("yaml")
			target = paths.DefaultConfigPath()
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return config.Config{}, "", fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		// If the write fails, continue on defaults with no config file.
		if writeErr := config.WriteDefaultConfig(target); writeErr == nil {
			v.SetConfigFile(target)
			_ = v.ReadInConfig()
		}
	}

	var c config.Config
	if err := v.Unmarshal(&c); err != nil {
		return config.Config{}, "", fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	c.Flags = flags.WithDefaults(c.Flags)
	if err := c.Validate(); err != nil {
		return config.Config{}, "", fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	used := v.ConfigFileUsed()
	if used == "" {
		used = target
	}
	log.Debug(log.CatConfig, "Loaded config", "path", used)
	return c, used, nil
}

func setDefaults(v *viper.Viper, d config.Config) {
	v.SetDefault("registry.base_url", d.Registry.BaseURL)
	v.SetDefault("registry.timeout", d.Registry.Timeout)
	v.SetDefault("cache.path", d.Cache.Path)
	v.SetDefault("cache.memory_entries", d.Cache.MemoryEntries)
	v.SetDefault("cache.disabled", d.Cache.Disabled)
	v.SetDefault("session.ttl", d.Session.TTL)
	v.SetDefault("session.cleanup_interval", d.Session.CleanupInterval)
	v.SetDefault("catalogue.category_scheme_agency", d.Catalogue.CategorySchemeAgency)
	v.SetDefault("catalogue.category_scheme_id", d.Catalogue.CategorySchemeID)
	v.SetDefault("catalogue.general_concepts_scheme", d.Catalogue.GeneralConceptsScheme)
	v.SetDefault("catalogue.excluded_categories", d.Catalogue.ExcludedCategories)
	v.SetDefault("catalogue.role_allow_list", d.Catalogue.RoleAllowList)
	v.SetDefault("fetch.concurrency", d.Fetch.Concurrency)
	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.file_path", d.Tracing.FilePath)
	v.SetDefault("tracing.otlp_endpoint", d.Tracing.OTLPEndpoint)
	v.SetDefault("tracing.sample_rate", d.Tracing.SampleRate)
	v.SetDefault("tracing.service_name", d.Tracing.ServiceName)
	v.SetDefault("ui.markdown_style", d.UI.MarkdownStyle)
	v.SetDefault("flags", d.Flags)
}

// setup enables debug logging and surfaces config errors before any command
// runs.
func setup(_ *cobra.Command, _ []string) error {
	if debugFlag || os.Getenv("CONCEPTNAV_DEBUG") != "" {
		logPath := os.Getenv("CONCEPTNAV_LOG")
		if logPath == "" {
			logPath = "debug.log"
		}
		cleanup, err := log.InitWithTeaLog(logPath, "conceptnav")
		if err != nil {
			return fmt.Errorf("initializing logging: %w", err)
		}
		logCleanup = cleanup
		log.Info(log.CatConfig, "conceptnav starting", "version", version, "config", configPath, "purge", purgeFlag)
	}
	return cfgErr
}

func runBrowser(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	s, err := newStack(cfg, purgeFlag)
	if err != nil {
		return err
	}
	defer s.Close(ctx)

	model := browser.New(ctx, s.nav, browser.Config{
		Selection:     cfg.Selection(),
		MarkdownStyle: cfg.UI.MarkdownStyle,
		SaveSelection: func(sel category.Selection) error {
			return config.SaveDefaultSelection(configPath, sel)
		},
		Logs: log.NewListener(ctx),
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	defer func() {
		if logCleanup != nil {
			logCleanup()
			logCleanup = nil
		}
	}()
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags).
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
