package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/plategen/internal/config"
	"github.com/matzehuels/plategen/pkg/buildinfo"
	"github.com/matzehuels/plategen/pkg/cache"
	"github.com/matzehuels/plategen/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "plategen"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config is loaded lazily by [CLI.config] so that --config is honoured.
	Config     *config.Config
	ConfigPath string

	configFlag string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Plategen lays out lab experiments on well plates",
		Long: `Plategen places sample × reagent replicates onto 96- or 384-well plates
and produces a colour key for the reagents.

Experiments are read from JSON, TOML or YAML files with the keys
max_well_count, sample_list, reagent_list and replicate_count.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configFlag, "config", "", "config file (default: $PLATEGEN_CONFIG, ./plategen.toml, ~/.config/plategen/config.toml)")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.showCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// config returns the loaded configuration, reading it on first use.
func (c *CLI) config() (*config.Config, error) {
	if c.Config != nil {
		return c.Config, nil
	}
	var (
		cfg  *config.Config
		path string
		err  error
	)
	if c.configFlag != "" {
		cfg, path, err = config.LoadFromPath(c.configFlag)
	} else {
		cfg, path, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if path != "" {
		c.Logger.Debug("loaded config", "path", path)
	}
	c.Config, c.ConfigPath = cfg, path
	return cfg, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	store, err := newCache(cfg.Cache, noCache)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if cfg.Cache.Prefix != "" {
		keyer = cache.NewScopedKeyer(cache.NewDefaultKeyer(), cfg.Cache.Prefix)
	}
	runner := pipeline.NewRunner(store, keyer, c.Logger)
	runner.SetTTL(cfg.Cache.TTL)
	return runner, nil
}

func newCache(cfg config.CacheConfig, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendRedis:
		return cache.NewRedisCache(cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}), nil
	}
	dir := cfg.Dir
	if dir == "" {
		d, err := cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		dir = d
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/plategen/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// baseOptions returns pipeline options from the config file with pipeline
// defaults filled in. Flags are applied on top by each command.
func (c *CLI) baseOptions() (pipeline.Options, error) {
	cfg, err := c.config()
	if err != nil {
		return pipeline.Options{}, err
	}
	opts := cfg.PipelineOptions()
	opts.SetLayoutDefaults()
	opts.SetRenderDefaults()
	return opts, nil
}

// parseFormats parses a comma-separated format string into a slice.
// An empty string yields nil so the configured formats apply.
func parseFormats(s string) []string {
	if s == "" {
		return nil
	}
	var formats []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			formats = append(formats, f)
		}
	}
	return formats
}

// baseName strips the directory and known suffixes from an input path.
func baseName(path string) string {
	base := filepath.Base(path)
	if strings.HasSuffix(base, layoutSuffix) {
		return strings.TrimSuffix(base, layoutSuffix)
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// outputPath returns where an artifact for format should be written. With a
// single format, output is used as-is; otherwise it is a base path.
func outputPath(input, output, format string, single bool) string {
	if output != "" {
		if single {
			return output
		}
		return strings.TrimSuffix(output, filepath.Ext(output)) + "." + format
	}
	dir := filepath.Dir(input)
	return filepath.Join(dir, fmt.Sprintf("%s.%s", baseName(input), format))
}
