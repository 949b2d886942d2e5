package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/plategen/internal/config"
	"github.com/matzehuels/plategen/pkg/render"
)

// configCommand creates the config management command.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the configuration file",
	}

	cmd.AddCommand(c.configShowCommand())
	cmd.AddCommand(c.configInitCommand())
	cmd.AddCommand(c.configPathCommand())

	return cmd
}

// configShowCommand creates the "config show" subcommand.
func (c *CLI) configShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			out := newPrinter(cmd.OutOrStdout())

			source := c.ConfigPath
			if source == "" {
				source = "defaults"
			}
			out.info("Config: %s", StyleHighlight.Render(source))
			out.newline()

			labels := "on"
			if cfg.Render.Labels != nil && !*cfg.Render.Labels {
				labels = "off"
			}
			seed := "random"
			if cfg.Layout.Seed != 0 {
				seed = fmt.Sprint(cfg.Layout.Seed)
			}

			out.keyValue("Packer", cfg.Layout.Packer)
			out.keyValue("Seed", seed)
			out.keyValue("Formats", strings.Join(cfg.Render.Formats, ", "))
			out.keyValue("Well size", fmt.Sprint(cfg.Render.WellSize))
			out.keyValue("Labels", labels)
			out.keyValue("Cache", cacheSummary(cfg.Cache))
			out.keyValue("Server", cfg.Server.Addr)
			out.keyValue("PNG/PDF", converterStatus())
			return nil
		},
	}
}

func cacheSummary(cc config.CacheConfig) string {
	switch cc.Backend {
	case config.BackendRedis:
		return fmt.Sprintf("redis %s/%d", cc.RedisAddr, cc.RedisDB)
	case config.BackendFile:
		if cc.Dir != "" {
			return "file " + cc.Dir
		}
		if dir, err := cacheDir(); err == nil {
			return "file " + dir
		}
	}
	return cc.Backend
}

func converterStatus() string {
	if render.Available() {
		return "rsvg-convert"
	}
	return "unavailable (install librsvg)"
}

// configInitCommand creates the "config init" subcommand.
func (c *CLI) configInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a config file with default values",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultConfigPath()
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.DefaultConfig().Save(path); err != nil {
				return fmt.Errorf("write config: %w", err)
			}
			out := newPrinter(cmd.OutOrStdout())
			out.success("Config written")
			out.file(path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	return cmd
}

// configPathCommand creates the "config path" subcommand.
func (c *CLI) configPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file in use",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := c.config(); err != nil {
				return err
			}
			if c.ConfigPath == "" {
				out := newPrinter(cmd.OutOrStdout())
				out.info("No config file found; using defaults")
				out.detail("Create one with: %s config init", appName)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), c.ConfigPath)
			return nil
		},
	}
}
