// Package cli implements the adforge command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/adforge/adforge/internal/config"
	"github.com/adforge/adforge/pkg/buildinfo"
	"github.com/adforge/adforge/pkg/cache"
	"github.com/adforge/adforge/pkg/export"
	"github.com/adforge/adforge/pkg/render"
	"github.com/adforge/adforge/pkg/template"
	"github.com/adforge/adforge/pkg/translate"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "adforge"
)

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

	// ConfigPath is the --config flag value, resolved lazily so the
	// flag is parsed before the first load.
	ConfigPath string

	cfg     *config.Config
	nocache bool
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
		Use:          appName,
		Short:        "AdForge builds and exports localized ad creatives",
		Long:         `AdForge is a toolchain for authoring HTML ad creatives: it binds field values into templates, renders them to images and videos, translates copy across languages, and packs everything into deliverable archives.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.ConfigPath, "config", "", "path to config file (default ~/.config/adforge/config.toml)")
	root.PersistentFlags().BoolVar(&c.nocache, "no-cache", false, "disable the render and translation cache")

	// Register all subcommands
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.fieldsCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.translateCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Wiring
// =============================================================================

// Config loads the configuration once per process.
func (c *CLI) Config() (config.Config, error) {
	if c.cfg != nil {
		return *c.cfg, nil
	}
	cfg, err := config.Load(c.ConfigPath)
	if err != nil {
		return cfg, err
	}
	c.cfg = &cfg
	return cfg, nil
}

func (c *CLI) newCache(ctx context.Context, cfg config.Cache) cache.Cache {
	if c.nocache || cfg.Disabled {
		return cache.NewNullCache()
	}
	if cfg.RedisURL != "" {
		rc, err := cache.NewRedisCache(ctx, cfg.RedisURL)
		if err != nil {
			c.Logger.Warn("redis unavailable, using file cache", "err", err)
		} else {
			return rc
		}
	}
	dir := cfg.Dir
	if dir == "" {
		d, err := cacheDir()
		if err != nil {
			return cache.NewNullCache()
		}
		dir = d
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return cache.NewNullCache()
	}
	return fc
}

func (c *CLI) newLoader(cfg config.Templates) template.Loader {
	if cfg.URL != "" {
		return template.NewHTTPLoader(cfg.URL, cfg.Names)
	}
	dir := cfg.Dir
	if dir == "" {
		dir = "templates"
	}
	return template.NewFSLoader(os.DirFS(dir))
}

func (c *CLI) newTranslator(ctx context.Context, cfg config.Config) *translate.Translator {
	tr := translate.New(
		translate.NewGoogleWeb(""),
		translate.NewLibre(cfg.Translate.LibreURL, cfg.Translate.LibreKey),
	)
	tr.Cache = c.newCache(ctx, cfg.Cache)
	tr.TTL = cfg.Cache.TTL()
	if cfg.Translate.PaceMS > 0 {
		tr.Pace = time.Duration(cfg.Translate.PaceMS) * time.Millisecond
	}
	return tr
}

func (c *CLI) newExporter(ctx context.Context, cfg config.Config) *export.Exporter {
	rast := render.Rasterizer(&render.ChromeRasterizer{Binary: cfg.Render.ChromiumBinary})
	rast = render.NewCachedRasterizer(rast, c.newCache(ctx, cfg.Cache), nil, cfg.Cache.TTL())

	return &export.Exporter{
		Loader:     c.newLoader(cfg.Templates),
		Rasterizer: rast,
		Muxer:      &render.FFmpegMuxer{Binary: cfg.Render.FFmpegBinary},
		Translator: c.newTranslator(ctx, cfg),
		Scale:      cfg.Render.ShotScale,
	}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/adforge/).
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
