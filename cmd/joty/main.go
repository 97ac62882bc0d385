package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"joty/internal/config"
	"joty/internal/extract"
	"joty/internal/filter"
	"joty/internal/names"
	"joty/internal/report"
	"joty/internal/store"
	"joty/internal/window"

	"github.com/spf13/cobra"
)

var (
	logger     *slog.Logger
	configPath string // overridable via --config flag
)

func main() {
	logger = newLogger("info")

	root := &cobra.Command{
		Use:   "joty",
		Short: "joty: mine award nominations from local message history",
		Long:  "joty extracts nomination messages with their surrounding conversation from a local iMessage database and renders them as JSON plus a reviewable markdown document.",
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.json (default: ~/.joty/config.json)")

	root.AddCommand(initCmd())
	root.AddCommand(extractCmd())
	root.AddCommand(remapCmd())
	root.AddCommand(configCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(level string) *slog.Logger {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}

// resolveConfigPath returns the config path from --config flag or default.
func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return config.DefaultConfigPath()
}

// loadOrDefaults loads the config file, falling back to defaults when it
// does not exist yet.
func loadOrDefaults() *config.Config {
	cfgPath := resolveConfigPath()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Warn("config not found, using defaults", "path", cfgPath, "err", err)
		return config.Defaults()
	}
	return cfg
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize config directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgDir := config.DefaultConfigDir()
			cfgPath := config.DefaultConfigPath()
			if err := os.MkdirAll(cfgDir, 0o755); err != nil {
				return err
			}
			cfg := config.Defaults()
			if err := config.Save(cfgPath, cfg); err != nil {
				return err
			}
			logger.Info("initialized", "config", cfgPath)
			return nil
		},
	}
}

func extractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extract",
		Short: "Extract nominations with context and write the review files",
		RunE:  runExtract,
	}
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg := loadOrDefaults()
	logger = newLogger(cfg.General.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cutoff, err := cfg.Cutoff()
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.Store.DBPath, cfg.Filter.ReactionPrefixes, logger)
	if err != nil {
		return fmt.Errorf("message store: %w", err)
	}
	defer st.Close()

	heuristic, err := filter.New(cfg.Filter.MetaPatterns, cfg.Filter.MaxLength)
	if err != nil {
		return fmt.Errorf("nomination filter: %w", err)
	}

	table, err := names.LoadTable(cfg.Report.NameMapPath, logger)
	if err != nil {
		logger.Warn("name map not loaded, using fallback formatting only", "err", err)
		table = nil
	}

	extractor := extract.New(extract.Config{
		Store:         st,
		Filter:        heuristic,
		Window:        window.NewBuilder(st, cfg.Window.ThreadLookback, cfg.Window.FlatLookback, logger),
		Names:         names.Formatter{SelfName: cfg.General.SelfName, Table: table},
		Keyword:       cfg.Filter.Keyword,
		Cutoff:        cutoff,
		ExcludedChats: cfg.Report.ExcludedChats,
		Logger:        logger,
	})

	entries, err := extractor.Run(ctx)
	if err != nil {
		return err
	}

	emitter := report.Emitter{Label: strings.ToUpper(cfg.Filter.Keyword)}
	if err := emitter.WriteJSON(cfg.Report.JSONPath, entries); err != nil {
		return fmt.Errorf("write candidates: %w", err)
	}
	if err := emitter.WriteMarkdown(cfg.Report.MarkdownPath, entries); err != nil {
		return fmt.Errorf("write review: %w", err)
	}

	logger.Info("saved output", "json", cfg.Report.JSONPath, "markdown", cfg.Report.MarkdownPath)
	return nil
}

func remapCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remap",
		Short: "Rewrite sender names in persisted output through the name map",
		Long:  "Reads the previously extracted candidates JSON, maps sender display names through the names.yaml table, rewrites the JSON in place, and regenerates the markdown. Safe to re-run.",
		RunE:  runRemap,
	}
}

func runRemap(cmd *cobra.Command, args []string) error {
	cfg := loadOrDefaults()
	logger = newLogger(cfg.General.LogLevel)

	entries, err := report.ReadJSON(cfg.Report.JSONPath)
	if err != nil {
		return err
	}

	table, err := names.LoadTable(cfg.Report.NameMapPath, logger)
	if err != nil {
		return err
	}
	if len(table) == 0 {
		logger.Warn("name map is empty, output will be unchanged", "path", cfg.Report.NameMapPath)
	}
	table.Apply(entries)

	emitter := report.Emitter{Label: strings.ToUpper(cfg.Filter.Keyword)}
	if err := emitter.WriteJSON(cfg.Report.JSONPath, entries); err != nil {
		return fmt.Errorf("write candidates: %w", err)
	}
	if err := emitter.WriteMarkdown(cfg.Report.MarkdownPath, entries); err != nil {
		return fmt.Errorf("write review: %w", err)
	}

	logger.Info("remapped entries", "count", len(entries), "names", len(table))
	return nil
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "View and modify configuration",
		Long:  "Get, set, and list configuration values. Changes are saved to the config file.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get [path]",
		Short: "Get a config value (e.g. filter.keyword)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath := resolveConfigPath()
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			val, err := config.GetByPath(cfg, args[0])
			if err != nil {
				return err
			}
			data, _ := json.MarshalIndent(val, "", "  ")
			fmt.Println(string(data))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set [path] [value]",
		Short: "Set a config value (e.g. window.flatLookback 20)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath := resolveConfigPath()
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := config.SetByPath(cfg, args[0], args[1]); err != nil {
				return fmt.Errorf("set value: %w", err)
			}
			if err := config.Save(cfgPath, cfg); err != nil {
				return fmt.Errorf("save config: %w", err)
			}
			logger.Info("config updated", "path", args[0], "value", args[1], "file", cfgPath)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all config values",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath := resolveConfigPath()
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			data, _ := json.MarshalIndent(config.ListPaths(cfg), "", "  ")
			fmt.Println(string(data))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show config file path",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(resolveConfigPath())
		},
	})

	return cmd
}
