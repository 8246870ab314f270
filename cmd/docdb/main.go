// Package main is the entry point for the docdb dev server.
//
// docdb serves an in-memory document store over HTTP for development and
// testing. All state is volatile: restarting the process starts from an
// empty store (or from a snapshot re-imported through the API).
// Configuration comes from CLI flags and an optional YAML file, flags
// winning.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/lmittmann/tint"
	"github.com/maruel/docdb"
	"github.com/maruel/docdb/internal/server"
	"github.com/maruel/docdb/internal/server/ratelimit"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"
)

func main() {
	if err := mainImpl(); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "docdb: %v\n", err)
		os.Exit(1)
	}
}

// fileConfig mirrors the flags that make sense in a config file.
type fileConfig struct {
	HTTP         string `yaml:"http"`
	LogLevel     string `yaml:"log_level"`
	EnableDump   bool   `yaml:"enable_dump"`
	AuthToken    string `yaml:"auth_token"`
	IDFormat     string `yaml:"id_format"`
	DisableMerge bool   `yaml:"disable_merge"`
	RateLimit    int    `yaml:"rate_limit"`
}

func mainImpl() error {
	version := flag.Bool("version", false, "Print version and exit")
	httpAddr := flag.String("http", "localhost:8470", "Address to listen on")
	configPath := flag.String("config", "", "Path to a YAML config file")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	enableDump := flag.Bool("enable-dump", false, "Expose the full-store dump endpoint")
	authToken := flag.String("auth-token", "", "Bearer token required on administrative endpoints")
	idFormat := flag.String("id-format", "ksid", "Generated id format (ksid, uuid)")
	disableMerge := flag.Bool("disable-merge", false, "Replace records on save instead of merging fields")
	rateLimit := flag.Int("rate-limit", 0, "Requests per minute per client IP (0 disables)")
	flag.Parse()
	if len(flag.Args()) > 0 {
		return fmt.Errorf("unknown arguments: %v", flag.Args())
	}

	if *version {
		printVersion()
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()
	ll := &slog.LevelVar{}
	ll.Set(slog.LevelInfo)
	logger := slog.New(tint.NewHandler(colorable.NewColorable(os.Stderr), &tint.Options{
		Level:      ll,
		TimeFormat: "15:04:05.000",
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	}))
	slog.SetDefault(logger)

	// Config file values apply only where the flag was not explicitly set.
	if *configPath != "" {
		fileCfg, err := loadConfigFile(*configPath)
		if err != nil {
			return err
		}
		set := make(map[string]bool)
		flag.Visit(func(f *flag.Flag) {
			set[f.Name] = true
		})
		if !set["http"] && fileCfg.HTTP != "" {
			*httpAddr = fileCfg.HTTP
		}
		if !set["log-level"] && fileCfg.LogLevel != "" {
			*logLevel = fileCfg.LogLevel
		}
		if !set["enable-dump"] {
			*enableDump = fileCfg.EnableDump
		}
		if !set["auth-token"] && fileCfg.AuthToken != "" {
			*authToken = fileCfg.AuthToken
		}
		if !set["id-format"] && fileCfg.IDFormat != "" {
			*idFormat = fileCfg.IDFormat
		}
		if !set["disable-merge"] {
			*disableMerge = fileCfg.DisableMerge
		}
		if !set["rate-limit"] && fileCfg.RateLimit != 0 {
			*rateLimit = fileCfg.RateLimit
		}
	}

	switch *logLevel {
	case "debug":
		ll.Set(slog.LevelDebug)
	case "info":
	case "warn":
		ll.Set(slog.LevelWarn)
	case "error":
		ll.Set(slog.LevelError)
	default:
		return fmt.Errorf("unknown log level: %q", *logLevel)
	}

	var generateID func(*docdb.Draft) string
	switch *idFormat {
	case "ksid":
		generateID = docdb.KSID
	case "uuid":
		generateID = docdb.UUID
	default:
		return fmt.Errorf("unknown id format: %q", *idFormat)
	}

	store := docdb.New(&docdb.Config{
		DisableMerge: *disableMerge,
		GenerateID:   generateID,
		Logger:       logger,
	})
	defer func() { _ = store.Close(ctx) }()

	var limiter *ratelimit.Limiter
	if *rateLimit > 0 {
		limiter = ratelimit.NewLimiter(*rateLimit, time.Minute, *rateLimit)
		defer limiter.Close()
	}

	// Normalize addr: ":8470" becomes "localhost:8470".
	addr := *httpAddr
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}

	if err := watchExecutable(ctx, stop); err != nil {
		return fmt.Errorf("failed to watch executable: %w", err)
	}

	buildVersion, _, _, _ := getBuildInfo()
	httpServer := &http.Server{
		Addr: addr,
		Handler: server.NewRouter(store, &server.Config{
			Version:    buildVersion,
			EnableDump: *enableDump,
			AuthToken:  *authToken,
			Limiter:    limiter,
		}),
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.InfoContext(ctx, "Starting server", "addr", addr, "version", buildVersion, "dump", *enableDump)
		serverErr <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		slog.InfoContext(ctx, "Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		slog.InfoContext(ctx, "Server stopped")
	}
	return nil
}

func loadConfigFile(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from the -config flag, not user input
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg := &fileConfig{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cfg, nil
}

func printVersion() {
	version, goVersion, revision, dirty := getBuildInfo()
	fmt.Printf("docdb %s\n", version)
	fmt.Printf("  Go version: %s\n", goVersion)
	fmt.Printf("  Revision:   %s\n", revision)
	if dirty {
		fmt.Printf("  Modified:   true\n")
	}
}

func getBuildInfo() (version, goVersion, revision string, dirty bool) {
	version = "unknown"
	goVersion = "unknown"
	revision = "unknown"
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	version = info.Main.Version
	if version == "" || version == "(devel)" {
		version = "dev"
	}
	goVersion = info.GoVersion
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.modified":
			dirty = setting.Value == "true"
		}
	}
	return
}

// watchExecutable watches the current executable for modifications and calls
// stop to trigger graceful shutdown when detected. This enables seamless
// restarts during development.
func watchExecutable(ctx context.Context, stop context.CancelFunc) error {
	exe, err := os.Executable()
	if err != nil {
		return err
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(exe); err != nil {
		_ = w.Close()
		return err
	}
	go func() {
		defer func() { _ = w.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Chmod) {
					slog.InfoContext(ctx, "Executable modified, initiating shutdown")
					stop()
					return
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				slog.WarnContext(ctx, "Error watching executable", "err", err)
			}
		}
	}()
	return nil
}
