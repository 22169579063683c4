package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kolapsis/vizdocs/internal/config"
	"github.com/kolapsis/vizdocs/internal/docs"
	vizmcp "github.com/kolapsis/vizdocs/internal/mcp"
	"github.com/kolapsis/vizdocs/internal/mcp/middleware"
	"github.com/kolapsis/vizdocs/internal/sniffer"
)

var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		cmdServe(os.Args[2:])
	case "version":
		fmt.Printf("vizdocs %s\n", version)
	case "check":
		cmdCheck(os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: vizdocs <command> [flags]\n\n")
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  serve     Start the MCP server (--transport stdio|http, --port N, --config PATH)\n")
	fmt.Fprintf(os.Stderr, "  check     Validate configuration\n")
	fmt.Fprintf(os.Stderr, "  version   Print version\n")
}

// serveFlags are the serve options read from the command line. Unknown
// flags are tolerated and ignored.
type serveFlags struct {
	configPath string
	transport  string
	port       int
}

// parseServeFlags scans args for the flags serve understands, skipping
// anything it does not recognize.
func parseServeFlags(args []string) serveFlags {
	var f serveFlags

	value := func(i int) (string, bool) {
		if i+1 < len(args) {
			return args[i+1], true
		}
		return "", false
	}

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--config", "-config":
			if v, ok := value(i); ok {
				f.configPath = v
				i++
			}
		case "--transport", "-transport":
			if v, ok := value(i); ok {
				f.transport = v
				i++
			}
		case "--port", "-port":
			if v, ok := value(i); ok {
				if p, err := strconv.Atoi(v); err == nil {
					f.port = p
				}
				i++
			}
		}
	}

	return f
}

func cmdServe(args []string) {
	flags := parseServeFlags(args)

	cfg, err := loadConfig(flags.configPath)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	if flags.transport != "" {
		cfg.Server.Transport = flags.transport
	}
	if flags.port != 0 {
		cfg.Server.Port = flags.port
	}
	if cfg.Server.Transport != "stdio" && cfg.Server.Transport != "http" {
		slog.Error("invalid transport", "transport", cfg.Server.Transport)
		os.Exit(1)
	}

	setupLogging(cfg)

	slog.Info("starting vizdocs",
		"version", version,
		"transport", cfg.Server.Transport,
		"docs_base_url", cfg.Docs.BaseURL)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func cmdCheck(args []string) {
	flags := parseServeFlags(args)

	_, err := loadConfig(flags.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("configuration is valid")
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

func setupLogging(cfg *config.Config) {
	var level slog.Level
	switch cfg.Server.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	// In stdio mode stdout carries the MCP wire protocol; logs must not
	// pollute it.
	var console io.Writer = os.Stdout
	if cfg.Server.Transport == "stdio" {
		console = os.Stderr
	}

	handlers := []slog.Handler{
		slog.NewJSONHandler(console, &slog.HandlerOptions{Level: level}),
	}

	if cfg.Server.LogFile != "" {
		f, err := os.OpenFile(cfg.Server.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0640)
		if err != nil {
			slog.Warn("failed to open log file, using console only", "path", cfg.Server.LogFile, "error", err)
		} else {
			handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level}))
		}
	}

	logger := slog.New(slog.NewMultiHandler(handlers...))
	slog.SetDefault(logger)
}

func run(ctx context.Context, cfg *config.Config) error {
	// --- Documentation client ---
	client := docs.NewClient(cfg.Docs)

	// --- Optional update feed ---
	var updates *docs.UpdateStream
	if cfg.Docs.UpdatesURL != "" {
		updates = docs.NewUpdateStream(cfg.Docs.UpdatesURL)
	}

	// --- Dependency detector ---
	detector := sniffer.NewDetector(cfg.Detection)

	// --- MCP server ---
	mcpServer := vizmcp.NewServer(&vizmcp.Deps{
		Docs:       client,
		Updates:    updates,
		Detector:   detector,
		Limits:     cfg.Limits,
		Extraction: cfg.Extraction,
		Version:    version,
	})

	if cfg.Server.Transport == "stdio" {
		slog.Info("vizdocs is ready", "transport", "stdio")
		return server.ServeStdio(mcpServer)
	}

	mcpHTTP := server.NewStreamableHTTPServer(mcpServer)

	// --- HTTP router ---
	r := chi.NewRouter()
	r.Use(middleware.SecurityHeaders)
	r.Handle("/mcp", mcpHTTP)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("vizdocs is ready", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
