package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/aditus-hr/pdffield/internal/config"
	"github.com/aditus-hr/pdffield/internal/mcp"
	"github.com/aditus-hr/pdffield/internal/pdf"
	"github.com/aditus-hr/pdffield/internal/server"
	"github.com/aditus-hr/pdffield/internal/storage"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// setupLogging configures logging based on the run mode
func setupLogging(cfg *config.Config) {
	if cfg.IsStdioMode() {
		// In stdio mode, redirect log output to stderr to avoid interfering
		// with the MCP protocol
		log.SetOutput(os.Stderr)
		if !cfg.IsDebug() {
			log.SetOutput(os.NewFile(0, os.DevNull))
		}
	} else {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}
}

// runBatchMode stamps every PDF in the input directory and exits
func runBatchMode(cfg *config.Config, service *pdf.Service) {
	result, err := service.StampDirectory(pdf.StampDirectoryRequest{
		InputDirectory:  cfg.InputDirectory,
		OutputDirectory: cfg.OutputDirectory,
		Field: pdf.FieldConfig{
			Name:    cfg.FieldName,
			XOffset: cfg.FieldX,
			YOffset: cfg.FieldY,
			Width:   cfg.FieldWidth,
			Height:  cfg.FieldHeight,
		},
		Kind: pdf.FieldKind(cfg.FieldKind),
	})
	if err != nil {
		log.Fatalf("Batch run failed: %v", err)
	}

	fmt.Printf("Processed %d file(s): %d successful, %d failed\n",
		result.Processed, result.Successful, result.Failed)
	for _, outcome := range result.Outcomes {
		if outcome.Success {
			fmt.Printf("  ok   %s -> %s\n", outcome.InputPath, outcome.OutputPath)
		} else {
			fmt.Printf("  FAIL %s: %s\n", outcome.InputPath, outcome.Message)
		}
	}

	if result.Processed > 0 && result.Successful == 0 {
		os.Exit(1)
	}
}

// runServerMode handles HTTP server execution with signal handling
func runServerMode(ctx context.Context, cancel context.CancelFunc, srv *server.Server) {
	// Set up signal handling for graceful shutdown
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	// Start server in a goroutine
	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.Run(ctx)
	}()

	// Wait for shutdown signal or server error
	select {
	case sig := <-signalCh:
		log.Printf("Received signal: %s", sig)
		log.Println("Initiating graceful shutdown...")
		cancel()

		if err := <-serverErrCh; err != nil {
			log.Printf("Server shutdown with error: %v", err)
			os.Exit(1)
		}

	case err := <-serverErrCh:
		if err != nil {
			log.Printf("Server error: %v", err)
			os.Exit(1)
		}
	}

	log.Println("Server stopped successfully")
}

// runStdioMode handles MCP stdio execution
func runStdioMode(ctx context.Context, srv *mcp.Server) {
	// The parent process controls our lifecycle; exit cleanly when stdin
	// closes or the server fails
	if err := srv.Run(ctx); err != nil {
		if os.Getenv("DEBUG") != "" {
			log.Printf("Server error: %v", err)
		}
		os.Exit(1)
	}
}

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			printVersion()
			return
		}
	}

	cfg, err := config.LoadFromFlags()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	setupLogging(cfg)

	// Set version if it was provided during build
	if version != "dev" {
		cfg.Version = version
	}

	if cfg.IsDebug() && !cfg.IsStdioMode() {
		log.Printf("Starting with configuration: %s", cfg.String())
	}

	service := pdf.NewService(cfg.MaxFileSize, cfg.InitAcroForm)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	switch {
	case cfg.IsBatchMode():
		runBatchMode(cfg, service)
	case cfg.IsServerMode():
		store, err := storage.NewStore(cfg.StorageDirectory)
		if err != nil {
			log.Fatalf("Failed to create artifact store: %v", err)
		}
		srv, err := server.NewServer(cfg, service, store)
		if err != nil {
			log.Fatalf("Failed to create HTTP server: %v", err)
		}
		runServerMode(ctx, cancel, srv)
	default:
		srv, err := mcp.NewServer(cfg, service)
		if err != nil {
			log.Fatalf("Failed to create MCP server: %v", err)
		}
		runStdioMode(ctx, srv)
	}
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("pdffield\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
