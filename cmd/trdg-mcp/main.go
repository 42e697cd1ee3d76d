package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/anhlbt/TextRecognitionDataGenerator/internal/config"
	"github.com/anhlbt/TextRecognitionDataGenerator/internal/logging"
	"github.com/anhlbt/TextRecognitionDataGenerator/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func usage() {
	fmt.Println("trdg-mcp - MCP server generating synthetic text images for OCR training")
	fmt.Println()
	fmt.Println("Usage: trdg-mcp [options]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --config FILE    YAML file with the default request settings")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Environment variables (also read from ./.env):")
	fmt.Println("  TRDG_FONT=/path/font.ttf      Default font (built-in Go Regular otherwise)")
	fmt.Println("  TRDG_BACKGROUND_DIR=/path     Images for the image background")
	fmt.Println("  TRDG_OUTPUT_DIR=/path         Default directory for text_render_save")
	fmt.Println("  TRDG_LOG_LEVEL=debug          Log level (debug, info, warn, error)")
	fmt.Println()
	fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
	fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
}

func main() {
	var configPath string

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--version", "-v", "version":
			fmt.Printf("trdg-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			usage()
			return
		case "--config", "-c":
			if i+1 >= len(args) {
				fmt.Fprintln(os.Stderr, "--config needs a file")
				os.Exit(2)
			}
			i++
			configPath = args[i]
		default:
			fmt.Fprintf(os.Stderr, "unknown option %q\n", args[i])
			os.Exit(2)
		}
	}

	if err := config.LoadDotEnv(""); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defaults, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// Logs go to stderr; stdout is for the MCP protocol.
	logger, err := logging.New(defaults.LogLevel, "console")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Debug("starting",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("commit", GitCommit),
		zap.String("config", configPath))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(defaults, logger)
	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
