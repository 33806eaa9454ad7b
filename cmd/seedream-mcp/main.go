package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/ironsheep/seedream-mcp/internal/generate"
	"github.com/ironsheep/seedream-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("seedream-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("seedream-mcp - MCP server for Bytedance SeedDream image generation (via FAL)")
			fmt.Println()
			fmt.Println("Usage: seedream-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Println("  FAL_KEY                      FAL API credential (required for generation calls)")
			fmt.Println("  SEEDREAM_MODEL_VERSION       Model version: v4 (default) or v3")
			fmt.Println("  SEEDREAM_OUTPUT_DIR          Download directory (default: images)")
			fmt.Println("  SEEDREAM_MCP_LOG_LEVEL       Set to debug for verbose logging")
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
			return
		}
	}

	// A .env file is optional; real environment variables win either way.
	_ = godotenv.Load()

	// Log to stderr (stdout is for MCP protocol)
	level := zerolog.InfoLevel
	if os.Getenv("SEEDREAM_MCP_LOG_LEVEL") == "debug" {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	cfg := generate.Config{
		APIKey:       os.Getenv("FAL_KEY"),
		ModelVersion: modelVersion(os.Getenv("SEEDREAM_MODEL_VERSION"), logger),
		OutputDir:    os.Getenv("SEEDREAM_OUTPUT_DIR"),
	}
	if cfg.APIKey == "" {
		// Not fatal: the server still answers tools/list, and generation
		// calls report the missing credential with setup instructions.
		logger.Warn().Msg("FAL_KEY is not set; generation calls will fail until it is configured")
	}

	logger.Debug().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("commit", GitCommit).
		Msg("starting seedream-mcp")

	srv := server.New(cfg, logger)
	if err := srv.Run(); err != nil {
		logger.Fatal().Err(err).Msg("server error")
	}
}

func modelVersion(raw string, logger zerolog.Logger) generate.ModelVersion {
	switch raw {
	case "", "v4":
		return generate.ModelV4
	case "v3":
		return generate.ModelV3
	default:
		logger.Warn().Str("value", raw).Msg("unknown SEEDREAM_MODEL_VERSION, using v4")
		return generate.ModelV4
	}
}
