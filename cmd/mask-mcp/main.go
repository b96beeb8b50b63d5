package main

import (
	"fmt"
	"log"
	"os"

	"github.com/ironsheep/mask-tools-mcp/internal/config"
	"github.com/ironsheep/mask-tools-mcp/internal/server"
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
			fmt.Printf("mask-tools-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("mask-tools-mcp - MCP server for selection masks and edge snapping")
			fmt.Println()
			fmt.Println("Usage: mask-tools-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Println("  MASK_MCP_LOG_LEVEL=debug          Enable debug logging")
			fmt.Println("  MASK_MCP_EXPANSION_RATIO=0.01     Rectangle inflation ratio")
			fmt.Println("  MASK_MCP_STROKE_WIDTH=30          Default brush width")
			fmt.Println("  MASK_MCP_SNAP_RADIUS=20           Edge snap search radius")
			fmt.Println("  MASK_MCP_SNAP_THRESHOLD=50        Edge snap magnitude threshold")
			fmt.Println("  MASK_MCP_PREVIEW_COLOR=#FF3B30    Mask preview tint")
			fmt.Println("  MASK_MCP_PREVIEW_OPACITY=0.5      Mask preview opacity")
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			fmt.Println("Configure it in your MCP client.")
			return
		}
	}

	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	cfg := config.FromEnv()
	if cfg.Debug() {
		log.Printf("Mask MCP Server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
		log.Printf("Config: %+v", *cfg)
	}

	srv := server.NewWithConfig(cfg)
	if err := srv.Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
