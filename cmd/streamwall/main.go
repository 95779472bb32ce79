// Copyright © 2026 Streamwall Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/streamwall/streamwall/internal/app"
	"github.com/streamwall/streamwall/internal/config"
	"github.com/streamwall/streamwall/internal/store"
)

var (
	version = "0.9"
)

func main() {
	// Check for subcommands before flag parsing
	if len(os.Args) > 1 && os.Args[1] == "init" {
		if err := runInit(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	// Parse flags
	var (
		configPath  string
		host        string
		port        int
		dataDir     string
		showVersion bool
	)

	flag.StringVar(&configPath, "config", "", "Path to config file (default: auto-detect)")
	flag.StringVar(&configPath, "c", "", "Path to config file (short)")
	flag.StringVar(&host, "host", "", "HTTP server host (overrides config)")
	flag.IntVar(&port, "port", 0, "HTTP server port (overrides config)")
	flag.StringVar(&dataDir, "data-dir", "", "Record directory (overrides config)")
	flag.BoolVar(&showVersion, "version", false, "Show version")
	flag.BoolVar(&showVersion, "v", false, "Show version (short)")
	flag.Parse()

	if showVersion {
		fmt.Printf("streamwall %s\n", version)
		os.Exit(0)
	}

	// Create and run app
	application, err := app.New(app.Options{
		ConfigPath: configPath,
		Host:       host,
		Port:       port,
		DataDir:    dataDir,
		Version:    version,
	})
	if err != nil {
		log.Fatalf("Failed to create app: %v", err)
	}

	ctx := context.Background()
	if err := application.Run(ctx); err != nil {
		log.Fatalf("App error: %v", err)
	}
}

// runInit handles the "streamwall init" command
func runInit() error {
	initFlags := flag.NewFlagSet("init", flag.ExitOnError)
	showHelp := initFlags.Bool("help", false, "Show help for init command")
	initFlags.BoolVar(showHelp, "h", false, "Show help for init command")
	initFlags.Parse(os.Args[2:])

	if *showHelp {
		fmt.Println(`Usage: streamwall init [options]

Create a new streamwall.hjson configuration file in the current directory.

This command walks you through the basic setup with interactive prompts.
The generated file is fully commented to help you understand and customize
all available options.

Options:
  -h, -help    Show this help message

The command will ask about:
  - Channel to watch (defaults can be changed later via the API)
  - Number of windows to open
  - Server port (defaults to 4690)

Examples:
  streamwall init           Create config with interactive prompts

After running init:
  1. Review and edit streamwall.hjson as needed
  2. Run: ./streamwall
  3. Launch: curl -X POST http://localhost:4690/api/v1/session/launch`)
		return nil
	}

	configFile := "streamwall.hjson"

	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("%s already exists; remove it first or use a different directory", configFile)
	}

	reader := bufio.NewReader(os.Stdin)

	fmt.Println("Streamwall Configuration Setup")
	fmt.Println("==============================")
	fmt.Println()
	fmt.Println("This will create a streamwall.hjson configuration file in the current directory.")
	fmt.Println("Press Enter to accept defaults shown in [brackets].")
	fmt.Println()

	destination := prompt(reader, "Channel to watch", "somestreamer")

	countStr := prompt(reader, "Number of windows", "4")
	count, err := strconv.Atoi(countStr)
	if err != nil || count <= 0 {
		count = 4
	}

	portStr := prompt(reader, "Server port", "4690")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		port = 4690
	}

	configContent := generateConfig(port)

	if err := os.WriteFile(configFile, []byte(configContent), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	// Seed the settings record so the first launch uses the prompted values.
	records, err := store.Open(config.Default().Data.Dir, nil)
	if err != nil {
		return fmt.Errorf("failed to open record store: %w", err)
	}
	settings := records.Settings()
	settings.Destination = destination
	settings.WindowCount = count
	if err := records.UpdateSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	fmt.Println()
	fmt.Printf("Created %s\n", configFile)
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  1. Review and edit streamwall.hjson as needed")
	fmt.Println("  2. Run: ./streamwall")
	fmt.Println("  3. Launch: curl -X POST http://localhost:" + strconv.Itoa(port) + "/api/v1/session/launch")
	fmt.Println()

	return nil
}

func prompt(reader *bufio.Reader, question, defaultVal string) string {
	if defaultVal != "" {
		fmt.Printf("%s [%s]: ", question, defaultVal)
	} else {
		fmt.Printf("%s: ", question)
	}
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return defaultVal
	}
	return input
}

func generateConfig(port int) string {
	var sb strings.Builder

	sb.WriteString(`{
  // =============================================================================
  // Streamwall Configuration
  // =============================================================================
  //
  // This is an HJSON file (JSON with comments and relaxed syntax).
  // All durations accept Go syntax ("10s", "1h30m") plus a trailing "d"
  // for days ("7d").

  // ---------------------------------------------------------------------------
  // Project Metadata
  // ---------------------------------------------------------------------------
  project: {
    name: "streamwall"
  }

  // ---------------------------------------------------------------------------
  // Server Settings
  // ---------------------------------------------------------------------------
  server: {
    // Host to bind to (use "0.0.0.0" to allow remote access)
    host: "127.0.0.1"

    // Port for the control API
    port: `)
	sb.WriteString(strconv.Itoa(port))
	sb.WriteString(`
  }

  // ---------------------------------------------------------------------------
  // Record Storage
  // ---------------------------------------------------------------------------
  //
  // Settings, profiles and layouts are stored as JSON files here. Edits made
  // directly to the files are picked up while the daemon runs.
  data: {
    // dir: "~/.streamwall"
  }

  // ---------------------------------------------------------------------------
  // Browser
  // ---------------------------------------------------------------------------
  browser: {
    // Override browser discovery entirely:
    // path: "/usr/bin/google-chrome"

    // Replace the default search locations:
    // candidates: ["/opt/chrome/chrome"]

    // Appended to every launch:
    // extra_args: ["--disable-gpu"]

    // Matched against process names in the resource census
    process_names: ["chrome", "chromium"]
  }

  // ---------------------------------------------------------------------------
  // Session Supervision
  // ---------------------------------------------------------------------------
  session: {
    // Liveness loop period. A window unseen for longer than this is
    // declared dead and its instance relaunched.
    check_interval: "10s"

    // Pause between consecutive browser spawns
    launch_delay: "1s"

    // Wait after a launch batch before the first window arrangement
    settle_delay: "5s"

    // Substrings that identify this session's windows by title
    title_match: ["Twitch", "Chrome"]
  }

  // ---------------------------------------------------------------------------
  // Resource Monitor
  // ---------------------------------------------------------------------------
  monitor: {
    enabled: true
    interval: "5s"
  }

  // ---------------------------------------------------------------------------
  // Crash Reports
  // ---------------------------------------------------------------------------
  //
  // When an instance crashes, streamwall records what it knew at the time.
  crashes: {
    max_age: "7d"
    max_count: 100
  }

  // ---------------------------------------------------------------------------
  // Record Watching
  // ---------------------------------------------------------------------------
  watch: {
    // Wait for rapid file changes to settle before reloading records
    debounce: "100ms"
  }
}
`)

	return sb.String()
}
