package main

import (
	"fmt"
	"os"
	"strings"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "--help", "-h", "help":
			showUsage()
			return
		}
	}

	// No command, or flags only: open the terminal client.
	if len(os.Args) < 2 || strings.HasPrefix(os.Args[1], "-") {
		if err := runTUI(parseFlags(os.Args[1:])); err != nil {
			fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
			os.Exit(1)
		}
		return
	}

	flags := parseFlags(os.Args[2:])
	switch os.Args[1] {
	case "tui":
		if err := runTUI(flags); err != nil {
			fmt.Fprintf(os.Stderr, "tui: %v\n", err)
			os.Exit(1)
		}
	case "serve":
		if err := runServe(flags); err != nil {
			fmt.Fprintf(os.Stderr, "serve: %v\n", err)
			os.Exit(1)
		}
	case "doctor":
		if err := runDoctor(os.Stdout, flags); err != nil {
			fmt.Fprintf(os.Stderr, "doctor: %v\n", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\nRun 'giftadvisor --help' for usage information.\n", os.Args[1])
		os.Exit(1)
	}
}

func showUsage() {
	fmt.Println(`giftadvisor - Gift suggestions for your team

USAGE:
    giftadvisor [COMMAND] [FLAGS]

COMMANDS:
    serve       Run the gift API server
    tui         Open the terminal client (default)
    doctor      Check configuration and server reachability

    (no command) - Open the terminal client

FLAGS:
    -h, --help           Show this help message
    --config PATH        Config file path (default: ./config.yaml)
    --server URL         Gift API base URL for tui/doctor (default: http://localhost:8000)
    --mode MODE          Suggestion mode: stream (trending text) or list (gift ideas)
    --log-level LEVEL    debug, info, warn or error

CONFIGURATION:
    Config file: ./config.yaml (optional; defaults apply when missing)
    Environment: GIFTADVISOR_* variables override config

EXAMPLES:
    giftadvisor serve                              # Start the API on :8000
    giftadvisor                                    # Open the client
    giftadvisor --mode list                        # Ask for structured gift ideas
    giftadvisor tui --server http://gifts:8000     # Talk to another server
    giftadvisor doctor                             # Check everything is wired`)
}
