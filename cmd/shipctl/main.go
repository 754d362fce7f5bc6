// Command shipctl is the maintenance CLI for shipfeed.
//
// Usage:
//
//	shipctl                     Show help
//	shipctl login <token>       Store a bearer token
//	shipctl logout              Forget the stored credential
//	shipctl whoami              Show the signed-in viewer
//	shipctl feed                Fetch and print the merged feed
//	shipctl dismissed           List dismissed post ids
//	shipctl events              JSONL event log viewer
package main

import (
	"fmt"
	"os"
)

const usage = `shipctl - shipfeed maintenance CLI

Usage:
  shipctl <command> [flags]

Commands:
  login       Store a bearer token (and optional user JSON)
  logout      Forget the stored credential
  whoami      Show the signed-in viewer
  feed        Fetch the three collections and print the merged feed
  dismissed   List dismissed post ids
  events      JSONL event log viewer

Environment:
  SHIPFEED_API_URL    API base URL (overrides config)
  SHIPFEED_DATA_DIR   Data directory (default: ~/.shipfeed)
  SHIPFEED_LOCALE     ar or en

Run 'shipctl <command> -h' for command-specific help.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(0)
	}

	cmd := os.Args[1]
	// Strip the program name + subcommand so flag sets see only their flags
	os.Args = os.Args[1:]

	switch cmd {
	case "login":
		runLogin()
	case "logout":
		runLogout()
	case "whoami":
		runWhoami()
	case "feed":
		runFeed()
	case "dismissed":
		runDismissed()
	case "events":
		runEvents()
	case "-h", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "shipctl: unknown command %q\n\n", cmd)
		fmt.Print(usage)
		os.Exit(1)
	}
}
