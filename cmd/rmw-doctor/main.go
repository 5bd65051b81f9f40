// rmw-doctor is a CLI tool for checking ROS names, QoS pairings, and
// graph descriptions without running any middleware.
package main

import (
	"fmt"
	"os"

	"github.com/ros-middleware/rmw-go/cmd/rmw-doctor/commands"
)

const (
	exitSuccess      = 0
	exitCommandError = 1
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(exitCommandError)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var exitCode int
	switch cmd {
	case "validate":
		exitCode = commands.RunValidate(args, os.Stdout, os.Stderr)
	case "qos":
		exitCode = commands.RunQoS(args, os.Stdout, os.Stderr)
	case "profiles":
		exitCode = commands.RunProfiles(args, os.Stdout, os.Stderr)
	case "graph":
		exitCode = commands.RunGraph(args, os.Stdout, os.Stderr)
	case "shell":
		exitCode = commands.RunShell(args, os.Stdout, os.Stderr)
	case "help", "-h", "--help":
		printUsage()
		exitCode = exitSuccess
	case "version", "-v", "--version":
		fmt.Println("rmw-doctor version 0.1.0")
		exitCode = exitSuccess
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		printUsage()
		exitCode = exitCommandError
	}

	os.Exit(exitCode)
}

func printUsage() {
	fmt.Println(`rmw-doctor - ROS middleware diagnostics

Usage:
  rmw-doctor <command> [options] [args...]

Commands:
  validate   Check topic, namespace, or node names
  qos        Check a publisher/subscription QoS pairing
  profiles   List QoS presets or print one as YAML
  graph      Check a YAML graph description for silent-drop pairings
  shell      Interactive shell with the commands above

Options:
  -h, --help     Show this help message
  -v, --version  Show version information

Examples:
  rmw-doctor validate /camera/image_raw
  rmw-doctor qos --pub sensor_data --sub default
  rmw-doctor profiles sensor_data
  rmw-doctor graph topology.yaml

For command-specific help, run:
  rmw-doctor <command> --help`)
}
