package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
)

// RunShell runs the interactive shell. Commands read and print through
// readline's writers so output does not tear the prompt.
func RunShell(args []string, stdout, stderr io.Writer) int {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "rmw> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to create readline: %v\n", err)
		return exitCommandError
	}
	defer rl.Close()

	printShellHelp(rl.Stdout())

	for {
		line, err := rl.Readline()
		if err != nil {
			// EOF or interrupt
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(rl.Stdout(), "Exiting...")
			return exitSuccess
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		cmd := strings.ToLower(parts[0])
		rest := parts[1:]

		switch cmd {
		case "help", "?":
			printShellHelp(rl.Stdout())

		case "validate", "v":
			RunValidate(rest, rl.Stdout(), rl.Stderr())

		case "qos":
			RunQoS(rest, rl.Stdout(), rl.Stderr())

		case "profiles", "p":
			RunProfiles(rest, rl.Stdout(), rl.Stderr())

		case "graph", "g":
			RunGraph(rest, rl.Stdout(), rl.Stderr())

		case "quit", "exit", "q":
			fmt.Fprintln(rl.Stdout(), "Exiting...")
			return exitSuccess

		default:
			fmt.Fprintf(rl.Stdout(), "Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}
}

func printShellHelp(w io.Writer) {
	fmt.Fprintln(w, `
rmw-doctor shell commands:
  validate [--kind k] <name...>  - Check topic, namespace, or node names
  qos [--pub p] [--sub s]        - Check a QoS pairing
  profiles [name]                - List presets or print one as YAML
  graph <file.yaml>              - Check a graph description
  help                           - Show this help
  quit                           - Exit the shell`)
}
