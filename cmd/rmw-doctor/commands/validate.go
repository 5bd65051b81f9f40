package commands

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/ros-middleware/rmw-go/pkg/names"
)

const (
	exitSuccess      = 0
	exitCommandError = 1
	exitCheckFailed  = 2
)

// ValidateOptions configures the validate command.
type ValidateOptions struct {
	Kind  string
	JSON  bool
	Names []string
}

// RunValidate runs the validate command.
func RunValidate(args []string, stdout, stderr io.Writer) int {
	opts, err := parseValidateArgs(args)
	if err != nil {
		if err == flag.ErrHelp {
			printValidateUsage(stderr)
			return exitSuccess
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}

	if opts.Kind != "topic" && opts.Kind != "namespace" && opts.Kind != "node" {
		fmt.Fprintf(stderr, "Error: unknown kind %q (use: topic, namespace, node)\n", opts.Kind)
		return exitCommandError
	}
	if len(opts.Names) == 0 {
		fmt.Fprintln(stderr, "Error: no names specified")
		printValidateUsage(stderr)
		return exitCommandError
	}

	hasInvalid := false
	results := make([]ValidationOutput, 0, len(opts.Names))

	for _, name := range opts.Names {
		result := validateName(opts.Kind, name)
		results = append(results, result)

		if !result.Valid {
			hasInvalid = true
		}
		if !opts.JSON {
			printValidationResult(stdout, result)
		}
	}

	if opts.JSON {
		output, _ := json.MarshalIndent(results, "", "  ")
		fmt.Fprintln(stdout, string(output))
	}

	if hasInvalid {
		return exitCheckFailed
	}
	return exitSuccess
}

// ValidationOutput represents the verdict for one name.
type ValidationOutput struct {
	Name  string `json:"name"`
	Kind  string `json:"kind"`
	Valid bool   `json:"valid"`

	// Message is the rule the name violated; Index is the byte offset
	// of the fault, -1 when the name is valid.
	Message string `json:"message,omitempty"`
	Index   int    `json:"index"`
}

func validateName(kind, name string) ValidationOutput {
	output := ValidationOutput{Name: name, Kind: kind, Index: -1}

	switch kind {
	case "topic":
		result, index := names.ValidateTopic(name)
		output.Valid = result == names.TopicValid
		if !output.Valid {
			output.Message = result.String()
			output.Index = index
		}
	case "namespace":
		result, index := names.ValidateNamespace(name)
		output.Valid = result == names.NamespaceValid
		if !output.Valid {
			output.Message = result.String()
			output.Index = index
		}
	case "node":
		result, index := names.ValidateNodeName(name)
		output.Valid = result == names.NodeNameValid
		if !output.Valid {
			output.Message = result.String()
			output.Index = index
		}
	}
	return output
}

func printValidationResult(w io.Writer, result ValidationOutput) {
	if result.Valid {
		fmt.Fprintf(w, "%s: OK\n", result.Name)
		return
	}

	fmt.Fprintf(w, "%s: FAILED: %s\n", result.Name, result.Message)
	if result.Index >= 0 && result.Index < len(result.Name) {
		fmt.Fprintf(w, "  %s\n", result.Name)
		fmt.Fprintf(w, "  %s^\n", strings.Repeat(" ", result.Index))
	}
}

func parseValidateArgs(args []string) (ValidateOptions, error) {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	opts := ValidateOptions{}

	fs.StringVar(&opts.Kind, "kind", "topic", "Name kind: topic, namespace, node")
	fs.BoolVar(&opts.JSON, "json", false, "Output results as JSON")

	// Handle --help
	fs.Usage = func() {}

	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	opts.Names = fs.Args()
	return opts, nil
}

func printValidateUsage(w io.Writer) {
	fmt.Fprintln(w, `
Usage: rmw-doctor validate [options] <name...>

Options:
  --kind string  Name kind: topic, namespace, node (default "topic")
  --json         Output results as JSON

Examples:
  rmw-doctor validate /chatter /camera/image_raw
  rmw-doctor validate --kind node talker
  rmw-doctor validate --kind namespace --json /demo`)
}
