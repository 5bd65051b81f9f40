package commands

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/ros-middleware/rmw-go/pkg/graph"
	"github.com/ros-middleware/rmw-go/pkg/names"
	"github.com/ros-middleware/rmw-go/pkg/qos"
	"github.com/ros-middleware/rmw-go/pkg/rmw"
)

// GraphOptions configures the graph command.
type GraphOptions struct {
	JSON bool
	File string
}

// RunGraph runs the graph command.
func RunGraph(args []string, stdout, stderr io.Writer) int {
	opts, err := parseGraphArgs(args)
	if err != nil {
		if err == flag.ErrHelp {
			printGraphUsage(stderr)
			return exitSuccess
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	if opts.File == "" {
		fmt.Fprintln(stderr, "Error: no description file specified")
		printGraphUsage(stderr)
		return exitCommandError
	}

	desc, err := graph.LoadDescriptionFile(opts.File)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	reports, err := desc.Analyze()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}

	hasErrors := false
	for _, rep := range reports {
		if rep.Compatibility == qos.CompatibilityError {
			hasErrors = true
		}
		if !opts.JSON {
			printTopicReport(stdout, rep)
		}
	}

	if opts.JSON {
		outputs := make([]TopicOutput, 0, len(reports))
		for _, rep := range reports {
			outputs = append(outputs, newTopicOutput(rep))
		}
		output, _ := json.MarshalIndent(outputs, "", "  ")
		fmt.Fprintln(stdout, string(output))
	}

	if hasErrors {
		return exitCheckFailed
	}
	return exitSuccess
}

// TopicOutput represents the report for one topic.
type TopicOutput struct {
	Topic         string       `json:"topic"`
	Compatibility string       `json:"compatibility"`
	NameMessage   string       `json:"name_message,omitempty"`
	Publishers    int          `json:"publishers"`
	Subscriptions int          `json:"subscriptions"`
	Pairs         []PairOutput `json:"pairs,omitempty"`
}

// PairOutput represents one publisher/subscription pairing.
type PairOutput struct {
	Publisher      string `json:"publisher"`
	Subscription   string `json:"subscription"`
	TypeCompatible bool   `json:"type_compatible"`
	Compatibility  string `json:"compatibility"`
	Reason         string `json:"reason,omitempty"`
}

func newTopicOutput(rep graph.TopicReport) TopicOutput {
	output := TopicOutput{
		Topic:         rep.Topic,
		Compatibility: rep.Compatibility.String(),
		Publishers:    rep.Publishers,
		Subscriptions: rep.Subscriptions,
	}
	if rep.NameResult != names.TopicValid {
		output.NameMessage = rep.NameResult.String()
	}
	for _, pair := range rep.Pairs {
		output.Pairs = append(output.Pairs, PairOutput{
			Publisher:      endpointLabel(pair.Publisher),
			Subscription:   endpointLabel(pair.Subscription),
			TypeCompatible: pair.TypeCompatible,
			Compatibility:  pair.Result.Compatibility.String(),
			Reason:         pair.Result.Reason(),
		})
	}
	return output
}

func printTopicReport(w io.Writer, rep graph.TopicReport) {
	fmt.Fprintf(w, "%s: %s (%d publishers, %d subscriptions)\n",
		rep.Topic, strings.ToUpper(rep.Compatibility.String()), rep.Publishers, rep.Subscriptions)

	if rep.NameResult != names.TopicValid {
		fmt.Fprintf(w, "  name: %s\n", rep.NameResult)
	}
	if rep.MissingPublishers() {
		fmt.Fprintln(w, "  note: subscriptions with no publisher")
	}
	if rep.MissingSubscriptions() {
		fmt.Fprintln(w, "  note: publishers with no subscription")
	}

	for _, pair := range rep.Pairs {
		label := fmt.Sprintf("%s -> %s", endpointLabel(pair.Publisher), endpointLabel(pair.Subscription))
		if !pair.TypeCompatible {
			fmt.Fprintf(w, "  ERROR %s: type %s does not match %s\n",
				label, pair.Publisher.TopicType, pair.Subscription.TopicType)
		}
		if reason := pair.Result.Reason(); reason != "" {
			fmt.Fprintf(w, "  %s %s: %s\n",
				strings.ToUpper(pair.Result.Compatibility.String()), label, reason)
		}
	}
}

func endpointLabel(info rmw.EndpointInfo) string {
	n := rmw.NodeName{Name: info.NodeName, Namespace: info.NodeNamespace}
	return n.FullyQualifiedName()
}

func parseGraphArgs(args []string) (GraphOptions, error) {
	fs := flag.NewFlagSet("graph", flag.ContinueOnError)
	opts := GraphOptions{}

	fs.BoolVar(&opts.JSON, "json", false, "Output results as JSON")

	// Handle --help
	fs.Usage = func() {}

	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	rest := fs.Args()
	if len(rest) > 1 {
		return opts, fmt.Errorf("expected one description file, got %d", len(rest))
	}
	if len(rest) == 1 {
		opts.File = rest[0]
	}
	return opts, nil
}

func printGraphUsage(w io.Writer) {
	fmt.Fprintln(w, `
Usage: rmw-doctor graph [options] <file.yaml>

Checks every topic in a YAML graph description: name rules, type
agreement, and QoS compatibility for each publisher/subscription pair.

Options:
  --json  Output results as JSON

Examples:
  rmw-doctor graph topology.yaml
  rmw-doctor graph --json topology.yaml`)
}
