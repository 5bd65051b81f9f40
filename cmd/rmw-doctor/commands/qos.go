package commands

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ros-middleware/rmw-go/pkg/qos"
)

// QoSOptions configures the qos command.
type QoSOptions struct {
	Pub        string
	Sub        string
	ReasonSize int
	JSON       bool
}

// RunQoS runs the qos command.
func RunQoS(args []string, stdout, stderr io.Writer) int {
	opts, err := parseQoSArgs(args)
	if err != nil {
		if err == flag.ErrHelp {
			printQoSUsage(stderr)
			return exitSuccess
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}

	pub, err := loadProfileArg(opts.Pub)
	if err != nil {
		fmt.Fprintf(stderr, "Error: --pub: %v\n", err)
		return exitCommandError
	}
	sub, err := loadProfileArg(opts.Sub)
	if err != nil {
		fmt.Fprintf(stderr, "Error: --sub: %v\n", err)
		return exitCommandError
	}

	result := qos.CheckCompatibility(pub, sub)

	if opts.JSON {
		output, _ := json.MarshalIndent(newQoSOutput(result), "", "  ")
		fmt.Fprintln(stdout, string(output))
	} else {
		fmt.Fprintf(stdout, "compatibility: %s\n", result.Compatibility)
		reason := result.Reason()
		if opts.ReasonSize > 0 {
			reason = result.TruncatedReason(opts.ReasonSize)
		}
		if reason != "" {
			fmt.Fprintf(stdout, "reason: %s\n", reason)
		}
	}

	if result.Compatibility == qos.CompatibilityError {
		return exitCheckFailed
	}
	return exitSuccess
}

// QoSOutput represents the compatibility verdict for one pairing.
type QoSOutput struct {
	Compatibility string         `json:"compatibility"`
	Reasons       []ReasonOutput `json:"reasons,omitempty"`
}

// ReasonOutput represents one policy finding.
type ReasonOutput struct {
	Severity string `json:"severity"`
	Policy   string `json:"policy"`
	Message  string `json:"message"`
}

func newQoSOutput(result qos.Result) QoSOutput {
	output := QoSOutput{Compatibility: result.Compatibility.String()}
	for _, r := range result.Reasons {
		output.Reasons = append(output.Reasons, ReasonOutput{
			Severity: r.Severity.String(),
			Policy:   r.Policy.String(),
			Message:  r.Message,
		})
	}
	return output
}

// loadProfileArg resolves a preset name or a YAML profile file. An empty
// argument means the default profile.
func loadProfileArg(arg string) (qos.Profile, error) {
	if arg == "" {
		return qos.DefaultProfile(), nil
	}
	if p, ok := qos.ProfileNamed(arg); ok {
		return p, nil
	}
	if strings.HasSuffix(arg, ".yaml") || strings.HasSuffix(arg, ".yml") {
		data, err := os.ReadFile(arg)
		if err != nil {
			return qos.Profile{}, err
		}
		var p qos.Profile
		if err := yaml.Unmarshal(data, &p); err != nil {
			return qos.Profile{}, fmt.Errorf("%s: %w", arg, err)
		}
		return p, nil
	}
	return qos.Profile{}, fmt.Errorf("unknown preset %q (presets: %s)",
		arg, strings.Join(qos.ProfileNames(), ", "))
}

func parseQoSArgs(args []string) (QoSOptions, error) {
	fs := flag.NewFlagSet("qos", flag.ContinueOnError)
	opts := QoSOptions{}

	fs.StringVar(&opts.Pub, "pub", "", "Publisher profile: preset name or YAML file")
	fs.StringVar(&opts.Sub, "sub", "", "Subscription profile: preset name or YAML file")
	fs.IntVar(&opts.ReasonSize, "reason-size", 0, "Truncate the reason string to n bytes")
	fs.BoolVar(&opts.JSON, "json", false, "Output results as JSON")

	// Handle --help
	fs.Usage = func() {}

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	return opts, nil
}

func printQoSUsage(w io.Writer) {
	fmt.Fprintln(w, `
Usage: rmw-doctor qos [options]

Options:
  --pub string       Publisher profile: preset name or YAML file (default "default")
  --sub string       Subscription profile: preset name or YAML file (default "default")
  --reason-size n    Truncate the reason string to n bytes
  --json             Output results as JSON

Examples:
  rmw-doctor qos --pub sensor_data --sub default
  rmw-doctor qos --pub offered.yaml --sub requested.yaml --json`)
}
