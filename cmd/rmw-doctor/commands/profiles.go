package commands

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/ros-middleware/rmw-go/pkg/qos"
)

// ProfilesOptions configures the profiles command.
type ProfilesOptions struct {
	JSON bool
	Name string
}

// RunProfiles runs the profiles command.
func RunProfiles(args []string, stdout, stderr io.Writer) int {
	opts, err := parseProfilesArgs(args)
	if err != nil {
		if err == flag.ErrHelp {
			printProfilesUsage(stderr)
			return exitSuccess
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}

	if opts.Name == "" {
		return listProfiles(stdout, opts.JSON)
	}

	profile, ok := qos.ProfileNamed(opts.Name)
	if !ok {
		fmt.Fprintf(stderr, "Error: unknown preset %q\n", opts.Name)
		return exitCommandError
	}

	if opts.JSON {
		output, _ := json.MarshalIndent(map[string]string{
			"name":    opts.Name,
			"profile": profile.String(),
		}, "", "  ")
		fmt.Fprintln(stdout, string(output))
		return exitSuccess
	}

	data, err := yaml.Marshal(profile)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	fmt.Fprintf(stdout, "# %s\n%s", opts.Name, data)
	return exitSuccess
}

func listProfiles(stdout io.Writer, asJSON bool) int {
	names := qos.ProfileNames()

	if asJSON {
		entries := make([]map[string]string, 0, len(names))
		for _, name := range names {
			p, _ := qos.ProfileNamed(name)
			entries = append(entries, map[string]string{
				"name":    name,
				"profile": p.String(),
			})
		}
		output, _ := json.MarshalIndent(entries, "", "  ")
		fmt.Fprintln(stdout, string(output))
		return exitSuccess
	}

	for _, name := range names {
		p, _ := qos.ProfileNamed(name)
		fmt.Fprintf(stdout, "%-18s %s\n", name, p)
	}
	return exitSuccess
}

func parseProfilesArgs(args []string) (ProfilesOptions, error) {
	fs := flag.NewFlagSet("profiles", flag.ContinueOnError)
	opts := ProfilesOptions{}

	fs.BoolVar(&opts.JSON, "json", false, "Output results as JSON")

	// Handle --help
	fs.Usage = func() {}

	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	rest := fs.Args()
	if len(rest) > 1 {
		return opts, fmt.Errorf("expected at most one preset name, got %d", len(rest))
	}
	if len(rest) == 1 {
		opts.Name = rest[0]
	}
	return opts, nil
}

func printProfilesUsage(w io.Writer) {
	fmt.Fprintln(w, `
Usage: rmw-doctor profiles [options] [name]

Without a name, lists every preset. With a name, prints that preset as
YAML suitable for the qos command's --pub/--sub files.

Options:
  --json  Output results as JSON

Examples:
  rmw-doctor profiles
  rmw-doctor profiles sensor_data > sensor.yaml`)
}
