package qos

import (
	"fmt"
	"strings"
)

// DepthSystemDefault defers the history depth to the middleware.
const DepthSystemDefault = 0

// Profile is the full set of QoS policies attached to one endpoint.
// The zero value is the all-system-default profile.
type Profile struct {
	// History selects the sample retention scheme.
	History History `yaml:"history"`

	// Depth bounds retained samples when History is keep_last.
	Depth int `yaml:"depth"`

	// Reliability selects the delivery guarantee.
	Reliability Reliability `yaml:"reliability"`

	// Durability controls replay of earlier samples to late joiners.
	Durability Durability `yaml:"durability"`

	// Deadline is the maximum expected period between samples.
	Deadline Duration `yaml:"deadline"`

	// Lifespan is how long a sample stays valid after publication.
	Lifespan Duration `yaml:"lifespan"`

	// Liveliness selects how the endpoint proves it is alive.
	Liveliness Liveliness `yaml:"liveliness"`

	// LivelinessLeaseDuration is the period within which liveliness must
	// be asserted.
	LivelinessLeaseDuration Duration `yaml:"liveliness_lease_duration"`

	// AvoidROSNamespaceConventions opts the endpoint out of ROS topic
	// name mangling.
	AvoidROSNamespaceConventions bool `yaml:"avoid_ros_namespace_conventions"`
}

// DefaultProfile is the profile used for plain topics: reliable,
// volatile, keep-last history of 10.
func DefaultProfile() Profile {
	return Profile{
		History:     HistoryKeepLast,
		Depth:       10,
		Reliability: ReliabilityReliable,
		Durability:  DurabilityVolatile,
	}
}

// SensorDataProfile favors freshness over completeness: best-effort
// delivery with a shallow keep-last history.
func SensorDataProfile() Profile {
	return Profile{
		History:     HistoryKeepLast,
		Depth:       5,
		Reliability: ReliabilityBestEffort,
		Durability:  DurabilityVolatile,
	}
}

// ServicesProfile is the profile used for service request/response
// channels.
func ServicesProfile() Profile {
	return Profile{
		History:     HistoryKeepLast,
		Depth:       10,
		Reliability: ReliabilityReliable,
		Durability:  DurabilityVolatile,
	}
}

// ParametersProfile is the profile used for parameter services, with a
// deeper queue to absorb bursts.
func ParametersProfile() Profile {
	return Profile{
		History:     HistoryKeepLast,
		Depth:       1000,
		Reliability: ReliabilityReliable,
		Durability:  DurabilityVolatile,
	}
}

// ParameterEventsProfile is the profile used for the parameter event
// topic.
func ParameterEventsProfile() Profile {
	return Profile{
		History:     HistoryKeepLast,
		Depth:       1000,
		Reliability: ReliabilityReliable,
		Durability:  DurabilityVolatile,
	}
}

// SystemDefaultProfile defers every policy to the middleware.
func SystemDefaultProfile() Profile {
	return Profile{}
}

// BestAvailableProfile matches the strongest policies the peers present at
// creation time support, falling back to the default profile's values when
// there are none.
func BestAvailableProfile() Profile {
	return Profile{
		History:                 HistoryKeepLast,
		Depth:                   10,
		Reliability:             ReliabilityBestAvailable,
		Durability:              DurabilityBestAvailable,
		Deadline:                DurationBestAvailable,
		Liveliness:              LivelinessBestAvailable,
		LivelinessLeaseDuration: DurationBestAvailable,
	}
}

// UnknownProfile marks every policy unknown. Endpoint introspection
// returns it when a peer's profile cannot be decoded.
func UnknownProfile() Profile {
	return Profile{
		History:     HistoryUnknown,
		Reliability: ReliabilityUnknown,
		Durability:  DurabilityUnknown,
		Liveliness:  LivelinessUnknown,
	}
}

// profileNames lists the presets in their canonical order.
var profileNames = []string{
	"default",
	"sensor_data",
	"services_default",
	"parameters",
	"parameter_events",
	"system_default",
	"best_available",
	"unknown",
}

// ProfileNames returns the preset names ProfileNamed accepts, in a fixed
// order.
func ProfileNames() []string {
	out := make([]string, len(profileNames))
	copy(out, profileNames)
	return out
}

// ProfileNamed returns the preset registered under name. The second result
// is false when the name is not a preset.
func ProfileNamed(name string) (Profile, bool) {
	switch name {
	case "default":
		return DefaultProfile(), true
	case "sensor_data":
		return SensorDataProfile(), true
	case "services_default":
		return ServicesProfile(), true
	case "parameters":
		return ParametersProfile(), true
	case "parameter_events":
		return ParameterEventsProfile(), true
	case "system_default":
		return SystemDefaultProfile(), true
	case "best_available":
		return BestAvailableProfile(), true
	case "unknown":
		return UnknownProfile(), true
	}
	return Profile{}, false
}

// String renders the profile as a compact single line for logs and CLI
// output.
func (p Profile) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "history=%s depth=%d reliability=%s durability=%s",
		p.History, p.Depth, p.Reliability, p.Durability)
	fmt.Fprintf(&b, " deadline=%s lifespan=%s liveliness=%s lease=%s",
		p.Deadline, p.Lifespan, p.Liveliness, p.LivelinessLeaseDuration)
	if p.AvoidROSNamespaceConventions {
		b.WriteString(" avoid_ros_namespace_conventions=true")
	}
	return b.String()
}
