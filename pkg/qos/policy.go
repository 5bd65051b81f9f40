package qos

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Reliability controls the delivery guarantee of an endpoint.
type Reliability uint8

const (
	// ReliabilitySystemDefault defers the choice to the middleware.
	ReliabilitySystemDefault Reliability = iota
	// ReliabilityReliable retries until delivery to matched peers succeeds.
	ReliabilityReliable
	// ReliabilityBestEffort attempts delivery but tolerates loss.
	ReliabilityBestEffort
	// ReliabilityUnknown is reported for values this library does not model.
	ReliabilityUnknown
	// ReliabilityBestAvailable resolves to the strongest value compatible
	// with the peers present when the endpoint is created.
	ReliabilityBestAvailable
)

// String returns the canonical lowercase policy name.
func (r Reliability) String() string {
	switch r {
	case ReliabilitySystemDefault:
		return "system_default"
	case ReliabilityReliable:
		return "reliable"
	case ReliabilityBestEffort:
		return "best_effort"
	case ReliabilityBestAvailable:
		return "best_available"
	default:
		return "unknown"
	}
}

// ParseReliability maps a canonical policy name to its value. Unrecognized
// input yields ReliabilityUnknown and a non-nil error.
func ParseReliability(s string) (Reliability, error) {
	switch s {
	case "system_default":
		return ReliabilitySystemDefault, nil
	case "reliable":
		return ReliabilityReliable, nil
	case "best_effort":
		return ReliabilityBestEffort, nil
	case "best_available":
		return ReliabilityBestAvailable, nil
	case "unknown":
		return ReliabilityUnknown, nil
	}
	return ReliabilityUnknown, fmt.Errorf("unrecognized reliability policy %q", s)
}

// History controls how many samples an endpoint stores per instance.
type History uint8

const (
	// HistorySystemDefault defers the choice to the middleware.
	HistorySystemDefault History = iota
	// HistoryKeepLast stores up to Depth samples, evicting the oldest.
	HistoryKeepLast
	// HistoryKeepAll stores every sample, bounded only by resource limits.
	HistoryKeepAll
	// HistoryUnknown is reported for values this library does not model.
	HistoryUnknown
)

// String returns the canonical lowercase policy name.
func (h History) String() string {
	switch h {
	case HistorySystemDefault:
		return "system_default"
	case HistoryKeepLast:
		return "keep_last"
	case HistoryKeepAll:
		return "keep_all"
	default:
		return "unknown"
	}
}

// ParseHistory maps a canonical policy name to its value. Unrecognized
// input yields HistoryUnknown and a non-nil error.
func ParseHistory(s string) (History, error) {
	switch s {
	case "system_default":
		return HistorySystemDefault, nil
	case "keep_last":
		return HistoryKeepLast, nil
	case "keep_all":
		return HistoryKeepAll, nil
	case "unknown":
		return HistoryUnknown, nil
	}
	return HistoryUnknown, fmt.Errorf("unrecognized history policy %q", s)
}

// Durability controls whether samples published before a subscription
// joined are replayed to it.
type Durability uint8

const (
	// DurabilitySystemDefault defers the choice to the middleware.
	DurabilitySystemDefault Durability = iota
	// DurabilityTransientLocal keeps published samples for late joiners.
	DurabilityTransientLocal
	// DurabilityVolatile delivers only samples published after the match.
	DurabilityVolatile
	// DurabilityUnknown is reported for values this library does not model.
	DurabilityUnknown
	// DurabilityBestAvailable resolves to the strongest value compatible
	// with the peers present when the endpoint is created.
	DurabilityBestAvailable
)

// String returns the canonical lowercase policy name.
func (d Durability) String() string {
	switch d {
	case DurabilitySystemDefault:
		return "system_default"
	case DurabilityTransientLocal:
		return "transient_local"
	case DurabilityVolatile:
		return "volatile"
	case DurabilityBestAvailable:
		return "best_available"
	default:
		return "unknown"
	}
}

// ParseDurability maps a canonical policy name to its value. Unrecognized
// input yields DurabilityUnknown and a non-nil error.
func ParseDurability(s string) (Durability, error) {
	switch s {
	case "system_default":
		return DurabilitySystemDefault, nil
	case "transient_local":
		return DurabilityTransientLocal, nil
	case "volatile":
		return DurabilityVolatile, nil
	case "best_available":
		return DurabilityBestAvailable, nil
	case "unknown":
		return DurabilityUnknown, nil
	}
	return DurabilityUnknown, fmt.Errorf("unrecognized durability policy %q", s)
}

// Liveliness controls how an endpoint proves it is still alive.
type Liveliness uint8

const (
	// LivelinessSystemDefault defers the choice to the middleware.
	LivelinessSystemDefault Liveliness = 0
	// LivelinessAutomatic counts the endpoint alive while it exists.
	LivelinessAutomatic Liveliness = 1
	// Value 2 is retired and intentionally skipped.

	// LivelinessManualByTopic requires the publisher to assert liveliness
	// (or publish) within each lease period.
	LivelinessManualByTopic Liveliness = 3
	// LivelinessUnknown is reported for values this library does not model.
	LivelinessUnknown Liveliness = 4
	// LivelinessBestAvailable resolves to the strongest value compatible
	// with the peers present when the endpoint is created.
	LivelinessBestAvailable Liveliness = 5
)

// String returns the canonical lowercase policy name.
func (l Liveliness) String() string {
	switch l {
	case LivelinessSystemDefault:
		return "system_default"
	case LivelinessAutomatic:
		return "automatic"
	case LivelinessManualByTopic:
		return "manual_by_topic"
	case LivelinessBestAvailable:
		return "best_available"
	default:
		return "unknown"
	}
}

// ParseLiveliness maps a canonical policy name to its value. Unrecognized
// input yields LivelinessUnknown and a non-nil error.
func ParseLiveliness(s string) (Liveliness, error) {
	switch s {
	case "system_default":
		return LivelinessSystemDefault, nil
	case "automatic":
		return LivelinessAutomatic, nil
	case "manual_by_topic":
		return LivelinessManualByTopic, nil
	case "best_available":
		return LivelinessBestAvailable, nil
	case "unknown":
		return LivelinessUnknown, nil
	}
	return LivelinessUnknown, fmt.Errorf("unrecognized liveliness policy %q", s)
}

// PolicyKind identifies one QoS policy in compatibility reasons, events,
// and status reports. Values are single bits so kinds can be combined.
type PolicyKind uint16

const (
	// PolicyInvalid marks an absent or unrecognized policy kind.
	PolicyInvalid PolicyKind = 1 << iota
	// PolicyDurability is the durability policy.
	PolicyDurability
	// PolicyDeadline is the deadline policy.
	PolicyDeadline
	// PolicyLiveliness is the liveliness kind policy.
	PolicyLiveliness
	// PolicyReliability is the reliability policy.
	PolicyReliability
	// PolicyHistory is the history policy.
	PolicyHistory
	// PolicyLifespan is the lifespan policy.
	PolicyLifespan
	// PolicyDepth is the history depth.
	PolicyDepth
	// PolicyLivelinessLeaseDuration is the liveliness lease duration.
	PolicyLivelinessLeaseDuration
	// PolicyAvoidROSNamespaceConventions is the name-mangling opt-out flag.
	PolicyAvoidROSNamespaceConventions
)

// String returns the canonical lowercase kind name.
func (k PolicyKind) String() string {
	switch k {
	case PolicyDurability:
		return "durability"
	case PolicyDeadline:
		return "deadline"
	case PolicyLiveliness:
		return "liveliness"
	case PolicyReliability:
		return "reliability"
	case PolicyHistory:
		return "history"
	case PolicyLifespan:
		return "lifespan"
	case PolicyDepth:
		return "depth"
	case PolicyLivelinessLeaseDuration:
		return "liveliness_lease_duration"
	case PolicyAvoidROSNamespaceConventions:
		return "avoid_ros_namespace_conventions"
	default:
		return "invalid"
	}
}

// ParsePolicyKind maps a canonical kind name to its value. Unrecognized
// input yields PolicyInvalid and a non-nil error.
func ParsePolicyKind(s string) (PolicyKind, error) {
	switch s {
	case "durability":
		return PolicyDurability, nil
	case "deadline":
		return PolicyDeadline, nil
	case "liveliness":
		return PolicyLiveliness, nil
	case "reliability":
		return PolicyReliability, nil
	case "history":
		return PolicyHistory, nil
	case "lifespan":
		return PolicyLifespan, nil
	case "depth":
		return PolicyDepth, nil
	case "liveliness_lease_duration":
		return PolicyLivelinessLeaseDuration, nil
	case "avoid_ros_namespace_conventions":
		return PolicyAvoidROSNamespaceConventions, nil
	}
	return PolicyInvalid, fmt.Errorf("unrecognized policy kind %q", s)
}

// MarshalYAML encodes the policy as its canonical name.
func (r Reliability) MarshalYAML() (any, error) { return r.String(), nil }

// UnmarshalYAML decodes a canonical policy name.
func (r *Reliability) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	v, err := ParseReliability(s)
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// MarshalYAML encodes the policy as its canonical name.
func (h History) MarshalYAML() (any, error) { return h.String(), nil }

// UnmarshalYAML decodes a canonical policy name.
func (h *History) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	v, err := ParseHistory(s)
	if err != nil {
		return err
	}
	*h = v
	return nil
}

// MarshalYAML encodes the policy as its canonical name.
func (d Durability) MarshalYAML() (any, error) { return d.String(), nil }

// UnmarshalYAML decodes a canonical policy name.
func (d *Durability) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	v, err := ParseDurability(s)
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// MarshalYAML encodes the policy as its canonical name.
func (l Liveliness) MarshalYAML() (any, error) { return l.String(), nil }

// UnmarshalYAML decodes a canonical policy name.
func (l *Liveliness) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	v, err := ParseLiveliness(s)
	if err != nil {
		return err
	}
	*l = v
	return nil
}
