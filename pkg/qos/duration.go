package qos

import (
	"fmt"
	"math"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is the second/nanosecond pair QoS policies carry on the wire.
// The zero value means "unspecified". Values are compared by their total
// nanosecond count, so unnormalized representations of the same span are
// equal.
type Duration struct {
	Sec  uint64
	NSec uint64
}

// Sentinel durations. Unspecified leaves the policy to the middleware,
// Infinite disables the constraint, and BestAvailable asks the middleware
// to pick the strongest constraint the current peers support.
var (
	DurationUnspecified   = Duration{}
	DurationInfinite      = Duration{Sec: 9223372036, NSec: 854775807}
	DurationBestAvailable = Duration{Sec: 9223372036, NSec: 854775806}
)

const (
	maxDurationNSec = uint64(math.MaxInt64)
	maxDurationSec  = maxDurationNSec / uint64(time.Second)
)

// NewDuration converts a time.Duration. Negative input maps to
// DurationInfinite.
func NewDuration(d time.Duration) Duration {
	if d < 0 {
		return DurationInfinite
	}
	n := uint64(d)
	return Duration{Sec: n / uint64(time.Second), NSec: n % uint64(time.Second)}
}

// Nanoseconds returns the total nanosecond count, saturating at the
// infinite encoding when the pair does not fit.
func (d Duration) Nanoseconds() uint64 {
	if d.Sec > maxDurationSec {
		return maxDurationNSec
	}
	total := d.Sec * uint64(time.Second)
	if d.NSec > maxDurationNSec-total {
		return maxDurationNSec
	}
	return total + d.NSec
}

// Normalize moves whole seconds out of the nanosecond field. Values beyond
// the representable range collapse to DurationInfinite.
func (d Duration) Normalize() Duration {
	n := d.Nanoseconds()
	return Duration{Sec: n / uint64(time.Second), NSec: n % uint64(time.Second)}
}

// Equal reports whether two durations describe the same span.
func (d Duration) Equal(o Duration) bool {
	return d.Nanoseconds() == o.Nanoseconds()
}

// Cmp compares total nanosecond counts, returning -1, 0, or 1.
func (d Duration) Cmp(o Duration) int {
	a, b := d.Nanoseconds(), o.Nanoseconds()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// IsUnspecified reports whether the duration carries the unspecified
// sentinel (zero span).
func (d Duration) IsUnspecified() bool { return d.Nanoseconds() == 0 }

// IsInfinite reports whether the duration carries the infinite sentinel.
func (d Duration) IsInfinite() bool { return d.Nanoseconds() == maxDurationNSec }

// IsBestAvailable reports whether the duration carries the best-available
// sentinel.
func (d Duration) IsBestAvailable() bool { return d.Nanoseconds() == maxDurationNSec-1 }

// Std converts to time.Duration. The second result is false for the
// infinite and best-available sentinels, which have no finite equivalent.
func (d Duration) Std() (time.Duration, bool) {
	if d.IsInfinite() || d.IsBestAvailable() {
		return 0, false
	}
	return time.Duration(d.Nanoseconds()), true
}

// String returns a sentinel word or the time.Duration rendering.
func (d Duration) String() string {
	switch {
	case d.IsUnspecified():
		return "unspecified"
	case d.IsInfinite():
		return "infinite"
	case d.IsBestAvailable():
		return "best_available"
	}
	return time.Duration(d.Nanoseconds()).String()
}

// ParseDuration accepts a sentinel word ("unspecified", "infinite",
// "best_available") or a non-negative Go duration literal such as "100ms".
func ParseDuration(s string) (Duration, error) {
	switch s {
	case "unspecified":
		return DurationUnspecified, nil
	case "infinite":
		return DurationInfinite, nil
	case "best_available":
		return DurationBestAvailable, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return Duration{}, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	if d < 0 {
		return Duration{}, fmt.Errorf("invalid duration %q: must not be negative", s)
	}
	return NewDuration(d), nil
}

// MarshalYAML encodes the duration in its String form.
func (d Duration) MarshalYAML() (any, error) { return d.String(), nil }

// UnmarshalYAML decodes a sentinel word or duration literal.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	v, err := ParseDuration(s)
	if err != nil {
		return err
	}
	*d = v
	return nil
}
