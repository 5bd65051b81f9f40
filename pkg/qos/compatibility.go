package qos

import (
	"fmt"
	"strings"
)

// Compatibility classifies a publisher/subscription QoS pairing.
type Compatibility uint8

const (
	// CompatibilityOK means every policy pairing is provably compatible.
	CompatibilityOK Compatibility = iota
	// CompatibilityWarning means at least one policy cannot be proven
	// compatible because one side is unresolved.
	CompatibilityWarning
	// CompatibilityError means at least one policy pairing prevents the
	// endpoints from matching.
	CompatibilityError
)

// String returns "ok", "warning", or "error".
func (c Compatibility) String() string {
	switch c {
	case CompatibilityOK:
		return "ok"
	case CompatibilityWarning:
		return "warning"
	case CompatibilityError:
		return "error"
	default:
		return "unknown"
	}
}

// DefaultReasonCapacity is a reason budget that comfortably holds every
// finding one pairing can produce.
const DefaultReasonCapacity = 2048

// Reason is a single compatibility finding.
type Reason struct {
	// Severity is CompatibilityError or CompatibilityWarning.
	Severity Compatibility

	// Policy names the offending policy.
	Policy PolicyKind

	// Message explains the finding. It has no severity prefix; rendering
	// adds one.
	Message string
}

// Result is the checker's verdict together with the findings that
// produced it.
type Result struct {
	// Compatibility is the worst severity across all findings.
	Compatibility Compatibility

	// Reasons lists every finding: all errors first, then all warnings,
	// each group in policy evaluation order.
	Reasons []Reason
}

// CheckCompatibility reports whether a publisher profile can satisfy a
// subscription profile.
//
// Every policy is evaluated; nothing short-circuits. A policy whose two
// sides are concrete yields ERROR when the publisher offers strictly less
// than the subscription demands and OK otherwise. A side carrying an
// unresolved sentinel (system_default, unknown, best_available) yields one
// WARNING for that side, since the outcome depends on how the sentinel
// resolves. Unspecified and infinite durations impose no constraint and
// yield nothing. History, depth, and lifespan play no part in matching and
// are never compared.
func CheckCompatibility(pub, sub Profile) Result {
	var findings []Reason
	findings = append(findings, checkValuePolicy(PolicyReliability,
		reliabilityLevel(pub.Reliability), reliabilityLevel(sub.Reliability),
		pub.Reliability.String(), sub.Reliability.String())...)
	findings = append(findings, checkValuePolicy(PolicyDurability,
		durabilityLevel(pub.Durability), durabilityLevel(sub.Durability),
		pub.Durability.String(), sub.Durability.String())...)
	findings = append(findings, checkDurationPolicy(PolicyDeadline,
		pub.Deadline, sub.Deadline)...)
	findings = append(findings, checkValuePolicy(PolicyLiveliness,
		livelinessLevel(pub.Liveliness), livelinessLevel(sub.Liveliness),
		pub.Liveliness.String(), sub.Liveliness.String())...)
	findings = append(findings, checkDurationPolicy(PolicyLivelinessLeaseDuration,
		pub.LivelinessLeaseDuration, sub.LivelinessLeaseDuration)...)

	var errs, warns []Reason
	for _, f := range findings {
		if f.Severity == CompatibilityError {
			errs = append(errs, f)
		} else {
			warns = append(warns, f)
		}
	}

	verdict := CompatibilityOK
	if len(warns) > 0 {
		verdict = CompatibilityWarning
	}
	if len(errs) > 0 {
		verdict = CompatibilityError
	}
	return Result{Compatibility: verdict, Reasons: append(errs, warns...)}
}

// Reason renders every finding as one semicolon-separated string with
// severity prefixes, errors first.
func (r Result) Reason() string {
	if len(r.Reasons) == 0 {
		return ""
	}
	var b strings.Builder
	for i, f := range r.Reasons {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(severityPrefix(f.Severity))
		b.WriteString(": ")
		b.WriteString(f.Message)
	}
	return b.String()
}

// TruncatedReason renders like Reason but never exceeds max bytes. Errors
// render first, so truncation drops warning text before error text. A
// non-positive max yields an empty string.
func (r Result) TruncatedReason(max int) string {
	if max <= 0 {
		return ""
	}
	s := r.Reason()
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func severityPrefix(c Compatibility) string {
	if c == CompatibilityError {
		return "ERROR"
	}
	return "WARNING"
}

// policyLevel places a concrete policy value on the offered/required
// ordering, or marks it unresolved.
type policyLevel uint8

const (
	levelUnresolved policyLevel = iota
	levelWeak
	levelStrict
)

func reliabilityLevel(r Reliability) policyLevel {
	switch r {
	case ReliabilityReliable:
		return levelStrict
	case ReliabilityBestEffort:
		return levelWeak
	}
	return levelUnresolved
}

func durabilityLevel(d Durability) policyLevel {
	switch d {
	case DurabilityTransientLocal:
		return levelStrict
	case DurabilityVolatile:
		return levelWeak
	}
	return levelUnresolved
}

func livelinessLevel(l Liveliness) policyLevel {
	switch l {
	case LivelinessManualByTopic:
		return levelStrict
	case LivelinessAutomatic:
		return levelWeak
	}
	return levelUnresolved
}

func checkValuePolicy(kind PolicyKind, pubLevel, subLevel policyLevel, pubName, subName string) []Reason {
	if pubLevel == levelWeak && subLevel == levelStrict {
		return []Reason{{
			Severity: CompatibilityError,
			Policy:   kind,
			Message: fmt.Sprintf("publisher %s is %s, but subscription %s is %s",
				kind, pubName, kind, subName),
		}}
	}
	var out []Reason
	if pubLevel == levelUnresolved {
		out = append(out, Reason{
			Severity: CompatibilityWarning,
			Policy:   kind,
			Message: fmt.Sprintf("publisher %s is %s, so compatibility cannot be determined",
				kind, pubName),
		})
	}
	if subLevel == levelUnresolved {
		out = append(out, Reason{
			Severity: CompatibilityWarning,
			Policy:   kind,
			Message: fmt.Sprintf("subscription %s is %s, so compatibility cannot be determined",
				kind, subName),
		})
	}
	return out
}

func checkDurationPolicy(kind PolicyKind, pub, sub Duration) []Reason {
	// Unspecified and infinite both mean "no constraint".
	if pub.IsUnspecified() || pub.IsInfinite() || sub.IsUnspecified() || sub.IsInfinite() {
		return nil
	}
	var out []Reason
	if pub.IsBestAvailable() {
		out = append(out, Reason{
			Severity: CompatibilityWarning,
			Policy:   kind,
			Message: fmt.Sprintf("publisher %s is best_available, so compatibility cannot be determined",
				kind),
		})
	}
	if sub.IsBestAvailable() {
		out = append(out, Reason{
			Severity: CompatibilityWarning,
			Policy:   kind,
			Message: fmt.Sprintf("subscription %s is best_available, so compatibility cannot be determined",
				kind),
		})
	}
	if len(out) > 0 {
		return out
	}
	if pub.Cmp(sub) > 0 {
		return []Reason{{
			Severity: CompatibilityError,
			Policy:   kind,
			Message: fmt.Sprintf("publisher %s %s is larger than subscription %s %s",
				kind, pub, kind, sub),
		}}
	}
	return nil
}
