package names

import "strconv"

// MaxNamespaceLength leaves room under MaxTopicNameLength for the
// shortest possible topic suffix, "/X".
const MaxNamespaceLength = MaxTopicNameLength - 2

// NamespaceResult classifies a namespace. The zero value is valid.
type NamespaceResult uint8

const (
	// NamespaceValid means the namespace satisfies every rule.
	NamespaceValid NamespaceResult = iota
	// NamespaceEmpty means the namespace is the empty string.
	NamespaceEmpty
	// NamespaceNotAbsolute means the namespace does not start with a '/'.
	NamespaceNotAbsolute
	// NamespaceEndsWithSlash means a non-root namespace ends with a '/'.
	NamespaceEndsWithSlash
	// NamespaceDisallowedCharacter means the namespace contains a byte
	// outside alphanumerics, '_', and '/'.
	NamespaceDisallowedCharacter
	// NamespaceRepeatedSlash means the namespace contains "//".
	NamespaceRepeatedSlash
	// NamespaceTokenStartsWithNumber means a token between slashes
	// begins with a digit.
	NamespaceTokenStartsWithNumber
	// NamespaceTooLong means the namespace is well formed but longer
	// than MaxNamespaceLength.
	NamespaceTooLong
)

// String returns the rule the namespace violated, or "valid".
func (r NamespaceResult) String() string {
	switch r {
	case NamespaceValid:
		return "valid"
	case NamespaceEmpty:
		return "namespace must not be empty"
	case NamespaceNotAbsolute:
		return "namespace must be absolute, it must lead with a '/'"
	case NamespaceEndsWithSlash:
		return "namespace must not end with a '/', unless only a '/'"
	case NamespaceDisallowedCharacter:
		return "namespace must not contain characters other than alphanumerics, '_', or '/'"
	case NamespaceRepeatedSlash:
		return "namespace must not contain repeated '/'"
	case NamespaceTokenStartsWithNumber:
		return "namespace must not have a token that starts with a number"
	case NamespaceTooLong:
		return "namespace should not exceed '" + strconv.Itoa(MaxNamespaceLength) + "'"
	default:
		return "unknown result code for namespace validation"
	}
}

// ValidateNamespace checks name against the namespace rules. The root
// namespace "/" is valid even though it would fail the topic rules;
// every other namespace must pass the full topic name checks and a
// tighter length bound, checked last. The second result is the byte
// offset of the first violation, or -1 when the namespace is valid.
func ValidateNamespace(name string) (NamespaceResult, int) {
	if name == "/" {
		return NamespaceValid, -1
	}
	res, idx := ValidateTopic(name)
	switch res {
	case TopicEmpty:
		return NamespaceEmpty, idx
	case TopicNotAbsolute:
		return NamespaceNotAbsolute, idx
	case TopicEndsWithSlash:
		return NamespaceEndsWithSlash, idx
	case TopicDisallowedCharacter:
		return NamespaceDisallowedCharacter, idx
	case TopicRepeatedSlash:
		return NamespaceRepeatedSlash, idx
	case TopicTokenStartsWithNumber:
		return NamespaceTokenStartsWithNumber, idx
	}
	// Valid or merely over-long as a topic; the namespace bound is the
	// one that counts.
	if len(name) > MaxNamespaceLength {
		return NamespaceTooLong, MaxNamespaceLength - 1
	}
	return NamespaceValid, -1
}
