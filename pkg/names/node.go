package names

import "strconv"

// MaxNodeNameLength bounds node names.
const MaxNodeNameLength = 255

// NodeNameResult classifies a node name. The zero value is valid.
type NodeNameResult uint8

const (
	// NodeNameValid means the name satisfies every node naming rule.
	NodeNameValid NodeNameResult = iota
	// NodeNameEmpty means the name is the empty string.
	NodeNameEmpty
	// NodeNameDisallowedCharacter means the name contains a byte
	// outside alphanumerics and '_'.
	NodeNameDisallowedCharacter
	// NodeNameStartsWithNumber means the first byte is a digit.
	NodeNameStartsWithNumber
	// NodeNameTooLong means the name is well formed but longer than
	// MaxNodeNameLength.
	NodeNameTooLong
)

// String returns the rule the name violated, or "valid".
func (r NodeNameResult) String() string {
	switch r {
	case NodeNameValid:
		return "valid"
	case NodeNameEmpty:
		return "node name must not be empty"
	case NodeNameDisallowedCharacter:
		return "node name must not contain characters other than alphanumerics or '_'"
	case NodeNameStartsWithNumber:
		return "node name must not start with a number"
	case NodeNameTooLong:
		return "node name length should not exceed '" + strconv.Itoa(MaxNodeNameLength) + "'"
	default:
		return "unknown result code for node name validation"
	}
}

// ValidateNodeName checks name against the node naming rules: only
// alphanumerics and '_' are allowed, and the name must not start with a
// digit. The second result is the byte offset of the first violation,
// or -1 when the name is valid.
func ValidateNodeName(name string) (NodeNameResult, int) {
	if len(name) == 0 {
		return NodeNameEmpty, 0
	}
	// Character scan first; a stray byte wins over a leading digit.
	for i := 0; i < len(name); i++ {
		if c := name[i]; !isAlphanumeric(c) && c != '_' {
			return NodeNameDisallowedCharacter, i
		}
	}
	if isDigit(name[0]) {
		return NodeNameStartsWithNumber, 0
	}
	if len(name) > MaxNodeNameLength {
		return NodeNameTooLong, MaxNodeNameLength - 1
	}
	return NodeNameValid, -1
}
