package names

import "strconv"

// MaxTopicNameLength is the longest accepted full topic name. Eight
// bytes of the 255-byte transport limit are reserved for implementation
// prefixes.
const MaxTopicNameLength = 247

// TopicResult classifies a full topic name. The zero value is valid.
type TopicResult uint8

const (
	// TopicValid means the name satisfies every topic naming rule.
	TopicValid TopicResult = iota
	// TopicEmpty means the name is the empty string.
	TopicEmpty
	// TopicNotAbsolute means the name does not start with a '/'.
	TopicNotAbsolute
	// TopicEndsWithSlash means the name ends with a '/'.
	TopicEndsWithSlash
	// TopicDisallowedCharacter means the name contains a byte outside
	// alphanumerics, '_', and '/'.
	TopicDisallowedCharacter
	// TopicRepeatedSlash means the name contains "//".
	TopicRepeatedSlash
	// TopicTokenStartsWithNumber means a token between slashes begins
	// with a digit.
	TopicTokenStartsWithNumber
	// TopicTooLong means the name is well formed but longer than
	// MaxTopicNameLength.
	TopicTooLong
)

// String returns the rule the name violated, or "valid".
func (r TopicResult) String() string {
	switch r {
	case TopicValid:
		return "valid"
	case TopicEmpty:
		return "topic name must not be empty"
	case TopicNotAbsolute:
		return "topic name must be absolute, it must lead with a '/'"
	case TopicEndsWithSlash:
		return "topic name must not end with a '/'"
	case TopicDisallowedCharacter:
		return "topic name must not contain characters other than alphanumerics, '_', or '/'"
	case TopicRepeatedSlash:
		return "topic name must not contain repeated '/'"
	case TopicTokenStartsWithNumber:
		return "topic name must not have a token that starts with a number"
	case TopicTooLong:
		return "topic length should not exceed '" + strconv.Itoa(MaxTopicNameLength) + "'"
	default:
		return "unknown result code for topic name validation"
	}
}

// ValidateTopic checks name against the full topic name rules: the name
// must be absolute, must not end with a '/', may contain only
// alphanumerics, '_', and '/', must not repeat a '/', and no token may
// start with a digit. The second result is the byte offset of the first
// violation, or -1 when the name is valid.
func ValidateTopic(name string) (TopicResult, int) {
	if len(name) == 0 {
		return TopicEmpty, 0
	}
	if name[0] != '/' {
		return TopicNotAbsolute, 0
	}
	if name[len(name)-1] == '/' {
		return TopicEndsWithSlash, len(name) - 1
	}
	// Character scan runs over the whole name before any structural
	// check, so a stray byte wins over a later slash fault.
	for i := 0; i < len(name); i++ {
		if c := name[i]; !isAlphanumeric(c) && c != '_' && c != '/' {
			return TopicDisallowedCharacter, i
		}
	}
	for i := 0; i+1 < len(name); i++ {
		if name[i] != '/' {
			continue
		}
		if name[i+1] == '/' {
			return TopicRepeatedSlash, i + 1
		}
		if isDigit(name[i+1]) {
			return TopicTokenStartsWithNumber, i + 1
		}
	}
	// Length last: an over-long name may still be usable by callers
	// that can shorten it.
	if len(name) > MaxTopicNameLength {
		return TopicTooLong, MaxTopicNameLength - 1
	}
	return TopicValid, -1
}

// isAlphanumeric matches [0-9A-Za-z] regardless of locale.
func isAlphanumeric(c byte) bool {
	return isDigit(c) || ('A' <= c && c <= 'Z') || ('a' <= c && c <= 'z')
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }
