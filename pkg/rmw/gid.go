package rmw

import (
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// GIDStorageSize is the byte width of an endpoint identifier.
const GIDStorageSize = 16

// GID globally identifies one publisher, client, or service writer.
// The zero value means "no identifier".
type GID [GIDStorageSize]byte

// NewGID returns a fresh random identifier.
func NewGID() GID {
	return GID(uuid.New())
}

// IsZero reports whether g is the all-zero identifier.
func (g GID) IsZero() bool { return g == GID{} }

// String renders the identifier as 32 lowercase hex digits.
func (g GID) String() string { return hex.EncodeToString(g[:]) }

// ParseGID decodes the form String produces.
func ParseGID(s string) (GID, error) {
	var g GID
	b, err := hex.DecodeString(s)
	if err != nil {
		return GID{}, fmt.Errorf("%w: gid %q: %v", ErrInvalidArgument, s, err)
	}
	if len(b) != GIDStorageSize {
		return GID{}, fmt.Errorf("%w: gid %q: need %d bytes, got %d",
			ErrInvalidArgument, s, GIDStorageSize, len(b))
	}
	copy(g[:], b)
	return g, nil
}
