package blocklib

import "fmt"

// ArtifactClass partitions the blocklist data and every piece of associated
// state: timestamps, dedup tags, namespace directories and pipeline jobs.
// The two classes never interfere with each other.
type ArtifactClass string

const (
	// ClassLocal is the on-device blocklist artifact set.
	ClassLocal ArtifactClass = "local"
	// ClassRemote is the cloud-filtered blocklist artifact set.
	ClassRemote ArtifactClass = "remote"
)

// Classes lists every valid artifact class in a stable order.
var Classes = []ArtifactClass{ClassLocal, ClassRemote}

// Valid reports whether c is a known artifact class.
func (c ArtifactClass) Valid() bool {
	return c == ClassLocal || c == ClassRemote
}

// ParseClass converts a wire/CLI string into an ArtifactClass.
func ParseClass(s string) (ArtifactClass, error) {
	c := ArtifactClass(s)
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownClass, s)
	}
	return c, nil
}
