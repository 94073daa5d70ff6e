package blocklib

import "strconv"

// Timestamp identifies a published artifact version. Values are
// monotonically nondecreasing; newer publications carry larger timestamps.
type Timestamp int64

const (
	// TimestampUnknown marks an unreachable or malformed remote response.
	// It is never persisted.
	TimestampUnknown Timestamp = -1
	// TimestampNone means no version has ever been seen or installed.
	TimestampNone Timestamp = 0
)

// Known reports whether t refers to an actual published version.
func (t Timestamp) Known() bool {
	return t > TimestampNone
}

func (t Timestamp) String() string {
	return strconv.FormatInt(int64(t), 10)
}

// TimestampStore is the persisted key/value state behind the orchestration
// core. It keeps two values per artifact class: the latest publication the
// checker has discovered, and the version the install stage last completed.
// The dedup gate guarantees a single writer path per class; implementations
// only need to be safe for concurrent readers.
type TimestampStore interface {
	Installed(class ArtifactClass) (Timestamp, error)
	Latest(class ArtifactClass) (Timestamp, error)

	// SetInstalled records a completed install. Writes of TimestampUnknown
	// or of a value below the stored one are rejected; writing the stored
	// value again is a no-op (forced redownloads reinstall in place).
	SetInstalled(class ArtifactClass, ts Timestamp) error

	// SetLatest records a newly discovered publication, under the same
	// validation rules as SetInstalled.
	SetLatest(class ArtifactClass, ts Timestamp) error
}

// ValidateTimestampWrite enforces the store invariants shared by all
// TimestampStore implementations.
func ValidateTimestampWrite(stored, next Timestamp) error {
	if next == TimestampUnknown {
		return ErrTimestampUnknown
	}
	if next < stored {
		return ErrTimestampRegression
	}
	return nil
}
