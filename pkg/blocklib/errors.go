package blocklib

import "errors"

var (
	ErrUnknownClass = errors.New("unknown artifact class")

	ErrTimestampUnknown    = errors.New("cannot store the unknown timestamp sentinel")
	ErrTimestampRegression = errors.New("stored timestamp must never decrease")

	ErrNoDescriptors = errors.New("no artifact descriptors configured for class")

	// ErrBatchIncomplete is returned by the watch stage while batch downloads
	// are still in flight; the scheduler retries the stage under its backoff.
	ErrBatchIncomplete = errors.New("download batch has not finished yet")

	// ErrBatchFailed is returned by the watch stage when any batch download
	// reached a terminal failure; the install stage must never run.
	ErrBatchFailed = errors.New("one or more batch downloads failed")
)
