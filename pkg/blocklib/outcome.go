package blocklib

// FreshnessOutcome is the status code of a freshness check or download
// pipeline. The numeric values double as "no value" sentinels in persisted
// state and on the wire, so they must never be renumbered.
type FreshnessOutcome int

const (
	OutcomeNotStarted  FreshnessOutcome = 0
	OutcomeFailure     FreshnessOutcome = 1
	OutcomeNotRequired FreshnessOutcome = 2
	OutcomeInProgress  FreshnessOutcome = 3
	OutcomeSuccess     FreshnessOutcome = 4
)

// Terminal reports whether the outcome ends an invocation. OutcomeInProgress
// is always published before any terminal outcome of the same invocation.
func (o FreshnessOutcome) Terminal() bool {
	switch o {
	case OutcomeFailure, OutcomeNotRequired, OutcomeSuccess:
		return true
	default:
		return false
	}
}

func (o FreshnessOutcome) String() string {
	switch o {
	case OutcomeNotStarted:
		return "not_started"
	case OutcomeFailure:
		return "failure"
	case OutcomeNotRequired:
		return "not_required"
	case OutcomeInProgress:
		return "in_progress"
	case OutcomeSuccess:
		return "success"
	default:
		return "unknown"
	}
}
