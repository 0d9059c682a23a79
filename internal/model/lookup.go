package model

// LookupStatus classifies the outcome of a vocabulary lookup.
type LookupStatus int

const (
	// LookupResolvable means the service confirmed the notation resolves.
	LookupResolvable LookupStatus = iota

	// LookupNotFound means the service answered and rejected the notation.
	LookupNotFound

	// LookupUnavailable means the service could not be reached; callers
	// treat the notation as unvalidated rather than invalid.
	LookupUnavailable
)

func (s LookupStatus) String() string {
	switch s {
	case LookupResolvable:
		return "resolvable"
	case LookupNotFound:
		return "not_found"
	case LookupUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// LookupResult is the outcome of validating one notation.
type LookupResult struct {
	Status LookupStatus

	// Labels holds canonical labels when the service provided them.
	Labels LabelMap
}
