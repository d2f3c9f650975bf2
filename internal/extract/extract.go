// Package extract turns bot comment bodies into structured facts.
//
// Every function here is pure: the same input always yields the same output,
// and malformed input degrades to an Outcome rather than an error.
package extract

// Outcome reports how much of a fact an extractor could recover.
type Outcome uint8

// Extraction outcomes.
const (
	// OutcomeRejected means the mandatory anchor was missing and no fact was produced.
	OutcomeRejected Outcome = iota
	// OutcomePartial means a fact was produced but a secondary field degraded.
	OutcomePartial
	// OutcomeComplete means every field was recovered.
	OutcomeComplete
)

// OK reports whether a usable fact was produced.
func (o Outcome) OK() bool {
	return o != OutcomeRejected
}

// String implements fmt.Stringer.
func (o Outcome) String() string {
	switch o {
	case OutcomePartial:
		return "partial"
	case OutcomeComplete:
		return "complete"
	default:
		return "rejected"
	}
}

// MarshalText lets outcomes appear as strings in JSON output.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}
