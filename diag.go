package feedmill

// Reason codes attached to diagnostic events when the pipeline accepts or
// drops a candidate. They let tests assert on why a candidate was filtered,
// not just on the final counts.
type Reason string

const (
	ReasonAccepted         Reason = "accepted"
	ReasonRejectedURL      Reason = "rejected_url"
	ReasonSelfReferenceURL Reason = "rejected_url_self_reference"
	ReasonImplausibleDate  Reason = "implausible_date"
	ReasonInferredDate     Reason = "inferred_date"
	ReasonDuplicateExact   Reason = "duplicate_exact"
	ReasonDuplicateFuzzy   Reason = "duplicate_fuzzy"
	ReasonDuplicateStored  Reason = "duplicate_stored"
	ReasonBeyondHorizon    Reason = "beyond_retention_horizon"
	ReasonEmptyItem        Reason = "empty_item"
)

// Event records one per-candidate decision.
type Event struct {
	Reason Reason
	Title  string
	Link   string
}

// Diagnostics accumulates reason-coded events for one source's run.
type Diagnostics struct {
	Events []Event
}

// Record appends an event.
func (d *Diagnostics) Record(reason Reason, title, link string) {
	d.Events = append(d.Events, Event{Reason: reason, Title: title, Link: link})
}

// Count returns the number of events recorded with the given reason.
func (d *Diagnostics) Count(reason Reason) int {
	n := 0
	for _, ev := range d.Events {
		if ev.Reason == reason {
			n++
		}
	}
	return n
}
