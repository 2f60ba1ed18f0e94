package model

// Participant represents one person taking part in a gift exchange.
// Exclusions are directional: listing B in A's Excludes only prevents A from
// giving to B. Couples who must not draw each other in either direction have
// to list each other explicitly.
type Participant struct {
	Name     string   `json:"name"`
	Excludes []string `json:"excludes,omitempty"`
}

// NewParticipant creates a participant with the given exclusion list.
func NewParticipant(name string, excludes ...string) Participant {
	return Participant{Name: name, Excludes: excludes}
}

// Assignment is a single giver → receiver pairing derived from the cycle.
type Assignment struct {
	Giver    string `json:"giver"`
	Receiver string `json:"receiver"`
}

// Plan is the result of one scheduling request: every participant appears
// exactly once as giver and exactly once as receiver, and following
// receiver-of-receiver from any participant walks the whole ring.
// A Plan is transient; it is computed per request and never persisted.
type Plan struct {
	ID          string       `json:"id"`    // Request ID for log correlation
	Assignments []Assignment `json:"assignments"`
	Steps       int          `json:"steps"` // Candidate extensions tried by the search
}

// Receiver returns the receiver assigned to the given giver, or "" if the
// giver is not part of the plan.
func (p *Plan) Receiver(giver string) string {
	for _, a := range p.Assignments {
		if a.Giver == giver {
			return a.Receiver
		}
	}
	return ""
}
