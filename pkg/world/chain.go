package world

import "fmt"

// ErrDuplicateChain is returned when a chain is started while another
// instance with the same id is still active. This is a content error.
var ErrDuplicateChain = fmt.Errorf("chain already active")

// ChainState tracks progress through one multi-day narrative arc.
// The cursor only moves forward; a chain deactivates exactly once, when
// the cursor passes the last step, and never re-activates.
type ChainState struct {
	ChainID string   `json:"chain_id"`
	Steps   []string `json:"steps"`
	Cursor  int      `json:"cursor"`
	Active  bool     `json:"active"`
}

// CurrentStep returns the event id of the next step, or false when the
// chain is inactive or complete.
func (c *ChainState) CurrentStep() (string, bool) {
	if !c.Active || c.Cursor >= len(c.Steps) {
		return "", false
	}
	return c.Steps[c.Cursor], true
}

// Advance moves the cursor to the next step. Pushing past the final step
// completes the chain.
func (c *ChainState) Advance() {
	if !c.Active {
		return
	}
	c.Cursor++
	if c.Cursor >= len(c.Steps) {
		c.Active = false
	}
}

// Complete reports whether the chain has run through all its steps.
func (c *ChainState) Complete() bool {
	return !c.Active && c.Cursor >= len(c.Steps)
}

// EventRecord is one immutable entry in the playthrough history.
type EventRecord struct {
	Day      int    `json:"day"`
	Location string `json:"location"`
	EventID  string `json:"event_id"`
	ChoiceID string `json:"choice_id"`
	Summary  string `json:"summary,omitempty"`
}
