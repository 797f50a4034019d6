package engine

import (
	"github.com/jwebster45206/royal-chronicle/pkg/event"
	"github.com/jwebster45206/royal-chronicle/pkg/world"
)

// FieldDelta records one numeric change applied to the world. Clamped
// is the part of the requested change lost to the field's bounds,
// signed the same way as the request; zero when the change applied in
// full.
type FieldDelta struct {
	Field   string `json:"field"`
	Old     int    `json:"old"`
	New     int    `json:"new"`
	Clamped int    `json:"clamped,omitempty"`
}

// FlagDelta records one flag change.
type FlagDelta struct {
	Name string          `json:"name"`
	Old  world.FlagValue `json:"old"`
	New  world.FlagValue `json:"new"`
}

// DeltaReport is the full account of what one choice did to the world,
// for rendering to the player and for the chronicle log. Slices are
// ordered by field name so the same choice always reports the same way.
type DeltaReport struct {
	Day      int    `json:"day"`
	EventID  string `json:"event_id"`
	ChoiceID string `json:"choice_id"`

	Resources     []FieldDelta `json:"resources,omitempty"`
	Relationships []FieldDelta `json:"relationships,omitempty"`
	Regions       []FieldDelta `json:"regions,omitempty"`
	Flags         []FlagDelta  `json:"flags,omitempty"`

	ChainStarted   string `json:"chain_started,omitempty"`
	ChainAdvanced  string `json:"chain_advanced,omitempty"`
	ChainCompleted bool   `json:"chain_completed,omitempty"`

	Travel *event.TravelDirective `json:"travel,omitempty"`
}

// Empty reports whether the choice changed nothing.
func (d *DeltaReport) Empty() bool {
	return len(d.Resources) == 0 &&
		len(d.Relationships) == 0 &&
		len(d.Regions) == 0 &&
		len(d.Flags) == 0 &&
		d.ChainStarted == "" &&
		d.ChainAdvanced == "" &&
		d.Travel == nil
}
