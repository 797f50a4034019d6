// Package event defines the authored content model: event specs, choices,
// requirement and consequence specs, templates, and the registry that
// loads and validates content files. Everything here is immutable once
// loaded; runtime state lives in pkg/world.
package event

import "github.com/jwebster45206/royal-chronicle/pkg/world"

// Kind classifies how an event enters the schedule.
type Kind string

const (
	KindHistorical Kind = "historical" // anchored to a fixed calendar date
	KindTriggered  Kind = "triggered"  // fires once, the first day its requirement holds
	KindRandom     Kind = "random"     // drawn from the daily random pool
	KindTemplate   Kind = "template"   // instantiated from a parametrized skeleton
	KindChainStep  Kind = "chain_step" // one step of a multi-day chain
)

// Anchor is a fixed month/day in the chronicle year.
type Anchor struct {
	Month int `yaml:"month" json:"month"`
	Day   int `yaml:"day" json:"day"`
}

// Spec is one authored event. Specs are content, never mutated at runtime.
type Spec struct {
	ID          string      `yaml:"id" json:"id"`
	Kind        Kind        `yaml:"-" json:"kind"`
	Title       string      `yaml:"title" json:"title"`
	Description string      `yaml:"description" json:"description"`
	Date        *Anchor     `yaml:"date,omitempty" json:"date,omitempty"` // historical only
	Requires    Requirement `yaml:"requires,omitempty" json:"requires,omitempty"`
	Choices     []Choice    `yaml:"choices" json:"choices"`
}

// Choice is one response the player may pick. An empty requirement means
// the choice is always eligible.
type Choice struct {
	ID       string      `yaml:"id" json:"id"`
	Text     string      `yaml:"text" json:"text"`
	Requires Requirement `yaml:"requires,omitempty" json:"requires,omitempty"`
	Effects  Consequence `yaml:"effects,omitempty" json:"effects,omitempty"`
}

// TravelDirective sends the king on a journey as part of a consequence.
// Days of zero means "use the charted travel time".
type TravelDirective struct {
	Destination string `yaml:"destination" json:"destination"`
	Days        int    `yaml:"days,omitempty" json:"days,omitempty"`
}

// Consequence describes how a choice mutates world state. Sections are
// independent and all optional.
type Consequence struct {
	Resources     map[string]int             `yaml:"resources,omitempty" json:"resources,omitempty"`
	Relationships map[string]int             `yaml:"relationships,omitempty" json:"relationships,omitempty"`
	Regions       map[string]int             `yaml:"regions,omitempty" json:"regions,omitempty"`
	Flags         map[string]world.FlagValue `yaml:"flags,omitempty" json:"flags,omitempty"`
	StartChain    string                     `yaml:"start_chain,omitempty" json:"start_chain,omitempty"`
	Travel        *TravelDirective           `yaml:"travel,omitempty" json:"travel,omitempty"`
}

// Empty reports whether the consequence changes nothing.
func (c Consequence) Empty() bool {
	return len(c.Resources) == 0 &&
		len(c.Relationships) == 0 &&
		len(c.Regions) == 0 &&
		len(c.Flags) == 0 &&
		c.StartChain == "" &&
		c.Travel == nil
}

// ChainDef is the authored shape of a multi-day arc: an ordered list of
// chain-step event ids.
type ChainDef struct {
	ID    string   `yaml:"id" json:"id"`
	Steps []string `yaml:"steps" json:"steps"`
}
