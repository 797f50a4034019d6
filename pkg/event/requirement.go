package event

import "github.com/jwebster45206/royal-chronicle/pkg/world"

// WorldView is the minimal read-only view of world state needed to
// evaluate a requirement. pkg/world.State satisfies it; tests supply
// lightweight fakes.
type WorldView interface {
	CurrentDay() int
	CurrentLocation() string
	ResourceValue(name string) (int, bool)
	Flag(name string) (world.FlagValue, bool)
}

// Requirement is an eligibility precondition. Categories combine with
// logical AND; there is no OR or negation. "Either/or" eligibility is
// authored as two separate choices. An empty requirement is vacuously
// satisfied.
type Requirement struct {
	// Resources maps resource ids to minimum values (inclusive floor).
	Resources map[string]int `yaml:"resources,omitempty" json:"resources,omitempty"`
	// Flags maps flag names to required values, compared by value.
	// An unset flag compares as its default (false/null).
	Flags map[string]world.FlagValue `yaml:"flags,omitempty" json:"flags,omitempty"`
	// DateAfter requires the current day to be strictly greater.
	DateAfter *int `yaml:"date_after,omitempty" json:"date_after,omitempty"`
	// Location requires the king to be at this exact location.
	Location string `yaml:"location,omitempty" json:"location,omitempty"`
}

// Empty reports whether the requirement has no conditions.
func (r Requirement) Empty() bool {
	return len(r.Resources) == 0 && len(r.Flags) == 0 && r.DateAfter == nil && r.Location == ""
}

// Satisfied evaluates the requirement against a world view. A resource
// name the state does not recognize never satisfies; content validation
// rejects such specs before play.
func (r Requirement) Satisfied(v WorldView) bool {
	for name, floor := range r.Resources {
		val, ok := v.ResourceValue(name)
		if !ok || val < floor {
			return false
		}
	}

	for name, required := range r.Flags {
		stored, ok := v.Flag(name)
		if !ok {
			stored = world.NullFlag()
		}
		if !stored.Matches(required) {
			return false
		}
	}

	if r.DateAfter != nil && v.CurrentDay() <= *r.DateAfter {
		return false
	}

	if r.Location != "" && v.CurrentLocation() != r.Location {
		return false
	}

	return true
}
