// Package engine drives the day loop: it picks the event for each day,
// applies the consequences of the player's choice, advances chains and
// the calendar, and reports everything it changed. The engine itself is
// stateless between calls; all mutable state lives in world.State.
package engine

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/jwebster45206/royal-chronicle/pkg/calendar"
	"github.com/jwebster45206/royal-chronicle/pkg/event"
	"github.com/jwebster45206/royal-chronicle/pkg/world"
)

var (
	// ErrUnknownEvent means the spec is not in the registry and is not a
	// template instance issued this session.
	ErrUnknownEvent = fmt.Errorf("unknown event")
	// ErrUnknownChoice means the choice id is not on the event.
	ErrUnknownChoice = fmt.Errorf("unknown choice")
	// ErrChoiceIneligible means the choice exists but its requirement
	// does not hold in the current world state.
	ErrChoiceIneligible = fmt.Errorf("choice not eligible")
)

// Config tunes the day loop. Negative chances and a non-positive
// BankruptcyDays are replaced by defaults; a chance of exactly zero
// is honored and disables that pool.
type Config struct {
	// RandomEventChance is the daily probability of drawing from the
	// random pool when no scheduled event claims the day.
	RandomEventChance float64
	// TemplateEventChance is the daily probability of instantiating a
	// template when neither a scheduled nor a random event fired.
	TemplateEventChance float64
	// BankruptcyDays is how many consecutive days the treasury may stay
	// negative before the reign ends.
	BankruptcyDays int
}

// DefaultConfig returns the standard tuning.
func DefaultConfig() Config {
	return Config{
		RandomEventChance:   0.20,
		TemplateEventChance: 0.50,
		BankruptcyDays:      30,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.RandomEventChance < 0 {
		c.RandomEventChance = def.RandomEventChance
	}
	if c.TemplateEventChance < 0 {
		c.TemplateEventChance = def.TemplateEventChance
	}
	if c.BankruptcyDays <= 0 {
		c.BankruptcyDays = def.BankruptcyDays
	}
	return c
}

// Engine selects and resolves events against a content registry.
type Engine struct {
	reg *event.Registry
	cfg Config
	rng Rand
	log *slog.Logger

	// instances holds template-instantiated specs issued this session,
	// keyed by instance id, so ApplyChoice can resolve them.
	instances   map[string]*event.Spec
	instanceSeq int
}

// New creates an engine over loaded content.
func New(reg *event.Registry, cfg Config, rng Rand, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		reg:       reg,
		cfg:       cfg.withDefaults(),
		rng:       rng,
		log:       log,
		instances: make(map[string]*event.Spec),
	}
}

// SelectEventForDay picks at most one event for the current day.
// Precedence: the oldest active chain whose current step is eligible,
// then a historical event anchored to today's date, then the first
// eligible triggered event, then a roll against the random pool, then
// a roll against the templates. A nil spec with nil error means a
// quiet day.
//
// A chain step whose requirement does not hold is skipped for the day,
// not forced; the chain waits at its cursor until the step is eligible.
// A triggered event is consumed on selection: it will not be offered
// again even if the player's choice leaves its condition true.
func (e *Engine) SelectEventForDay(st *world.State) (*event.Spec, error) {
	for _, ch := range st.ActiveChains {
		step, ok := ch.CurrentStep()
		if !ok {
			continue
		}
		spec, ok := e.reg.Event(step)
		if !ok {
			return nil, fmt.Errorf("%w: chain %s step %s", ErrUnknownEvent, ch.ChainID, step)
		}
		if !spec.Requires.Satisfied(st) {
			continue
		}
		e.log.Debug("selected chain step", "day", st.Day, "chain", ch.ChainID, "event", spec.ID)
		return spec, nil
	}

	today := calendar.FromDayNumber(st.Day)
	for _, spec := range e.reg.Historical {
		if spec.Date.Month != today.Month || spec.Date.Day != today.Day {
			continue
		}
		if !spec.Requires.Satisfied(st) {
			continue
		}
		e.log.Debug("selected historical event", "day", st.Day, "event", spec.ID)
		return spec, nil
	}

	for _, spec := range e.reg.Triggered {
		if st.Triggered(spec.ID) {
			continue
		}
		if !spec.Requires.Satisfied(st) {
			continue
		}
		st.MarkTriggered(spec.ID)
		e.log.Debug("selected triggered event", "day", st.Day, "event", spec.ID)
		return spec, nil
	}

	if e.rng.Float64() < e.cfg.RandomEventChance {
		if spec := e.drawRandom(st); spec != nil {
			e.log.Debug("selected random event", "day", st.Day, "event", spec.ID)
			return spec, nil
		}
	}

	if e.rng.Float64() < e.cfg.TemplateEventChance {
		spec, err := e.drawTemplate(st)
		if err != nil {
			return nil, err
		}
		if spec != nil {
			e.log.Debug("selected template event", "day", st.Day, "event", spec.ID)
			return spec, nil
		}
	}

	return nil, nil
}

func (e *Engine) drawRandom(st *world.State) *event.Spec {
	var eligible []*event.Spec
	for _, spec := range e.reg.Random {
		if spec.Requires.Satisfied(st) {
			eligible = append(eligible, spec)
		}
	}
	if len(eligible) == 0 {
		return nil
	}
	return eligible[e.rng.Intn(len(eligible))]
}

func (e *Engine) drawTemplate(st *world.State) (*event.Spec, error) {
	var eligible []*event.Template
	for _, t := range e.reg.Templates {
		if t.Requires.Satisfied(st) {
			eligible = append(eligible, t)
		}
	}
	if len(eligible) == 0 {
		return nil, nil
	}
	t := eligible[e.rng.Intn(len(eligible))]
	spec, err := e.instantiate(t, st.Day)
	if err != nil {
		return nil, err
	}
	e.instances[spec.ID] = spec
	return spec, nil
}

// resolve finds a spec by id in the registry or among template
// instances issued this session.
func (e *Engine) resolve(id string) (*event.Spec, bool) {
	if spec, ok := e.reg.Event(id); ok {
		return spec, true
	}
	spec, ok := e.instances[id]
	return spec, ok
}

// ListEligibleChoices filters an event's choices down to those whose
// requirements hold. Content validation guarantees at least one.
func (e *Engine) ListEligibleChoices(spec *event.Spec, st *world.State) []event.Choice {
	eligible := make([]event.Choice, 0, len(spec.Choices))
	for _, c := range spec.Choices {
		if c.Requires.Satisfied(st) {
			eligible = append(eligible, c)
		}
	}
	return eligible
}

// ApplyChoice resolves the named choice on the event: applies its
// consequences, appends a history record, and advances any active chain
// whose current step is this event. Either every change lands or, on an
// eligibility error, none do.
func (e *Engine) ApplyChoice(st *world.State, eventID, choiceID string) (*DeltaReport, error) {
	spec, ok := e.resolve(eventID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEvent, eventID)
	}

	var choice *event.Choice
	for i := range spec.Choices {
		if spec.Choices[i].ID == choiceID {
			choice = &spec.Choices[i]
			break
		}
	}
	if choice == nil {
		return nil, fmt.Errorf("%w: %s on event %s", ErrUnknownChoice, choiceID, eventID)
	}
	if !choice.Requires.Satisfied(st) {
		return nil, fmt.Errorf("%w: %s on event %s", ErrChoiceIneligible, choiceID, eventID)
	}

	report := &DeltaReport{
		Day:      st.Day,
		EventID:  eventID,
		ChoiceID: choiceID,
	}
	if err := e.applyConsequence(st, choice.Effects, report); err != nil {
		return nil, err
	}

	e.advanceChains(st, spec, report)

	st.AppendHistory(world.EventRecord{
		Day:      st.Day,
		Location: st.Location,
		EventID:  eventID,
		ChoiceID: choiceID,
		Summary:  spec.Title,
	})

	e.log.Info("choice applied",
		"day", st.Day,
		"event", eventID,
		"choice", choiceID,
		"treasury", st.Treasury,
		"authority", st.Authority)
	return report, nil
}

// applyConsequence walks the consequence sections in a fixed order,
// sorted by key inside each section so the report is deterministic.
// Content validation rejects unknown ids at load time; hitting one here
// is a content defect and aborts the apply.
func (e *Engine) applyConsequence(st *world.State, c event.Consequence, report *DeltaReport) error {
	for _, name := range sortedKeys(c.Resources) {
		old, now, err := st.AdjustResource(world.Resource(name), c.Resources[name])
		if err != nil {
			return fmt.Errorf("applying resource change: %w", err)
		}
		report.Resources = append(report.Resources, FieldDelta{
			Field:   name,
			Old:     old,
			New:     now,
			Clamped: c.Resources[name] - (now - old),
		})
	}

	for _, id := range sortedKeys(c.Relationships) {
		old, now, err := st.AdjustBaron(id, c.Relationships[id])
		if err != nil {
			return fmt.Errorf("applying loyalty change: %w", err)
		}
		report.Relationships = append(report.Relationships, FieldDelta{
			Field:   id,
			Old:     old,
			New:     now,
			Clamped: c.Relationships[id] - (now - old),
		})
	}

	for _, id := range sortedKeys(c.Regions) {
		old, now, err := st.AdjustRegion(id, c.Regions[id])
		if err != nil {
			return fmt.Errorf("applying region change: %w", err)
		}
		report.Regions = append(report.Regions, FieldDelta{
			Field:   id,
			Old:     old,
			New:     now,
			Clamped: c.Regions[id] - (now - old),
		})
	}

	for _, name := range sortedKeys(c.Flags) {
		old := st.SetFlag(name, c.Flags[name])
		report.Flags = append(report.Flags, FlagDelta{
			Name: name,
			Old:  old,
			New:  c.Flags[name],
		})
	}

	if c.StartChain != "" {
		def, ok := e.reg.Chain(c.StartChain)
		if !ok {
			return fmt.Errorf("%w: chain %s", ErrUnknownEvent, c.StartChain)
		}
		if _, err := st.StartChain(def.ID, def.Steps); err != nil {
			return fmt.Errorf("starting chain %s: %w", def.ID, err)
		}
		report.ChainStarted = def.ID
	}

	if c.Travel != nil {
		days := c.Travel.Days
		if days == 0 {
			days = world.TravelDays(st.Location, c.Travel.Destination)
		}
		if err := st.StartTravel(c.Travel.Destination, days); err != nil {
			return fmt.Errorf("starting travel: %w", err)
		}
		report.Travel = &event.TravelDirective{
			Destination: c.Travel.Destination,
			Days:        days,
		}
	}

	return nil
}

// advanceChains moves forward every active chain whose current step is
// the event just resolved.
func (e *Engine) advanceChains(st *world.State, spec *event.Spec, report *DeltaReport) {
	for _, ch := range st.ActiveChains {
		step, ok := ch.CurrentStep()
		if !ok || step != spec.ID {
			continue
		}
		ch.Advance()
		report.ChainAdvanced = ch.ChainID
		if ch.Complete() {
			report.ChainCompleted = true
			e.log.Info("chain completed", "day", st.Day, "chain", ch.ChainID)
		}
	}
	st.PruneCompletedChains()
}

// AdvanceDay moves the world to the next morning.
func (e *Engine) AdvanceDay(st *world.State) {
	st.AdvanceDay()
}

// CheckTerminal reports whether the reign has ended.
func (e *Engine) CheckTerminal(st *world.State) (bool, world.EndReason) {
	return st.CheckTerminal(e.cfg.BankruptcyDays)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
