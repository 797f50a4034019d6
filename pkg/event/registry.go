package event

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jwebster45206/royal-chronicle/pkg/calendar"
	"github.com/jwebster45206/royal-chronicle/pkg/world"
)

// ErrContent marks defects in authored content. Content errors fail
// loudly at load time so they surface in testing, never silently at play.
var ErrContent = fmt.Errorf("content error")

var idPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Registry holds all authored content for a playthrough, loaded from
// YAML files. Slice order is registry order: the scheduler's scan order
// and tie-breaks depend on it.
type Registry struct {
	Historical []*Spec     `yaml:"historical"`
	Triggered  []*Spec     `yaml:"triggered"`
	Random     []*Spec     `yaml:"random"`
	ChainSteps []*Spec     `yaml:"chain_steps"`
	Chains     []*ChainDef `yaml:"chains"`
	Templates  []*Template `yaml:"templates"`

	byID     map[string]*Spec
	chainIDs map[string]*ChainDef
}

// LoadRegistry reads every .yaml/.yml file in dir (sorted by name, so
// load order is reproducible), merges their sections, and validates the
// result. Any content error fails the load.
func LoadRegistry(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read content dir %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if ext == ".yaml" || ext == ".yml" {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no content files in %s", ErrContent, dir)
	}

	reg := &Registry{}
	for _, name := range files {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		var part Registry
		if err := yaml.Unmarshal(data, &part); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
		reg.Historical = append(reg.Historical, part.Historical...)
		reg.Triggered = append(reg.Triggered, part.Triggered...)
		reg.Random = append(reg.Random, part.Random...)
		reg.ChainSteps = append(reg.ChainSteps, part.ChainSteps...)
		reg.Chains = append(reg.Chains, part.Chains...)
		reg.Templates = append(reg.Templates, part.Templates...)
	}

	if err := reg.Init(); err != nil {
		return nil, err
	}
	return reg, nil
}

// Init assigns kinds, builds lookup indexes and validates the content.
// LoadRegistry calls it; tests building registries by hand call it
// directly.
func (r *Registry) Init() error {
	for _, s := range r.Historical {
		s.Kind = KindHistorical
	}
	for _, s := range r.Triggered {
		s.Kind = KindTriggered
	}
	for _, s := range r.Random {
		s.Kind = KindRandom
	}
	for _, s := range r.ChainSteps {
		s.Kind = KindChainStep
	}

	r.byID = make(map[string]*Spec)
	r.chainIDs = make(map[string]*ChainDef)

	v := &validator{}
	for _, s := range r.allSpecs() {
		if _, dup := r.byID[s.ID]; dup {
			v.errorf("duplicate event id %q", s.ID)
			continue
		}
		r.byID[s.ID] = s
	}
	for _, c := range r.Chains {
		if _, dup := r.chainIDs[c.ID]; dup {
			v.errorf("duplicate chain id %q", c.ID)
			continue
		}
		r.chainIDs[c.ID] = c
	}

	r.validate(v)
	return v.result()
}

// Event returns the spec with the given id.
func (r *Registry) Event(id string) (*Spec, bool) {
	s, ok := r.byID[id]
	return s, ok
}

// Chain returns the chain definition with the given id.
func (r *Registry) Chain(id string) (*ChainDef, bool) {
	c, ok := r.chainIDs[id]
	return c, ok
}

func (r *Registry) allSpecs() []*Spec {
	all := make([]*Spec, 0, len(r.Historical)+len(r.Triggered)+len(r.Random)+len(r.ChainSteps))
	all = append(all, r.Historical...)
	all = append(all, r.Triggered...)
	all = append(all, r.Random...)
	all = append(all, r.ChainSteps...)
	return all
}

// validator collects content errors so a single load reports every
// defect at once.
type validator struct {
	errors []string
}

func (v *validator) errorf(format string, args ...any) {
	v.errors = append(v.errors, fmt.Sprintf(format, args...))
}

func (v *validator) result() error {
	if len(v.errors) == 0 {
		return nil
	}
	return fmt.Errorf("%w:\n  %s", ErrContent, strings.Join(v.errors, "\n  "))
}

func (r *Registry) validate(v *validator) {
	for _, s := range r.allSpecs() {
		r.validateSpec(v, s)
	}

	for _, c := range r.Chains {
		if !idPattern.MatchString(c.ID) {
			v.errorf("chain id %q is not lowercase snake_case", c.ID)
		}
		if len(c.Steps) == 0 {
			v.errorf("chain %q has no steps", c.ID)
		}
		for _, step := range c.Steps {
			spec, ok := r.byID[step]
			if !ok {
				v.errorf("chain %q references unknown event %q", c.ID, step)
				continue
			}
			if spec.Kind != KindChainStep {
				v.errorf("chain %q step %q is a %s event, want chain_step", c.ID, step, spec.Kind)
			}
		}
	}

	for _, t := range r.Templates {
		r.validateTemplate(v, t)
	}
}

func (r *Registry) validateSpec(v *validator, s *Spec) {
	if !idPattern.MatchString(s.ID) {
		v.errorf("event id %q is not lowercase snake_case", s.ID)
	}

	if s.Kind == KindHistorical {
		if s.Date == nil {
			v.errorf("historical event %q has no date anchor", s.ID)
		} else if _, err := calendar.New(calendar.EpochYear, s.Date.Month, s.Date.Day); err != nil {
			v.errorf("historical event %q: %v", s.ID, err)
		}
	} else if s.Date != nil {
		v.errorf("%s event %q must not carry a date anchor", s.Kind, s.ID)
	}

	r.validateRequirement(v, s.ID, s.Requires)

	if len(s.Choices) == 0 {
		v.errorf("event %q has no choices", s.ID)
		return
	}
	alwaysEligible := false
	choiceIDs := make(map[string]bool, len(s.Choices))
	for _, c := range s.Choices {
		if !idPattern.MatchString(c.ID) {
			v.errorf("event %q choice id %q is not lowercase snake_case", s.ID, c.ID)
		}
		if choiceIDs[c.ID] {
			v.errorf("event %q has duplicate choice id %q", s.ID, c.ID)
		}
		choiceIDs[c.ID] = true
		if c.Requires.Empty() {
			alwaysEligible = true
		}
		r.validateRequirement(v, s.ID, c.Requires)
		r.validateConsequence(v, s.ID, c.Effects)
	}
	if !alwaysEligible {
		v.errorf("event %q has no always-eligible choice", s.ID)
	}
}

func (r *Registry) validateRequirement(v *validator, owner string, req Requirement) {
	for name := range req.Resources {
		if !world.KnownResource(name) {
			v.errorf("event %q requires unknown resource %q", owner, name)
		}
	}
	if req.Location != "" && !world.KnownLocation(req.Location) {
		v.errorf("event %q requires unknown location %q", owner, req.Location)
	}
}

func (r *Registry) validateConsequence(v *validator, owner string, c Consequence) {
	for name := range c.Resources {
		if !world.KnownResource(name) {
			v.errorf("event %q consequence names unknown resource %q", owner, name)
		}
	}
	for id := range c.Relationships {
		if !world.KnownBaron(id) {
			v.errorf("event %q consequence names unknown baron %q", owner, id)
		}
	}
	for id := range c.Regions {
		if !world.KnownRegion(id) {
			v.errorf("event %q consequence names unknown region %q", owner, id)
		}
	}
	if c.StartChain != "" {
		if _, ok := r.chainIDs[c.StartChain]; !ok {
			v.errorf("event %q starts unknown chain %q", owner, c.StartChain)
		}
	}
	if c.Travel != nil {
		if !world.KnownLocation(c.Travel.Destination) {
			v.errorf("event %q travel names unknown destination %q", owner, c.Travel.Destination)
		}
		if c.Travel.Days < 0 {
			v.errorf("event %q travel has negative days", owner)
		}
	}
}

func (r *Registry) validateTemplate(v *validator, t *Template) {
	if !idPattern.MatchString(t.ID) {
		v.errorf("template id %q is not lowercase snake_case", t.ID)
	}
	if _, dup := r.byID[t.ID]; dup {
		v.errorf("template id %q collides with an event id", t.ID)
	}

	declared := make(map[string]bool, len(t.Placeholders))
	for _, p := range t.Placeholders {
		if !validPlaceholderName(p.Name) {
			v.errorf("template %q placeholder %q has an invalid name", t.ID, p.Name)
			continue
		}
		if declared[p.Name] {
			v.errorf("template %q declares placeholder %q twice", t.ID, p.Name)
		}
		declared[p.Name] = true
		if p.Numeric() {
			if p.Min > p.Max {
				v.errorf("template %q placeholder %q has empty range [%d,%d]", t.ID, p.Name, p.Min, p.Max)
			}
		}
	}

	check := func(field, text string) {
		refs, err := PlaceholderRefs(text)
		if err != nil {
			v.errorf("template %q %s: %v", t.ID, field, err)
			return
		}
		for name := range refs {
			if !declared[name] {
				v.errorf("template %q %s references undeclared placeholder %q", t.ID, field, name)
			}
		}
	}
	check("title", t.Title)
	check("description", t.Description)

	if len(t.Choices) == 0 {
		v.errorf("template %q has no choices", t.ID)
	}
	alwaysEligible := false
	for _, c := range t.Choices {
		if c.Requires.Empty() {
			alwaysEligible = true
		}
		check("choice "+c.ID, c.Text)
		r.validateRequirement(v, t.ID, c.Requires)
		r.validateConsequence(v, t.ID, c.Effects)
	}
	if len(t.Choices) > 0 && !alwaysEligible {
		v.errorf("template %q has no always-eligible choice", t.ID)
	}
	r.validateRequirement(v, t.ID, t.Requires)
}
