package engine

import (
	"fmt"
	"strconv"

	"github.com/jwebster45206/royal-chronicle/pkg/event"
)

// instantiate turns a template into a concrete one-off event spec. Each
// placeholder is drawn exactly once, in declaration order, and the same
// value is substituted at every occurrence. The instance id embeds the
// day and a session counter so repeated instantiations of one template
// never collide.
func (e *Engine) instantiate(t *event.Template, day int) (*event.Spec, error) {
	values := make(map[string]string, len(t.Placeholders))
	for _, p := range t.Placeholders {
		if p.Numeric() {
			values[p.Name] = strconv.Itoa(p.Min + e.rng.Intn(p.Max-p.Min+1))
			continue
		}
		values[p.Name] = p.Options[e.rng.Intn(len(p.Options))]
	}

	render := func(s string) (string, error) {
		tokens, err := event.Tokenize(s)
		if err != nil {
			return "", fmt.Errorf("template %s: %w", t.ID, err)
		}
		return event.Render(tokens, values)
	}

	title, err := render(t.Title)
	if err != nil {
		return nil, err
	}
	desc, err := render(t.Description)
	if err != nil {
		return nil, err
	}

	choices := make([]event.Choice, len(t.Choices))
	for i, c := range t.Choices {
		text, err := render(c.Text)
		if err != nil {
			return nil, err
		}
		choices[i] = event.Choice{
			ID:       c.ID,
			Text:     text,
			Requires: c.Requires,
			Effects:  c.Effects,
		}
	}

	e.instanceSeq++
	return &event.Spec{
		ID:          fmt.Sprintf("%s#%d#%d", t.ID, day, e.instanceSeq),
		Kind:        event.KindTemplate,
		Title:       title,
		Description: desc,
		Choices:     choices,
	}, nil
}
