package event

import (
	"fmt"
	"strings"
)

// Placeholder declares one substitutable value in a template. Either
// Options (finite candidate set) or a Min/Max integer range is set,
// never both.
type Placeholder struct {
	Name    string   `yaml:"name" json:"name"`
	Options []string `yaml:"options,omitempty" json:"options,omitempty"`
	Min     int      `yaml:"min,omitempty" json:"min,omitempty"`
	Max     int      `yaml:"max,omitempty" json:"max,omitempty"`
}

// Numeric reports whether the placeholder draws from an integer range.
func (p Placeholder) Numeric() bool {
	return len(p.Options) == 0
}

// Template is a parametrized event skeleton. Title, description and
// choice text may contain {name} placeholder references; instantiation
// resolves each placeholder once and substitutes every occurrence.
type Template struct {
	ID           string        `yaml:"id" json:"id"`
	Title        string        `yaml:"title" json:"title"`
	Description  string        `yaml:"description" json:"description"`
	Requires     Requirement   `yaml:"requires,omitempty" json:"requires,omitempty"`
	Placeholders []Placeholder `yaml:"placeholders" json:"placeholders"`
	Choices      []Choice      `yaml:"choices" json:"choices"`
}

// Token is one piece of a tokenized template string: either literal text
// or a placeholder reference.
type Token struct {
	Text        string
	Placeholder bool
}

// Tokenize splits a template string into literal and placeholder tokens.
// Placeholders are written {name}. The string is parsed exactly once;
// rendering never rescans, so placeholder values containing brace
// characters or other placeholder names cannot corrupt the output.
func Tokenize(s string) ([]Token, error) {
	var tokens []Token
	for len(s) > 0 {
		open := strings.IndexByte(s, '{')
		if open < 0 {
			tokens = append(tokens, Token{Text: s})
			break
		}
		if open > 0 {
			tokens = append(tokens, Token{Text: s[:open]})
		}
		end := strings.IndexByte(s[open:], '}')
		if end < 0 {
			return nil, fmt.Errorf("unterminated placeholder at %q", s[open:])
		}
		name := s[open+1 : open+end]
		if !validPlaceholderName(name) {
			return nil, fmt.Errorf("invalid placeholder name %q", name)
		}
		tokens = append(tokens, Token{Text: name, Placeholder: true})
		s = s[open+end+1:]
	}
	return tokens, nil
}

// Render resolves tokens against a value table built by the instantiator.
func Render(tokens []Token, values map[string]string) (string, error) {
	var b strings.Builder
	for _, tok := range tokens {
		if !tok.Placeholder {
			b.WriteString(tok.Text)
			continue
		}
		v, ok := values[tok.Text]
		if !ok {
			return "", fmt.Errorf("undeclared placeholder %q", tok.Text)
		}
		b.WriteString(v)
	}
	return b.String(), nil
}

func validPlaceholderName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '_' {
			return false
		}
	}
	return true
}

// PlaceholderRefs returns the set of placeholder names referenced by a
// template string, for content validation.
func PlaceholderRefs(s string) (map[string]bool, error) {
	tokens, err := Tokenize(s)
	if err != nil {
		return nil, err
	}
	refs := make(map[string]bool)
	for _, tok := range tokens {
		if tok.Placeholder {
			refs[tok.Text] = true
		}
	}
	return refs, nil
}
