// Package classify derives semantic categories and pitch lanes for event rows.
//
// Classification is a pure function of the label text: each category of the
// rule table is evaluated independently against the trimmed, case-folded and
// accent-stripped label, so overlapping categories are preserved.
package classify

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/okian/datastrike/internal/domain/model"
)

// Flags is the set of categories a label belongs to.
type Flags uint16

// Has reports whether c is in the set.
func (f Flags) Has(c Category) bool { return f&(1<<c) != 0 }

// With returns the set including c.
func (f Flags) With(c Category) Flags { return f | 1<<c }

// Categories lists the members in category order.
func (f Flags) Categories() []Category {
	var out []Category
	for c := Category(0); c < numCategories; c++ {
		if f.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

// Option applies a configuration option to the Classifier.
type Option func(*Classifier)

// WithRules replaces the rule table.
func WithRules(rules []Rule) Option {
	return func(c *Classifier) {
		if len(rules) > 0 {
			c.rules = rules
		}
	}
}

// Classifier evaluates a rule table against event labels. It holds no
// mutable state and is safe for concurrent use.
type Classifier struct {
	rules []Rule
}

// New creates a Classifier using DefaultRules unless overridden.
func New(opts ...Option) *Classifier {
	c := &Classifier{rules: DefaultRules}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Label classifies a raw label.
func (c *Classifier) Label(label string) Flags {
	folded := Fold(label)
	if folded == "" {
		return 0
	}
	var f Flags
	for _, r := range c.rules {
		for _, p := range r.Patterns {
			if p.MatchString(folded) {
				f = f.With(r.Category)
				break
			}
		}
	}
	return f
}

// Cell classifies a table cell. Null cells match nothing.
func (c *Classifier) Cell(cell model.Cell) Flags {
	if cell.IsNull() {
		return 0
	}
	return c.Label(cell.String())
}

// Table classifies every row of t using its event column. The returned slice
// is index-aligned with t.Rows.
func (c *Classifier) Table(t *model.Table) ([]Flags, error) {
	col, err := t.EventColumn()
	if err != nil {
		return nil, err
	}
	out := make([]Flags, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = c.Cell(r.Get(col))
	}
	return out, nil
}

// Fold normalizes a label for matching: trimmed, lower-cased, with combining
// marks removed so "Balón aéreo" matches "balon aereo".
func Fold(label string) string {
	s := strings.TrimSpace(label)
	if s == "" {
		return ""
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if out, _, err := transform.String(t, s); err == nil {
		s = out
	}
	return strings.ToLower(s)
}
