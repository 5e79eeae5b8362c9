package spec

import (
	"io"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/clip/option"
	"github.com/ardnew/clip/pkg"
)

// ErrManifest wraps YAML decoding failures of a manifest document.
var ErrManifest = pkg.NewError("cannot decode manifest")

// Manifest is the YAML document form of a pattern set: declarations
// only, no behavior. Handlers are attached in code, keyed by pattern
// text, when the manifest is turned into a Builder.
//
//	name: calc
//	summary: desk calculator
//	options:
//	  - names: [-v, --verbose]
//	    help: chatty output
//	  - names: [--precision]
//	    value: true
//	    help: digits after the point
//	patterns:
//	  - pattern: add <a:int> <b:int>
//	    description: add two integers
type Manifest struct {
	Name     string            `yaml:"name"`
	Summary  string            `yaml:"summary"`
	Options  []ManifestOption  `yaml:"options"`
	Patterns []ManifestPattern `yaml:"patterns"`
}

// ManifestOption declares one option. Value selects arity One.
type ManifestOption struct {
	Names []string `yaml:"names"`
	Value bool     `yaml:"value"`
	Help  string   `yaml:"help"`
}

// ManifestPattern declares one pattern.
type ManifestPattern struct {
	Pattern     string `yaml:"pattern"`
	Description string `yaml:"description"`
	Delegate    bool   `yaml:"delegate"`
}

// LoadManifest decodes a manifest document.
func LoadManifest(r io.Reader) (*Manifest, error) {
	m := &Manifest{}

	if err := yaml.NewDecoder(r).Decode(m); err != nil {
		return nil, ErrManifest.Wrap(err)
	}

	return m, nil
}

// Builder seeds a Builder from the manifest. handlers maps pattern text
// to the bound function; patterns without an entry are bound without a
// handler and dispatch as no-ops, which suits validation tooling.
func (m *Manifest) Builder(handlers map[string]any, opts ...BuildOption) *Builder {
	all := make([]BuildOption, 0, len(opts)+2)
	all = append(all, WithName(m.Name), WithSummary(m.Summary))
	all = append(all, opts...)

	b := New(all...)

	for _, o := range m.Options {
		d := option.New(o.Names...).Describe(o.Help)
		if o.Value {
			d.Arity = option.One
		}

		b.Declare(d)
	}

	for _, p := range m.Patterns {
		var attrs []Attr
		if p.Delegate {
			attrs = append(attrs, Delegate)
		}

		b.Bind(p.Pattern, p.Description, handlers[p.Pattern], attrs...)
	}

	return b
}
