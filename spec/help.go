package spec

import (
	"strings"

	"github.com/ardnew/clip/help"
	"github.com/ardnew/clip/option"
)

// usageWidth is the wrap width for option and pattern descriptions.
const usageWidth = 80

// usageText assembles the help page from the compiled patterns and the
// option registry.
func (s *Spec) usageText(name string) string {
	page := help.Page{
		Name:    name,
		Summary: s.summary,
		Width:   usageWidth,
	}

	for _, p := range s.patterns {
		page.Patterns = append(page.Patterns, help.Entry{
			Term: p.text,
			Desc: p.desc,
		})
	}

	for i := 0; i < s.registry.Len(); i++ {
		d := s.registry.Decl(i)

		term := strings.Join(d.Names, ", ")
		if d.Arity == option.One {
			term += " <value>"
		}

		page.Options = append(page.Options, help.Entry{
			Term: term,
			Desc: d.Help,
		})
	}

	return help.Render(page, s.loc.Widen)
}
