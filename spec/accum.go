package spec

import (
	"fmt"

	"github.com/sahilm/fuzzy"
)

// failures accumulates candidate-match diagnostics while every pattern
// is tried, keeping only the most specific one: the failure at the
// greatest argv position. Ties keep the earliest-declared pattern's
// diagnostic.
//
// One failures value lives for one engine call.
type failures struct {
	has     bool
	pos     int
	pattern int
	msg     string
	got     string
}

// record offers one failure. pos is the argv index the candidate parse
// reached; got is the offending token when one exists, used for
// suggestion lookup.
func (f *failures) record(pattern, pos int, msg string) {
	f.recordToken(pattern, pos, msg, "")
}

func (f *failures) recordToken(pattern, pos int, msg, got string) {
	if f.has && pos <= f.pos {
		return
	}

	f.has = true
	f.pos = pos
	f.pattern = pattern
	f.msg = msg
	f.got = got
}

// compose renders the retained diagnostic, appending a "did you mean"
// hint when the offending token closely resembles a declared keyword.
func (s *Spec) compose(f *failures) string {
	if !f.has {
		return ErrNoMatch.Error()
	}

	msg := f.msg

	if f.got != "" {
		if hint, ok := s.suggest(f.got); ok {
			msg = fmt.Sprintf("%s (did you mean %q?)", msg, hint)
		}
	}

	return msg
}

// suggest fuzzy-ranks got against every keyword of every pattern and
// returns the best candidate, rejecting matches too weak to be helpful.
func (s *Spec) suggest(got string) (string, bool) {
	ranked := fuzzy.Find(got, s.Keywords())
	if len(ranked) == 0 {
		return "", false
	}

	best := ranked[0]
	if best.Str == got {
		return "", false
	}

	// Require at least half the token's runes to participate in the
	// match, so wildly different words do not produce silly hints.
	if len(best.MatchedIndexes)*2 < len(got) {
		return "", false
	}

	return best.Str, true
}
