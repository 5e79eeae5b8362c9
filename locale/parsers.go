package locale

import (
	"log/slog"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// stringParser is the default slot type: every token is valid.
type stringParser struct{}

func (stringParser) Parse(text string) (any, error) { return text, nil }

func (stringParser) Format(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}

	return s
}

func (stringParser) Describe() string { return "value" }

// intParser parses and formats integers with the locale's digit
// grouping. Format output always round-trips through Parse.
type intParser struct {
	printer *message.Printer
	groups  map[rune]struct{}
}

func newIntParser(tag language.Tag) intParser {
	printer := message.NewPrinter(tag)

	// Learn the locale's grouping runes by formatting a grouped value:
	// whatever is not a digit or sign is a separator Parse must strip.
	groups := make(map[rune]struct{})

	for _, r := range printer.Sprint(number.Decimal(1234567)) {
		if !unicode.IsDigit(r) && r != '-' {
			groups[r] = struct{}{}
		}
	}

	return intParser{printer: printer, groups: groups}
}

func (p intParser) Parse(text string) (any, error) {
	var sb strings.Builder

	for _, r := range text {
		if _, ok := p.groups[r]; ok {
			continue
		}

		sb.WriteRune(r)
	}

	v, err := strconv.ParseInt(sb.String(), 10, 64)
	if err != nil {
		return nil, ErrNotInteger.With(slog.String("value", text))
	}

	return v, nil
}

func (p intParser) Format(v any) string {
	switch n := v.(type) {
	case int64:
		return p.printer.Sprint(number.Decimal(n))
	case int:
		return p.printer.Sprint(number.Decimal(n))
	default:
		return ""
	}
}

func (intParser) Describe() string { return "integer" }

// flagParser maps boolean words to bool.
type flagParser struct{}

func (flagParser) Parse(text string) (any, error) {
	switch strings.ToLower(text) {
	case "true", "yes", "on", "1":
		return true, nil
	case "false", "no", "off", "0":
		return false, nil
	default:
		return nil, ErrNotFlag.With(slog.String("value", text))
	}
}

func (flagParser) Format(v any) string {
	b, ok := v.(bool)
	if !ok {
		return ""
	}

	return strconv.FormatBool(b)
}

func (flagParser) Describe() string { return "flag (true/false)" }

// enumParser restricts a slot to a fixed value set.
type enumParser struct {
	values []string
}

// Enum returns a parser accepting exactly the given values.
func Enum(values ...string) Parser {
	return enumParser{values: values}
}

func (p enumParser) Parse(text string) (any, error) {
	for _, v := range p.values {
		if v == text {
			return v, nil
		}
	}

	return nil, ErrNotEnum.With(
		slog.String("value", text),
		slog.String("allowed", strings.Join(p.values, "|")),
	)
}

func (p enumParser) Format(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}

	return s
}

func (p enumParser) Describe() string {
	return "one of " + strings.Join(p.values, "|")
}
