package help

import (
	"strings"
	"testing"
)

func TestRenderSections(t *testing.T) {
	page := Page{
		Name:    "tool",
		Summary: "does things",
		Patterns: []Entry{
			{Term: "run <task>", Desc: "start a task"},
			{Term: "status", Desc: "show progress"},
		},
		Options: []Entry{
			{Term: "-v, --verbose", Desc: "chatty output"},
		},
	}

	text := Render(page, nil)

	for _, want := range []string{
		"tool - does things",
		"usage",
		"run <task>",
		"show progress",
		"options",
		"-v, --verbose",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
}

func TestRenderEmptyPage(t *testing.T) {
	if got := Render(Page{}, nil); got != "" {
		t.Errorf("Render(zero) = %q", got)
	}
}

func TestRenderAlignsDescriptions(t *testing.T) {
	page := Page{
		Options: []Entry{
			{Term: "-v", Desc: "first"},
			{Term: "--very-long-name", Desc: "second"},
		},
	}

	var cols []int

	for _, line := range strings.Split(Render(page, nil), "\n") {
		for _, d := range []string{"first", "second"} {
			if i := strings.Index(line, d); i >= 0 {
				cols = append(cols, i)
			}
		}
	}

	if len(cols) != 2 || cols[0] != cols[1] {
		t.Errorf("description columns = %v", cols)
	}
}

func TestWrap(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		width  int
		indent int
		want   string
	}{
		{
			// A continuation line may land exactly on the width.
			name: "greedy fill",
			text: "one two three four", width: 14, indent: 4,
			want: "one two\n    three four",
		},
		{
			name: "break past the width",
			text: "one two three fours", width: 14, indent: 4,
			want: "one two\n    three\n    fours",
		},
		{
			name: "long word stands alone",
			text: "abcdefghijklmnop", width: 10, indent: 2,
			want: "abcdefghijklmnop",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := wrap(tt.text, tt.width, tt.indent); got != tt.want {
				t.Errorf("wrap = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrapDisabled(t *testing.T) {
	text := "never wrapped regardless of length"

	if got := wrap(text, 0, 2); got != text {
		t.Errorf("wrap = %q", got)
	}
}
