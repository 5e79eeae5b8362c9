package spec

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ardnew/clip/option"
)

// testSpec builds a Spec whose diagnostics land in the returned buffer.
func testSpec(t *testing.T, setup func(*Builder), opts ...BuildOption) (*Spec, *bytes.Buffer) {
	t.Helper()

	out := &bytes.Buffer{}

	b := New(append([]BuildOption{WithSink(WriterSink{W: out})}, opts...)...)
	setup(b)

	s, err := b.Build()
	if err != nil {
		t.Fatalf("Build(): %v", err)
	}

	return s, out
}

func TestProcessKeywordsAndSlots(t *testing.T) {
	var sum int64

	s, _ := testSpec(t, func(b *Builder) {
		b.Bind("add <a:int> <b:int>", "", func(a, b int64) {
			sum = a + b
		})
	})

	if status := s.Process([]string{"calc", "add", "2", "3"}); status != 0 {
		t.Fatalf("Process() = %d", status)
	}

	if sum != 5 {
		t.Errorf("sum = %d, want 5", sum)
	}
}

func TestProcessConvertsSlotValues(t *testing.T) {
	var n int

	s, _ := testSpec(t, func(b *Builder) {
		b.Bind("take <n:int>", "", func(v int) { n = v })
	})

	if status := s.Process([]string{"p", "take", "41"}); status != 0 {
		t.Fatalf("Process() = %d", status)
	}

	if n != 41 {
		t.Errorf("n = %d, want 41", n)
	}
}

func TestProcessHandlerStatus(t *testing.T) {
	s, _ := testSpec(t, func(b *Builder) {
		b.Bind("fail", "", func() int { return 7 })
	})

	if status := s.Process([]string{"p", "fail"}); status != 7 {
		t.Errorf("Process() = %d, want 7", status)
	}
}

func TestProcessOptionalSlot(t *testing.T) {
	var name string

	s, _ := testSpec(t, func(b *Builder) {
		b.Bind("greet [<name>]", "", func(n string) { name = n })
	})

	t.Run("present", func(t *testing.T) {
		name = "sentinel"

		if status := s.Process([]string{"p", "greet", "bob"}); status != 0 {
			t.Fatalf("Process() = %d", status)
		}

		if name != "bob" {
			t.Errorf("name = %q, want bob", name)
		}
	})

	t.Run("absent binds zero value", func(t *testing.T) {
		name = "sentinel"

		if status := s.Process([]string{"p", "greet"}); status != 0 {
			t.Fatalf("Process() = %d", status)
		}

		if name != "" {
			t.Errorf("name = %q, want empty", name)
		}
	})
}

func TestProcessRepetition(t *testing.T) {
	var got []int64

	s, _ := testSpec(t, func(b *Builder) {
		b.Bind("sum <n:int>...", "", func(ns []int64) { got = ns })
	})

	t.Run("many", func(t *testing.T) {
		if status := s.Process([]string{"p", "sum", "1", "2", "3"}); status != 0 {
			t.Fatalf("Process() = %d", status)
		}

		if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
			t.Errorf("got = %v", got)
		}
	})

	t.Run("zero occurrences", func(t *testing.T) {
		got = nil

		if status := s.Process([]string{"p", "sum"}); status != 0 {
			t.Fatalf("Process() = %d", status)
		}

		if len(got) != 0 {
			t.Errorf("got = %v, want empty", got)
		}
	})
}

func TestProcessRepetitionBacktracks(t *testing.T) {
	var (
		items []string
		tail  string
	)

	s, _ := testSpec(t, func(b *Builder) {
		b.Bind("cat <item>... <tail>", "", func(is []string, tl string) {
			items, tail = is, tl
		})
	})

	if status := s.Process([]string{"p", "cat", "a", "b", "c"}); status != 0 {
		t.Fatalf("Process() = %d", status)
	}

	if len(items) != 2 || items[0] != "a" || items[1] != "b" {
		t.Errorf("items = %v, want [a b]", items)
	}

	if tail != "c" {
		t.Errorf("tail = %q, want c", tail)
	}
}

func TestProcessAlternation(t *testing.T) {
	var mode string

	s, out := testSpec(t, func(b *Builder) {
		b.Bind("mode (fast | slow)", "", func() {})
		b.Bind("set <m>", "", func(m string) { mode = m })
	})

	t.Run("branches", func(t *testing.T) {
		for _, w := range []string{"fast", "slow"} {
			if status := s.Process([]string{"p", "mode", w}); status != 0 {
				t.Errorf("Process(mode %s) = %d", w, status)
			}
		}
	})

	t.Run("no branch", func(t *testing.T) {
		out.Reset()

		if status := s.Process([]string{"p", "mode", "medium"}); status != statusUsage {
			t.Fatalf("Process() = %d, want %d", status, statusUsage)
		}

		if msg := out.String(); !strings.Contains(msg, `expected "fast", got "medium"`) {
			t.Errorf("diagnostic = %q", msg)
		}
	})

	_ = mode
}

func TestProcessAlternationBindsBranchSlot(t *testing.T) {
	var got string

	s, _ := testSpec(t, func(b *Builder) {
		b.Bind("(go <a>|do <b>)", "", func(x string) { got = x })
	})

	// Branch slots share one parameter ordinal, so either branch binds
	// the handler's single argument.
	for _, tt := range []struct{ kw, val string }{
		{"go", "first"},
		{"do", "second"},
	} {
		got = ""

		if status := s.Process([]string{"p", tt.kw, tt.val}); status != 0 {
			t.Fatalf("Process(%s) = %d", tt.kw, status)
		}

		if got != tt.val {
			t.Errorf("bound %q, want %q", got, tt.val)
		}
	}
}

func TestProcessEmptyPattern(t *testing.T) {
	ran := false

	s, _ := testSpec(t, func(b *Builder) {
		b.Bind("", "", func() { ran = true })
	})

	if status := s.Process([]string{"p"}); status != 0 {
		t.Fatalf("Process() = %d", status)
	}

	if !ran {
		t.Error("handler did not run")
	}
}

func TestProcessCaseInsensitive(t *testing.T) {
	ran := false

	s, _ := testSpec(t, func(b *Builder) {
		b.Bind("add <a:int>", "", func(a int64) { ran = true })
	}, CaseInsensitive())

	if status := s.Process([]string{"p", "Add", "1"}); status != 0 {
		t.Fatalf("Process() = %d", status)
	}

	if !ran {
		t.Error("handler did not run")
	}
}

func TestProcessOptionFlag(t *testing.T) {
	var verbose bool

	s, out := testSpec(t, func(b *Builder) {
		b.Declare(option.New("-v", "--verbose").Raise(&verbose))
		b.Bind("run [--verbose]", "", func() {})
		b.Bind("quiet", "", func() {})
	})

	t.Run("raised", func(t *testing.T) {
		verbose = false

		if status := s.Process([]string{"p", "run", "--verbose"}); status != 0 {
			t.Fatalf("Process() = %d", status)
		}

		if !verbose {
			t.Error("flag not raised")
		}
	})

	t.Run("short form", func(t *testing.T) {
		verbose = false

		if status := s.Process([]string{"p", "-v", "run"}); status != 0 {
			t.Fatalf("Process() = %d", status)
		}

		if !verbose {
			t.Error("flag not raised")
		}
	})

	t.Run("absent", func(t *testing.T) {
		verbose = false

		if status := s.Process([]string{"p", "run"}); status != 0 {
			t.Fatalf("Process() = %d", status)
		}

		if verbose {
			t.Error("flag raised without invocation")
		}
	})

	t.Run("pattern without the option rejects it", func(t *testing.T) {
		verbose = false
		out.Reset()

		if status := s.Process([]string{"p", "quiet", "-v"}); status != statusUsage {
			t.Fatalf("Process() = %d, want %d", status, statusUsage)
		}

		if msg := out.String(); !strings.Contains(msg, `unexpected option "-v"`) {
			t.Errorf("diagnostic = %q", msg)
		}

		if verbose {
			t.Error("rejected invocation must not commit its action")
		}
	})
}

func TestProcessOptionValue(t *testing.T) {
	var (
		out  string
		file string
	)

	s, _ := testSpec(t, func(b *Builder) {
		b.Declare(option.New("--out").Assign(&out, "a.out"))
		b.Bind("build [--out <file>]", "", func(f string) { file = f })
	})

	t.Run("inline", func(t *testing.T) {
		out, file = "", ""

		if status := s.Process([]string{"p", "build", "--out=x.bin"}); status != 0 {
			t.Fatalf("Process() = %d", status)
		}

		if out != "x.bin" || file != "x.bin" {
			t.Errorf("out = %q, file = %q", out, file)
		}
	})

	t.Run("following token", func(t *testing.T) {
		out, file = "", ""

		if status := s.Process([]string{"p", "build", "--out", "y.bin"}); status != 0 {
			t.Fatalf("Process() = %d", status)
		}

		if out != "y.bin" || file != "y.bin" {
			t.Errorf("out = %q, file = %q", out, file)
		}
	})

	t.Run("missing value binds default", func(t *testing.T) {
		out, file = "", ""

		if status := s.Process([]string{"p", "build", "--out"}); status != 0 {
			t.Fatalf("Process() = %d", status)
		}

		if out != "a.out" || file != "a.out" {
			t.Errorf("out = %q, file = %q", out, file)
		}
	})

	t.Run("absent leaves zero value", func(t *testing.T) {
		out, file = "", "sentinel"

		if status := s.Process([]string{"p", "build"}); status != 0 {
			t.Fatalf("Process() = %d", status)
		}

		if out != "" || file != "" {
			t.Errorf("out = %q, file = %q", out, file)
		}
	})
}

func TestProcessOptionValueParseFailure(t *testing.T) {
	var (
		jobs string
		n    int64
	)

	s, out := testSpec(t, func(b *Builder) {
		b.Declare(option.New("--jobs").Assign(&jobs, "1"))
		b.Bind("build [--jobs <n:int>]", "", func(v int64) { n = v })
	})

	jobs, n = "", -1

	if status := s.Process([]string{"p", "build", "--jobs", "abc"}); status != statusUsage {
		t.Fatalf("Process() = %d, want %d", status, statusUsage)
	}

	if msg := out.String(); !strings.Contains(msg, `invalid value "abc" for <n:int>`) {
		t.Errorf("diagnostic = %q", msg)
	}

	if jobs != "" {
		t.Error("rejected invocation must not commit its action")
	}

	if n != -1 {
		t.Error("handler ran on a failed match")
	}
}

func TestProcessArityNoneRejectsInlineValue(t *testing.T) {
	var verbose bool

	s, out := testSpec(t, func(b *Builder) {
		b.Declare(option.New("--verbose").Raise(&verbose))
		b.Bind("run [--verbose]", "", func() {})
	})

	if status := s.Process([]string{"p", "run", "--verbose=yes"}); status != statusUsage {
		t.Fatalf("Process() = %d, want %d", status, statusUsage)
	}

	if msg := out.String(); !strings.Contains(msg, "does not take a value") {
		t.Errorf("diagnostic = %q", msg)
	}
}

func TestProcessForcedPositional(t *testing.T) {
	var (
		verbose bool
		word    string
	)

	s, _ := testSpec(t, func(b *Builder) {
		b.Declare(option.New("--verbose").Raise(&verbose))
		b.Bind("echo <word>", "", func(w string) { word = w })
	})

	if status := s.Process([]string{"p", "echo", "--", "--verbose"}); status != 0 {
		t.Fatalf("Process() = %d", status)
	}

	if word != "--verbose" {
		t.Errorf("word = %q", word)
	}

	if verbose {
		t.Error("forced positional must not invoke the option")
	}
}

func TestProcessUnknownDashTokenIsPositional(t *testing.T) {
	var v string

	s, _ := testSpec(t, func(b *Builder) {
		b.Bind("take <v>", "", func(x string) { v = x })
	})

	if status := s.Process([]string{"p", "take", "-x"}); status != 0 {
		t.Fatalf("Process() = %d", status)
	}

	if v != "-x" {
		t.Errorf("v = %q, want -x", v)
	}
}

func TestProcessHelp(t *testing.T) {
	helpOut := &bytes.Buffer{}

	s, _ := testSpec(t, func(b *Builder) {
		var verbose bool
		b.Declare(option.New("-v", "--verbose").Raise(&verbose).Describe("chatty output"))
		b.Bind("run", "start the thing", func() {})
	}, WithName("p"), WithHelpWriter(helpOut))

	if status := s.Process([]string{"p", "--help"}); status != 0 {
		t.Fatalf("Process() = %d", status)
	}

	text := helpOut.String()

	for _, want := range []string{"usage", "run", "options", "--verbose", "chatty output"} {
		if !strings.Contains(text, want) {
			t.Errorf("help output missing %q:\n%s", want, text)
		}
	}
}

func TestProcessSuggestion(t *testing.T) {
	s, out := testSpec(t, func(b *Builder) {
		b.Bind("status", "", func() {})
	})

	if status := s.Process([]string{"p", "stat"}); status != statusUsage {
		t.Fatalf("Process() = %d, want %d", status, statusUsage)
	}

	if msg := out.String(); !strings.Contains(msg, `did you mean "status"`) {
		t.Errorf("diagnostic = %q", msg)
	}
}

func TestProcessDiagnosticPrefix(t *testing.T) {
	s, out := testSpec(t, func(b *Builder) {
		b.Bind("list", "", func() {})
	})

	if status := s.Process([]string{"/usr/bin/prog", "list", "extra"}); status != statusUsage {
		t.Fatalf("Process() = %d, want %d", status, statusUsage)
	}

	msg := out.String()

	if !strings.HasPrefix(msg, "prog: ") {
		t.Errorf("diagnostic not prefixed with program name: %q", msg)
	}

	if !strings.Contains(msg, `unexpected argument "extra"`) {
		t.Errorf("diagnostic = %q", msg)
	}
}

func TestProcessInvalidSlotValue(t *testing.T) {
	s, out := testSpec(t, func(b *Builder) {
		b.Bind("add <a:int> <b:int>", "", func(a, b int64) {})
	})

	if status := s.Process([]string{"p", "add", "2", "abc"}); status != statusUsage {
		t.Fatalf("Process() = %d, want %d", status, statusUsage)
	}

	msg := out.String()

	if !strings.Contains(msg, `invalid value "abc" for <b:int>`) {
		t.Errorf("diagnostic = %q", msg)
	}

	if !strings.Contains(msg, "not a valid integer") {
		t.Errorf("diagnostic lacks parser reason: %q", msg)
	}
}

func TestProcessDeepestFailureWins(t *testing.T) {
	s, out := testSpec(t, func(b *Builder) {
		b.Bind("remote add <name>", "", func(name string) {})
		b.Bind("local", "", func() {})
	})

	// The first pattern survives two tokens deep; its diagnostic must
	// shadow the first-token failure of the second.
	if status := s.Process([]string{"p", "remote", "destroy"}); status != statusUsage {
		t.Fatalf("Process() = %d, want %d", status, statusUsage)
	}

	if msg := out.String(); !strings.Contains(msg, `expected "add", got "destroy"`) {
		t.Errorf("diagnostic = %q", msg)
	}
}

func TestProcessStagedActions(t *testing.T) {
	var flag bool

	s, out := testSpec(t, func(b *Builder) {
		b.Declare(option.New("-f").Raise(&flag))
		b.Bind("run [-f]", "", func() {})
		b.Bind("run <w>", "", func(w string) {})
	})

	t.Run("winner commits", func(t *testing.T) {
		flag = false

		if status := s.Process([]string{"p", "run", "-f"}); status != 0 {
			t.Fatalf("Process() = %d", status)
		}

		if !flag {
			t.Error("winning pattern must commit its actions")
		}
	})

	t.Run("no winner commits nothing", func(t *testing.T) {
		flag = false
		out.Reset()

		if status := s.Process([]string{"p", "run", "-f", "hello"}); status != statusUsage {
			t.Fatalf("Process() = %d, want %d", status, statusUsage)
		}

		if flag {
			t.Error("no action may run when every candidate fails")
		}
	})
}

func TestProcessDelegation(t *testing.T) {
	var added string

	childOut := &bytes.Buffer{}

	child, err := New(WithSink(WriterSink{W: childOut})).
		Bind("add <name>", "", func(name string) { added = name }).
		Build()
	if err != nil {
		t.Fatalf("Build(child): %v", err)
	}

	parent, parentOut := testSpec(t, func(b *Builder) {
		b.Bind("remote", "", func(rest Args) int {
			return child.ProcessArgs(rest)
		}, Delegate)
		b.Bind("version", "", func() {})
	})

	t.Run("forwards suffix", func(t *testing.T) {
		added = ""

		if status := parent.Process([]string{"git", "remote", "add", "origin"}); status != 0 {
			t.Fatalf("Process() = %d", status)
		}

		if added != "origin" {
			t.Errorf("added = %q, want origin", added)
		}
	})

	t.Run("chained program name", func(t *testing.T) {
		childOut.Reset()

		if status := parent.Process([]string{"git", "remote", "bogus"}); status != statusUsage {
			t.Fatalf("Process() = %d, want %d", status, statusUsage)
		}

		if msg := childOut.String(); !strings.HasPrefix(msg, "git remote: ") {
			t.Errorf("child diagnostic = %q", msg)
		}
	})

	_ = parentOut
}

// TestProcessDelegationDepth chains three command levels and checks
// that both outcomes and diagnostics behave the same at the bottom as
// they do one level down.
func TestProcessDelegationDepth(t *testing.T) {
	var got int

	out := &bytes.Buffer{}

	leaf, err := New(WithSink(WriterSink{W: out})).
		Bind("baz <val:int>", "", func(val int) { got = val }).
		Build()
	if err != nil {
		t.Fatalf("Build(leaf): %v", err)
	}

	mid, err := New(WithSink(WriterSink{W: out})).
		Bind("bar", "", func(rest Args) int {
			return leaf.ProcessArgs(rest)
		}, Delegate).
		Build()
	if err != nil {
		t.Fatalf("Build(mid): %v", err)
	}

	top, err := New(WithSink(WriterSink{W: out})).
		Bind("foo", "", func(rest Args) int {
			return mid.ProcessArgs(rest)
		}, Delegate).
		Build()
	if err != nil {
		t.Fatalf("Build(top): %v", err)
	}

	t.Run("leaf handler runs", func(t *testing.T) {
		got = 0

		if status := top.Process([]string{"prog", "foo", "bar", "baz", "7"}); status != 0 {
			t.Fatalf("Process() = %d", status)
		}

		if got != 7 {
			t.Errorf("val = %d, want 7", got)
		}
	})

	t.Run("leaf failure surfaces", func(t *testing.T) {
		got = 0
		out.Reset()

		status := top.Process([]string{"prog", "foo", "bar", "baz", "7", "8"})
		if status != statusUsage {
			t.Fatalf("Process() = %d, want %d", status, statusUsage)
		}

		if got != 0 {
			t.Error("leaf handler ran on a failed match")
		}

		if msg := out.String(); !strings.HasPrefix(msg, "prog foo bar: ") {
			t.Errorf("diagnostic = %q", msg)
		}
	})
}

func TestProcessDelegatePrefersLongerMatch(t *testing.T) {
	var (
		exact     string
		delegated []string
	)

	s, _ := testSpec(t, func(b *Builder) {
		b.Bind("remote", "", func(rest Args) {
			delegated = rest.Tokens()
		}, Delegate)
		b.Bind("remote add <name>", "", func(name string) { exact = name })
	})

	t.Run("exact wins on score", func(t *testing.T) {
		exact, delegated = "", nil

		if status := s.Process([]string{"p", "remote", "add", "origin"}); status != 0 {
			t.Fatalf("Process() = %d", status)
		}

		if exact != "origin" {
			t.Errorf("exact = %q, want origin", exact)
		}

		if delegated != nil {
			t.Errorf("delegate ran: %v", delegated)
		}
	})

	t.Run("delegate takes the rest", func(t *testing.T) {
		exact, delegated = "", nil

		if status := s.Process([]string{"p", "remote", "prune", "origin"}); status != 0 {
			t.Fatalf("Process() = %d", status)
		}

		if len(delegated) != 2 || delegated[0] != "prune" {
			t.Errorf("delegated = %v", delegated)
		}
	})
}

func TestProcessAmbiguousInput(t *testing.T) {
	s, out := testSpec(t, func(b *Builder) {
		b.Bind("run", "", func(rest Args) {}, Delegate)
		b.Bind("run", "", func(rest Args) {}, Delegate)
	})

	if status := s.Process([]string{"p", "run"}); status != statusUsage {
		t.Fatalf("Process() = %d, want %d", status, statusUsage)
	}

	if msg := out.String(); !strings.Contains(msg, "more than one pattern") {
		t.Errorf("diagnostic = %q", msg)
	}
}

func TestProcessTieBreaksByDeclarationOrder(t *testing.T) {
	first, second := false, false

	s, _ := testSpec(t, func(b *Builder) {
		b.Bind("run", "", func(rest Args) { first = true }, Delegate)
		b.Bind("run", "", func(rest Args) { second = true }, Delegate)
	}, AllowAmbiguous())

	if status := s.Process([]string{"p", "run"}); status != 0 {
		t.Fatalf("Process() = %d", status)
	}

	if !first || second {
		t.Errorf("first = %v, second = %v", first, second)
	}
}

func TestProcessIdempotent(t *testing.T) {
	var got []int64

	s, _ := testSpec(t, func(b *Builder) {
		b.Bind("sum <n:int>...", "", func(ns []int64) { got = ns })
	})

	for i := 0; i < 2; i++ {
		got = nil

		if status := s.Process([]string{"p", "sum", "1", "2"}); status != 0 {
			t.Fatalf("Process() #%d = %d", i, status)
		}

		if len(got) != 2 {
			t.Fatalf("Process() #%d bound %v", i, got)
		}
	}
}

func TestProcessRepeatedOption(t *testing.T) {
	var defs []string

	s, _ := testSpec(t, func(b *Builder) {
		b.Declare(option.New("-D").Exec(func(arg string) error {
			defs = append(defs, arg)

			return nil
		}, ""))
		b.Bind("build [-D <def>]...", "", func(ds []string) {})
	})

	if status := s.Process([]string{"p", "build", "-D", "a", "-D", "b"}); status != 0 {
		t.Fatalf("Process() = %d", status)
	}

	if len(defs) != 2 || defs[0] != "a" || defs[1] != "b" {
		t.Errorf("defs = %v, want [a b]", defs)
	}
}
