package cli

import (
	"io"
	"strings"

	"github.com/ardnew/clip/log"
	"github.com/ardnew/clip/option"
	"github.com/ardnew/clip/spec"
)

// logConfig carries the logger flags shared by every command.
type logConfig struct {
	level  log.Level
	format log.Format
	set    bool
}

// scan pre-reads the logger flags from raw arguments so the logger is
// configured before any Spec is built, regardless of flag position.
// The same flags are declared as ordinary options for help rendering
// and validation.
func (c *logConfig) scan(args []string) {
	c.level = log.DefaultLevel
	c.format = log.DefaultFormat

	take := func(i int, name string) (string, bool) {
		arg := args[i]

		if v, ok := strings.CutPrefix(arg, name+"="); ok {
			return v, true
		}

		if arg == name && i+1 < len(args) {
			return args[i+1], true
		}

		return "", false
	}

	for i := range args {
		if v, ok := take(i, "--log-level"); ok {
			c.level = log.ParseLevel(v)
			c.set = true
		}

		if v, ok := take(i, "--log-format"); ok {
			c.format = log.ParseFormat(v)
		}
	}
}

// declare registers the logger options. Their actions re-apply what
// scan already found, which keeps commit-time state consistent when a
// Spec other than ours parses the flags.
func (c *logConfig) declare(b *spec.Builder) {
	b.Declare(option.New("--log-level").
		Exec(func(arg string) error {
			c.level = log.ParseLevel(arg)
			c.set = true

			return nil
		}, log.DefaultLevel.String()).
		Describe("minimum log level (trace, debug, info, warn, error)"))

	b.Declare(option.New("--log-format").
		Exec(func(arg string) error {
			c.format = log.ParseFormat(arg)

			return nil
		}, log.DefaultFormat.String()).
		Describe("log output format (text, json)"))
}

// logger builds a Logger from the scanned flags. Without an explicit
// level the zero Logger is returned, keeping engine tracing silent.
func (c *logConfig) logger(w io.Writer) log.Logger {
	if !c.set {
		return log.Logger{}
	}

	return log.Make(w,
		log.WithLevel(c.level),
		log.WithFormat(c.format),
	)
}

// globalOpts is the option suffix every command pattern carries.
const globalOpts = " [--log-level] [--log-format] [--pprof-mode] [--pprof-dir]"
