package cli

import (
	"github.com/ardnew/clip/option"
	"github.com/ardnew/clip/profile"
	"github.com/ardnew/clip/spec"
)

// pprofConfig carries the profiler flags. Profiling is a no-op unless
// the binary was built with the pprof tag.
type pprofConfig struct {
	mode string
	dir  string
}

func (c *pprofConfig) declare(b *spec.Builder) {
	b.Declare(option.New("--pprof-mode").
		Exec(func(arg string) error {
			c.mode = arg

			return nil
		}, "").
		Describe("profiling mode (requires a build with the pprof tag)"))

	b.Declare(option.New("--pprof-dir").
		Exec(func(arg string) error {
			c.dir = arg

			return nil
		}, "").
		Describe("directory profiling data is written to"))
}

// start launches the configured profiler and returns its stop function.
func (c *pprofConfig) start() func() {
	cfg := profile.Config(func() (string, string, bool) {
		return "", "", false
	})

	for _, opt := range []func(profile.Config) profile.Config{
		profile.WithMode(c.mode),
		profile.WithPath(c.dir),
		profile.WithQuiet(true),
	} {
		cfg = opt(cfg)
	}

	return cfg.Start().Stop
}
