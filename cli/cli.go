// Package cli implements the clip playground binary: commands for
// validating pattern manifests, dispatching trial argument vectors
// against them, and exploring them interactively.
//
// The binary's own command line is dispatched by the library it ships
// with.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/ardnew/clip/pkg"
	"github.com/ardnew/clip/spec"
)

// Run executes the clip CLI against a full argument vector, argv[0]
// included, and returns the process exit status.
func Run(ctx context.Context, argv []string) int {
	c := &CLI{
		ctx:    ctx,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}

	// Logger flags must take effect before the dispatching Spec is
	// built, so they are scanned ahead of ordinary option handling.
	c.log.scan(argv[1:])

	s, err := c.spec()
	if err != nil {
		// Defects in our own declarations, not user input.
		fmt.Fprintf(c.stderr, "%s: %v\n", pkg.Name, err)

		return 1
	}

	return s.Process(argv)
}

// CLI carries the state shared by every command: configured streams,
// the logger, and the profiler hook.
type CLI struct {
	ctx    context.Context
	stdout io.Writer
	stderr io.Writer

	log   logConfig
	pprof pprofConfig
}

// spec assembles the binary's own command-line specification.
func (c *CLI) spec() (*spec.Spec, error) {
	b := spec.New(
		spec.WithName(pkg.Name),
		spec.WithSummary(pkg.Description),
		spec.WithLogger(c.log.logger(c.stderr)),
		spec.WithSink(spec.WriterSink{W: c.stderr}),
		spec.WithHelpWriter(c.stdout),
	)

	c.log.declare(b)
	c.pprof.declare(b)

	b.Bind("version", "print the release version", c.version)
	b.Bind("check <manifest>"+globalOpts,
		"compile a manifest and report defects", c.check)
	b.Bind("try <manifest> <arg>..."+globalOpts,
		"dispatch arguments against a manifest", c.try)
	b.Bind("repl <manifest>"+globalOpts,
		"explore a manifest interactively", c.repl)

	return b.Build()
}

func (c *CLI) version() {
	fmt.Fprintf(c.stdout, "%s %s\n", pkg.Name, pkg.Version)
}

// loadManifest reads and decodes one manifest file.
func (c *CLI) loadManifest(path string) (*spec.Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return spec.LoadManifest(f)
}

// build compiles a manifest into a handlerless Spec whose diagnostics
// land on our stderr and whose engine traces through our logger.
func (c *CLI) build(m *spec.Manifest, opts ...spec.BuildOption) (*spec.Spec, error) {
	all := append([]spec.BuildOption{
		spec.WithLogger(c.log.logger(c.stderr)),
		spec.WithSink(spec.WriterSink{W: c.stderr}),
		spec.WithHelpWriter(c.stdout),
	}, opts...)

	return m.Builder(nil, all...).Build()
}

// check compiles the manifest and reports what it declares.
func (c *CLI) check(manifest string) int {
	defer c.pprof.start()()

	m, err := c.loadManifest(manifest)
	if err != nil {
		fmt.Fprintf(c.stderr, "%s: %v\n", pkg.Name, err)

		return 1
	}

	s, err := c.build(m)
	if err != nil {
		fmt.Fprintf(c.stderr, "%s: %v\n", manifest, err)

		return 1
	}

	fmt.Fprintf(c.stdout, "%s: %d patterns, %d options\n",
		manifest, len(s.Patterns()), len(s.OptionNames()))

	return 0
}

// try dispatches the trailing arguments against the manifest's
// patterns, tracing bound values through the logger.
func (c *CLI) try(manifest string, args []string) int {
	defer c.pprof.start()()

	m, err := c.loadManifest(manifest)
	if err != nil {
		fmt.Fprintf(c.stderr, "%s: %v\n", pkg.Name, err)

		return 1
	}

	s, err := c.build(m)
	if err != nil {
		fmt.Fprintf(c.stderr, "%s: %v\n", manifest, err)

		return 1
	}

	name := m.Name
	if name == "" {
		name = manifest
	}

	status := s.Process(append([]string{name}, args...))

	fmt.Fprintf(c.stdout, "status %d\n", status)

	return status
}
