// Package dagger implements the interactive debugging session used to poke
// at live automation objects, most usefully a driver.Driver, from a shell
// like environment. The caller hands Debug an explicit name-to-value map;
// every binding becomes a global in a JavaScript runtime and the operator
// evaluates expressions against it until quitting.
//
// Bindings created or mutated during a session live only for that session.
// The bound Go values themselves are live references, so mutating one from
// the shell mutates the caller's object.
package dagger

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/mattn/go-isatty"
)

// quitCommands end the session when entered on their own line.
var quitCommands = []string{":q", "quit", "exit"}

// ErrNoTerminal is returned by Run when the session would read os.Stdin but
// no interactive terminal is attached.
var ErrNoTerminal = errors.New("dagger: no interactive terminal available")

// Option configures a Session.
type Option func(*Session)

// WithInput reads operator input from r instead of os.Stdin. The terminal
// check is skipped; this is how tests and piped scripts drive a session.
func WithInput(r io.Reader) Option {
	return func(s *Session) { s.in = r }
}

// WithOutput writes session output to w instead of os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(s *Session) { s.out = w }
}

// WithRegistry uses a custom command registry instead of the package one.
func WithRegistry(r *Registry) Option {
	return func(s *Session) { s.reg = r }
}

// Session is one interactive debugging session. Create it with NewSession
// and drive it with Run; a Session is not reusable after Run returns.
type Session struct {
	bindings map[string]any
	reg      *Registry
	cache    *Cache
	in       io.Reader
	out      io.Writer
}

// NewSession captures the given bindings and prepares a session. The map is
// copied, so later changes by the caller do not leak in; values are kept as
// live references.
func NewSession(vars map[string]any, opts ...Option) *Session {
	bindings := make(map[string]any, len(vars))
	for name, value := range vars {
		bindings[name] = value
	}

	s := &Session{
		bindings: bindings,
		reg:      defaultRegistry,
		cache:    &Cache{},
		out:      os.Stdout,
	}
	for _, o := range opts {
		o(s)
	}

	return s
}

// Cache returns the session's command history.
func (s *Session) Cache() *Cache {
	return s.cache
}

// Debug starts an interactive debugging session seeded with vars and blocks
// until the operator quits. It is the usual entry point:
//
//	drv, _ := driver.New(ctx)
//	dagger.Debug(ctx, map[string]any{"driver": drv})
func Debug(ctx context.Context, vars map[string]any, opts ...Option) error {
	return NewSession(vars, opts...).Run(ctx)
}

// Run blocks the calling goroutine, evaluating operator input one line at a
// time until a quit command, end of input, or ctx cancellation. A failing
// expression is reported and the loop keeps accepting input. Run returns
// ErrNoTerminal when it would read os.Stdin and no terminal is attached.
func (s *Session) Run(ctx context.Context) error {
	in := s.in
	if in == nil {
		fd := os.Stdin.Fd()
		if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
			return ErrNoTerminal
		}
		in = os.Stdin
	}

	eval, err := newEvaluator(ctx, s.bindings, s.out)
	if err != nil {
		return fmt.Errorf("dagger: seed session: %w", err)
	}

	s.printBanner(eval.names)

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1<<20) // allow pasted lines up to 1MB

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprint(s.out, promptStyle.Render(">>>")+" ")

		if !scanner.Scan() {
			// End of input ends the session like a quit command.
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if slices.Contains(quitCommands, line) {
			return nil
		}

		if s.runBuiltin(ctx, line, eval) {
			continue
		}

		value, evalErr := eval.Eval(line)
		s.cache.Add(Command{Text: line, Valid: evalErr == nil})

		if evalErr != nil {
			fmt.Fprintln(s.out, errorStyle.Render(evalErr.Error()))
			continue
		}

		if rendered := eval.Render(value); rendered != "" {
			fmt.Fprintln(s.out, rendered)
		}
	}
}

// runBuiltin handles built-in commands and registry commands. It reports
// whether the line was consumed.
func (s *Session) runBuiltin(ctx context.Context, line string, eval *evaluator) bool {
	switch line {
	case "help":
		s.printHelp()
		return true
	case "vars":
		if len(eval.names) == 0 {
			fmt.Fprintln(s.out, dimStyle.Render("no bindings"))
			return true
		}
		fmt.Fprintln(s.out, strings.Join(eval.names, ", "))
		return true
	case "cache":
		fmt.Fprintln(s.out, s.cache.String())
		return true
	case "registry":
		names := s.reg.Names()
		if len(names) == 0 {
			fmt.Fprintln(s.out, dimStyle.Render("no registered commands"))
			return true
		}
		fmt.Fprintln(s.out, strings.Join(names, ", "))
		return true
	}

	if fn, ok := s.reg.Lookup(line); ok {
		if err := fn(ctx, s.out); err != nil {
			fmt.Fprintln(s.out, errorStyle.Render(err.Error()))
		}
		return true
	}

	return false
}

func (s *Session) printBanner(names []string) {
	fmt.Fprintln(s.out, bannerStyle.Render("dagger debug session"))

	bound := "no bindings"
	if len(names) > 0 {
		bound = "bound: " + strings.Join(names, ", ")
	}
	fmt.Fprintln(s.out, dimStyle.Render(bound))
	fmt.Fprintln(s.out, dimStyle.Render("write "+strings.Join(quitCommands, ", ")+" to exit, help for commands"))
}

func (s *Session) printHelp() {
	fmt.Fprintln(s.out, strings.TrimSpace(`
help      show this help
vars      list bound variable names
cache     show commands evaluated so far
registry  list registered commands
`))
	fmt.Fprintln(s.out, "quit with "+strings.Join(quitCommands, ", "))
	fmt.Fprintln(s.out, "anything else is evaluated as a JavaScript expression")
}
