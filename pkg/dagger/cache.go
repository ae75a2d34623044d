package dagger

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

// Command is one expression evaluated during a session.
type Command struct {
	Text  string
	Valid bool // false when evaluation returned an error
}

// Cache records the commands evaluated during a session, in order. The zero
// value is ready to use.
type Cache struct {
	mu       sync.Mutex
	commands []Command
}

// Add appends a command to the history.
func (c *Cache) Add(cmd Command) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.commands = append(c.commands, cmd)
}

// Commands returns a copy of the history.
func (c *Cache) Commands() []Command {
	c.mu.Lock()
	defer c.mu.Unlock()

	cp := make([]Command, len(c.commands))
	copy(cp, c.commands)

	return cp
}

// Len returns the number of recorded commands.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.commands)
}

// String formats the history for the cache built-in. Failed commands are
// marked so the operator can tell them apart.
func (c *Cache) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.commands) == 0 {
		return "no commands stored"
	}

	var b strings.Builder
	b.WriteString("stored commands:")

	for _, cmd := range c.commands {
		b.WriteString("\n\t")
		b.WriteString(cmd.Text)
		if !cmd.Valid {
			b.WriteString("  (failed)")
		}
	}

	return b.String()
}

// Save writes the commands that evaluated successfully to path, one per
// line, so a session can be replayed as a script.
func (c *Cache) Save(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var b strings.Builder
	for _, cmd := range c.commands {
		if !cmd.Valid {
			continue
		}
		b.WriteString(cmd.Text)
		b.WriteString("\n")
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("dagger: save cache: %w", err)
	}

	return nil
}
