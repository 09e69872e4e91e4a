// Package config reads the key/value configuration file described in
// spec.md §6: flat `name=value` lines, `#` comments, and `include <path>`
// for nested files. This is deliberately not github.com/BurntSushi/toml —
// the wire format has no sections, tables, or typed literals, just a flat
// namespace of dotted keys, so a TOML parser would have nothing to parse
// and nowhere to put the include directive. See DESIGN.md.
package config

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

const maxIncludeDepth = 10

// Config is a flat, process-local key/value settings bag.
type Config struct {
	values map[string]string
}

// New returns an empty Config, useful for tests and defaults-only runs.
func New() *Config {
	return &Config{values: map[string]string{}}
}

// Load reads path and any files it includes, per spec.md §6.
func Load(path string) (*Config, error) {
	c := New()
	if err := c.loadFile(path, 0); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) loadFile(path string, depth int) error {
	if depth > maxIncludeDepth {
		return fmt.Errorf("config: include nesting exceeds %d levels at %s", maxIncludeDepth, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("config: opening %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if rest, ok := strings.CutPrefix(line, "include "); ok {
			if err := c.loadFile(strings.TrimSpace(rest), depth+1); err != nil {
				return err
			}
			continue
		}
		name, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		c.values[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}
	return scanner.Err()
}

// Set overrides a single key, used for rc.<name>=<value> invocation args.
func (c *Config) Set(name, value string) {
	c.values[name] = value
}

// GetString returns a key's raw value, or def if unset.
func (c *Config) GetString(name, def string) string {
	if v, ok := c.values[name]; ok {
		return v
	}
	return def
}

// Get implements dom.ConfigLookup.
func (c *Config) Get(name string) (string, bool) {
	v, ok := c.values[name]
	return v, ok
}

// GetBool treats "on"/"1"/"yes"/"true" as true, everything else false.
func (c *Config) GetBool(name string, def bool) bool {
	v, ok := c.values[name]
	if !ok {
		return def
	}
	switch strings.ToLower(v) {
	case "on", "1", "yes", "true":
		return true
	default:
		return false
	}
}

// GetInt parses a key as an integer, falling back to def on absence or
// parse failure.
func (c *Config) GetInt(name string, def int) int {
	v, ok := c.values[name]
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// GetReal parses a key as a float, falling back to def on absence or
// parse failure.
func (c *Config) GetReal(name string, def float64) float64 {
	v, ok := c.values[name]
	if !ok {
		return def
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return n
}

// Keys returns every configured key with the given prefix, stripped of
// that prefix — used to enumerate urgency.user.project.*, uda.*, alias.*.
func (c *Config) Keys(prefix string) []string {
	var out []string
	for k := range c.values {
		if strings.HasPrefix(k, prefix) {
			out = append(out, strings.TrimPrefix(k, prefix))
		}
	}
	sort.Strings(out)
	return out
}

// All returns a copy of the full settings map.
func (c *Config) All() map[string]string {
	out := make(map[string]string, len(c.values))
	for k, v := range c.values {
		out[k] = v
	}
	return out
}
