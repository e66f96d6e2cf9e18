// ABOUTME: Minimal --flag value parsing for subcommands
// ABOUTME: Accepts "--name value" and "--name=value", repeated flags collect values

package main

import (
	"errors"
	"fmt"
	"strings"
)

var errUsage = errors.New("missing command (run with help for usage)")

// flagSet holds parsed flag values keyed by name without dashes.
type flagSet map[string][]string

// parseFlags parses args against the allowed flag names. Every flag takes
// a value; positional arguments are rejected.
func parseFlags(args []string, allowed ...string) (flagSet, error) {
	known := make(map[string]bool, len(allowed))
	for _, a := range allowed {
		known[a] = true
	}

	flags := flagSet{}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "--") {
			return nil, fmt.Errorf("unexpected argument: %s", arg)
		}

		name, value, hasValue := strings.Cut(strings.TrimPrefix(arg, "--"), "=")
		if !known[name] {
			return nil, fmt.Errorf("unknown flag: --%s", name)
		}
		if !hasValue {
			if i+1 >= len(args) {
				return nil, fmt.Errorf("--%s requires a value", name)
			}
			value = args[i+1]
			i++
		}
		flags[name] = append(flags[name], value)
	}
	return flags, nil
}

// get returns the last value given for name, or "".
func (f flagSet) get(name string) string {
	vals := f[name]
	if len(vals) == 0 {
		return ""
	}
	return vals[len(vals)-1]
}

// all returns every value given for name in order.
func (f flagSet) all(name string) []string {
	return f[name]
}

// require fails on the first name with no non-blank value.
func (f flagSet) require(names ...string) error {
	for _, n := range names {
		if strings.TrimSpace(f.get(n)) == "" {
			return fmt.Errorf("--%s is required", n)
		}
	}
	return nil
}
