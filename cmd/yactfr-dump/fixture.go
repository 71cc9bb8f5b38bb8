package main

import (
	"fmt"

	"github.com/kienanstewart/yactfr/proc"
)

// fixtureByName resolves a fixture name to one of proc's hand-built
// PktProcs. A real trace-type builder would replace this with metadata
// lowering; none exists in this module (see proc/demo.go).
func fixtureByName(name string) (*proc.PktProc, error) {
	switch name {
	case "minimal":
		return proc.MinimalPktProc(), nil
	case "clock":
		return proc.ClockPktProc(), nil
	case "dynarray":
		return proc.DynamicArrayPktProc(), nil
	case "variant":
		return proc.VariantPktProc(), nil
	case "string":
		return proc.StringPktProc(), nil
	case "multiert":
		return proc.MultiErtPktProc(), nil
	default:
		return nil, fmt.Errorf("unknown fixture %q", name)
	}
}
