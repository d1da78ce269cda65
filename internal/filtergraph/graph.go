// Package filtergraph compiles a render configuration into a compositing
// engine invocation. Graphs are assembled as a typed intermediate
// representation and serialized to the engine's textual filter language only
// at the end, so stage composition stays unit-testable without spawning the
// engine.
package filtergraph

import (
	"fmt"
	"strings"
)

// Filter is one node in a chain. Args are pre-rendered "key=value" or
// positional fragments joined with ":" on serialization.
type Filter struct {
	Name string
	Args []string
}

// String renders the filter in engine syntax.
func (f Filter) String() string {
	if len(f.Args) == 0 {
		return f.Name
	}
	return f.Name + "=" + strings.Join(f.Args, ":")
}

// NewFilter builds a filter node from name and argument fragments.
func NewFilter(name string, args ...string) Filter {
	return Filter{Name: name, Args: args}
}

// Arg renders one key=value argument fragment.
func Arg(key string, value any) string {
	return fmt.Sprintf("%s=%v", key, value)
}

// ExprArg renders a key='expr' argument fragment for time-parameterized
// expressions that contain engine syntax characters.
func ExprArg(key, expr string) string {
	return fmt.Sprintf("%s='%s'", key, expr)
}

// Chain is a linear sequence of filters with labeled input and output pads.
type Chain struct {
	Inputs  []string
	Filters []Filter
	Outputs []string
}

// String renders the chain: "[in]f1,f2[out]".
func (c Chain) String() string {
	var b strings.Builder
	for _, in := range c.Inputs {
		b.WriteString("[" + in + "]")
	}
	parts := make([]string, 0, len(c.Filters))
	for _, f := range c.Filters {
		parts = append(parts, f.String())
	}
	b.WriteString(strings.Join(parts, ","))
	for _, out := range c.Outputs {
		b.WriteString("[" + out + "]")
	}
	return b.String()
}

// Graph is an ordered set of chains. Order matters: a chain may only consume
// pads produced by earlier chains or input streams.
type Graph struct {
	chains []Chain
}

// Add appends a chain to the graph.
func (g *Graph) Add(chain Chain) {
	g.chains = append(g.chains, chain)
}

// AddLinear appends a single-input single-output chain.
func (g *Graph) AddLinear(in, out string, filters ...Filter) {
	chain := Chain{Filters: filters, Outputs: []string{out}}
	if in != "" {
		chain.Inputs = []string{in}
	}
	g.Add(chain)
}

// Contains reports whether any filter in the graph has the given name.
func (g *Graph) Contains(name string) bool {
	for _, chain := range g.chains {
		for _, f := range chain.Filters {
			if f.Name == name {
				return true
			}
		}
	}
	return false
}

// String serializes the graph to the engine's filter_complex syntax.
func (g *Graph) String() string {
	parts := make([]string, 0, len(g.chains))
	for _, chain := range g.chains {
		parts = append(parts, chain.String())
	}
	return strings.Join(parts, ";")
}
