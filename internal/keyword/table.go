// Package keyword provides the keyword dispatch table and the line reader
// that feeds directives from a keepalived-style configuration to it.
//
// A root keyword opens a block. Sub-keywords installed under it are
// dispatched while its block is open, and its end callback runs when the
// block closes. Handlers may be rebound at any time without removing their
// registration, which is how role gating swaps live handlers for Nop.
package keyword

import (
	"context"
	"sort"
	"strings"
)

// Directive is one configuration statement. Tokens[0] is the keyword.
type Directive struct {
	Tokens []string
	Line   int
}

// Keyword returns the directive keyword.
func (d Directive) Keyword() string {
	if len(d.Tokens) == 0 {
		return ""
	}
	return d.Tokens[0]
}

// Arg returns the i-th argument after the keyword.
func (d Directive) Arg(i int) (string, bool) {
	if i < 0 || i+1 >= len(d.Tokens) {
		return "", false
	}
	return d.Tokens[i+1], true
}

// Args returns every argument after the keyword.
func (d Directive) Args() []string {
	if len(d.Tokens) < 2 {
		return nil
	}
	return d.Tokens[1:]
}

// String renders the directive as it appeared in the source.
func (d Directive) String() string {
	return strings.Join(d.Tokens, " ")
}

// Handler processes one directive. Returning an error of block severity, or
// errors.ErrSkipBlock, discards the rest of the enclosing block.
type Handler func(ctx context.Context, d Directive) error

// EndFunc runs when a root keyword's block closes.
type EndFunc func(ctx context.Context) error

// Nop consumes a directive without acting on it.
func Nop(context.Context, Directive) error {
	return nil
}

// Keyword is a root keyword together with the sub-keywords of its block.
type Keyword struct {
	name    string
	handler Handler
	end     EndFunc
	subs    map[string]Handler
	order   []string
}

// Name returns the keyword text.
func (k *Keyword) Name() string {
	return k.name
}

// Install registers a sub-keyword. Installing an existing name replaces its
// handler.
func (k *Keyword) Install(name string, h Handler) *Keyword {
	if h == nil {
		h = Nop
	}
	if _, exists := k.subs[name]; !exists {
		k.order = append(k.order, name)
	}
	k.subs[name] = h
	return k
}

// OnEnd sets the block-close callback.
func (k *Keyword) OnEnd(fn EndFunc) *Keyword {
	k.end = fn
	return k
}

// Rebind swaps the handler of an installed keyword. The root keyword itself
// is addressed by its own name. It reports whether name was installed.
func (k *Keyword) Rebind(name string, h Handler) bool {
	if h == nil {
		h = Nop
	}
	if name == k.name {
		k.handler = h
		return true
	}
	if _, exists := k.subs[name]; !exists {
		return false
	}
	k.subs[name] = h
	return true
}

// Sub returns the handler of a sub-keyword.
func (k *Keyword) Sub(name string) (Handler, bool) {
	h, ok := k.subs[name]
	return h, ok
}

// Subs returns the installed sub-keywords in installation order.
func (k *Keyword) Subs() []string {
	result := make([]string, len(k.order))
	copy(result, k.order)
	return result
}

func (k *Keyword) begin(ctx context.Context, d Directive) error {
	if k.handler == nil {
		return nil
	}
	return k.handler(ctx, d)
}

func (k *Keyword) finish(ctx context.Context) error {
	if k.end == nil {
		return nil
	}
	return k.end(ctx)
}

// Table maps root keywords to their definitions.
type Table struct {
	roots map[string]*Keyword
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{roots: make(map[string]*Keyword)}
}

// InstallRoot registers a block-opening keyword. Installing an existing
// root returns it with its handler replaced.
func (t *Table) InstallRoot(name string, h Handler) *Keyword {
	if h == nil {
		h = Nop
	}
	if k, exists := t.roots[name]; exists {
		k.handler = h
		return k
	}
	k := &Keyword{
		name:    name,
		handler: h,
		subs:    make(map[string]Handler),
	}
	t.roots[name] = k
	return k
}

// Root returns a registered root keyword.
func (t *Table) Root(name string) (*Keyword, bool) {
	k, ok := t.roots[name]
	return k, ok
}

// Roots returns the registered root keywords sorted by name.
func (t *Table) Roots() []string {
	names := make([]string, 0, len(t.roots))
	for name := range t.roots {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
