// Package track holds the bindings through which the VRRP and checker
// processes reference BFD sessions by name.
//
// Each subsystem owns its own registry. A binding is provisional while its
// bfd_instance block is open and is confirmed or dropped when the block
// closes.
package track

import (
	"github.com/conneroisu/bfdconf/internal/bfd"
	"github.com/conneroisu/bfdconf/internal/errors"
	"github.com/conneroisu/bfdconf/internal/validation"
)

// Binding is a reference from a consumer subsystem to a session.
type Binding interface {
	SessionName() string
}

// Registry holds the bindings of one subsystem in declaration order. It is
// owned by a single parse and is not safe for concurrent use.
type Registry[B Binding] struct {
	owner    bfd.Subsystem
	create   func(name string) B
	bindings []B
	pending  B
	open     bool
}

// NewRegistry creates a registry for bindings owned by owner. create builds
// a fresh binding for a session name.
func NewRegistry[B Binding](owner bfd.Subsystem, create func(name string) B) *Registry[B] {
	return &Registry[B]{
		owner:    owner,
		create:   create,
		bindings: make([]B, 0),
	}
}

// Owner returns the subsystem that owns the registry.
func (r *Registry[B]) Owner() bfd.Subsystem {
	return r.owner
}

// Open creates a provisional binding for name. A name already bound by this
// subsystem is rejected with a block diagnostic and nothing is created.
func (r *Registry[B]) Open(name string) (B, error) {
	var zero B
	r.clearPending()

	if err := validation.CheckName(name, bfd.NameMax); err != nil {
		if errors.Is(err, validation.ErrEmptyName) {
			return zero, errors.Block(errors.CodeMissingArgument, "", "bfd_instance requires a name")
		}
		return zero, errors.Block(errors.CodeNameTooLong, name,
			"%s tracking name too long (maximum length is %d characters) - ignoring", r.owner, bfd.NameMax-1).
			WithCause(err)
	}
	if _, exists := r.Lookup(name); exists {
		return zero, errors.Block(errors.CodeDuplicateBinding, name, "BFD %s already specified", name)
	}

	b := r.create(name)
	r.bindings = append(r.bindings, b)
	r.pending = b
	r.open = true

	return b, nil
}

// Pending returns the binding whose block is still open.
func (r *Registry[B]) Pending() (B, bool) {
	return r.pending, r.open
}

// Close confirms or drops the pending binding. It reports whether the
// binding was kept.
func (r *Registry[B]) Close(mask bfd.EventMask, full bool) bool {
	if !r.open {
		return false
	}
	b := r.pending
	r.clearPending()

	if bfd.AdmitBinding(r.owner, mask, full) {
		return true
	}
	r.remove(b)
	return false
}

// Discard drops the pending binding without deciding on it.
func (r *Registry[B]) Discard() {
	if !r.open {
		return
	}
	b := r.pending
	r.clearPending()
	r.remove(b)
}

// Lookup retrieves a binding by session name.
func (r *Registry[B]) Lookup(name string) (B, bool) {
	for _, b := range r.bindings {
		if b.SessionName() == name {
			return b, true
		}
	}
	var zero B
	return zero, false
}

// All returns the bindings in declaration order.
func (r *Registry[B]) All() []B {
	result := make([]B, len(r.bindings))
	copy(result, r.bindings)
	return result
}

// Names returns bound session names in declaration order.
func (r *Registry[B]) Names() []string {
	names := make([]string, 0, len(r.bindings))
	for _, b := range r.bindings {
		names = append(names, b.SessionName())
	}
	return names
}

// Len returns the number of bindings.
func (r *Registry[B]) Len() int {
	return len(r.bindings)
}

func (r *Registry[B]) remove(b B) {
	name := b.SessionName()
	for i := len(r.bindings) - 1; i >= 0; i-- {
		if r.bindings[i].SessionName() == name {
			r.bindings = append(r.bindings[:i], r.bindings[i+1:]...)
			return
		}
	}
}

func (r *Registry[B]) clearPending() {
	var zero B
	r.pending = zero
	r.open = false
}
