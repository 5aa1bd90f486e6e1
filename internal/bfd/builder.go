package bfd

import (
	"github.com/conneroisu/bfdconf/internal/errors"
	"github.com/conneroisu/bfdconf/internal/validation"
)

// Builder assembles sessions from bfd_instance blocks. At most one session
// is open at a time; every setter targets it.
//
// Setters return nil on success and a diagnostic otherwise. Advisory and
// field diagnostics leave the session open. A block diagnostic means the
// open session was removed from the registry and the caller must skip the
// rest of the block.
type Builder struct {
	registry *Registry
	current  *Session
}

// NewBuilder creates a builder that adds sessions to reg.
func NewBuilder(reg *Registry) *Builder {
	if reg == nil {
		reg = NewRegistry()
	}
	return &Builder{registry: reg}
}

// Registry returns the registry the builder writes to.
func (b *Builder) Registry() *Registry {
	return b.registry
}

// Current returns the open session, if any.
func (b *Builder) Current() (*Session, bool) {
	return b.current, b.current != nil
}

// Open starts a new session. The session joins the registry straight away
// so that later blocks see its name and neighbor.
func (b *Builder) Open(name string) (*Session, error) {
	b.current = nil

	if err := validation.CheckName(name, NameMax); err != nil {
		if errors.Is(err, validation.ErrEmptyName) {
			return nil, errors.Block(errors.CodeMissingArgument, "", "bfd_instance requires a name")
		}
		return nil, errors.Block(errors.CodeNameTooLong, name,
			"name too long (maximum length is %d characters) - ignoring", NameMax-1).WithCause(err)
	}
	if _, exists := b.registry.Lookup(name); exists {
		return nil, errors.Block(errors.CodeDuplicateName, name, "already configured - ignoring")
	}

	s := newSession(name)
	b.registry.insert(s)
	b.current = s

	return s, nil
}

// SetField applies raw to field of the open session.
func (b *Builder) SetField(field Field, raw string) error {
	switch field {
	case FieldSource:
		return b.SetSource(raw)
	case FieldNeighbor:
		return b.SetNeighbor(raw)
	case FieldPassive:
		return b.SetPassive()
	case FieldMinRx:
		return b.SetMinRx(raw)
	case FieldMinTx:
		return b.SetMinTx(raw)
	case FieldIdleTx:
		return b.SetIdleTx(raw)
	case FieldMultiplier:
		return b.SetMultiplier(raw)
	case FieldTTL:
		return b.SetTTL(raw)
	case FieldMaxHops:
		return b.SetMaxHops(raw)
	default:
		return errors.Field(errors.CodeUnknownKeyword, b.currentName(), "unknown field %d", int(field))
	}
}

// SetNeighbor sets the neighbor address. A malformed address or one already
// used by another session rejects the whole session.
func (b *Builder) SetNeighbor(raw string) error {
	s, err := b.open()
	if err != nil {
		return err
	}

	ap, perr := validation.ParseAddress(raw, ControlPort)
	if perr != nil {
		b.discard()
		return errors.Block(errors.CodeBadAddress, s.Name,
			"malformed neighbor address %s, ignoring instance", raw).
			WithKeyword(FieldNeighbor.String()).WithCause(perr)
	}
	if other, dup := b.registry.LookupNeighbor(ap); dup && other != s {
		b.discard()
		return errors.Block(errors.CodeDuplicateNeighbor, s.Name,
			"duplicate neighbor address %s (already used by %s), ignoring instance", raw, other.Name).
			WithKeyword(FieldNeighbor.String())
	}

	s.Neighbor = ap
	s.State = StateConfiguring
	return nil
}

// SetSource sets the local source address. A malformed address rejects the
// whole session.
func (b *Builder) SetSource(raw string) error {
	s, err := b.open()
	if err != nil {
		return err
	}

	ap, perr := validation.ParseAddress(raw, 0)
	if perr != nil {
		b.discard()
		return errors.Block(errors.CodeBadAddress, s.Name,
			"malformed source address %s, ignoring instance", raw).
			WithKeyword(FieldSource.String()).WithCause(perr)
	}

	s.Source = ap
	s.State = StateConfiguring
	return nil
}

// SetPassive marks the session passive.
func (b *Builder) SetPassive() error {
	s, err := b.open()
	if err != nil {
		return err
	}
	s.Passive = true
	s.State = StateConfiguring
	return nil
}

// SetMinRx sets the required minimum receive interval in milliseconds.
func (b *Builder) SetMinRx(raw string) error {
	return b.setNumber(FieldMinRx, raw, func(s *Session, v int64) { s.MinRx = millis(v) })
}

// SetMinTx sets the desired minimum transmit interval in milliseconds.
func (b *Builder) SetMinTx(raw string) error {
	return b.setNumber(FieldMinTx, raw, func(s *Session, v int64) { s.MinTx = millis(v) })
}

// SetIdleTx sets the transmit interval used while the session is down.
func (b *Builder) SetIdleTx(raw string) error {
	return b.setNumber(FieldIdleTx, raw, func(s *Session, v int64) { s.IdleTx = millis(v) })
}

// SetMultiplier sets the detection time multiplier.
func (b *Builder) SetMultiplier(raw string) error {
	return b.setNumber(FieldMultiplier, raw, func(s *Session, v int64) { s.Multiplier = uint8(v) })
}

// SetTTL sets the TTL (IPv4) or hop limit (IPv6).
func (b *Builder) SetTTL(raw string) error {
	return b.setNumber(FieldTTL, raw, func(s *Session, v int64) { s.TTL = uint8(v) })
}

// SetMaxHops sets the largest TTL reduction accepted on received packets,
// or -1 for no limit.
func (b *Builder) SetMaxHops(raw string) error {
	return b.setNumber(FieldMaxHops, raw, func(s *Session, v int64) { s.MaxHops = int(v) })
}

func (b *Builder) setNumber(field Field, raw string, apply func(*Session, int64)) error {
	s, err := b.open()
	if err != nil {
		return err
	}
	r, _ := numericRange(field)

	value, perr := r.Parse(raw)
	if perr != nil {
		code := errors.CodeOutOfRange
		if errors.Is(perr, validation.ErrNotANumber) {
			code = errors.CodeNotANumber
		}
		return errors.Field(code, s.Name,
			"%s value %s is not valid (must be in range %s), ignoring", field, raw, r).
			WithKeyword(field.String()).WithCause(perr)
	}

	apply(s, value)
	s.State = StateConfiguring

	if r.AboveSensible(value) {
		return errors.Advisory(errors.CodeAboveSensible, s.Name,
			"%s value %d is larger than max sensible (%d)", field, value, r.Sensible).
			WithKeyword(field.String())
	}
	return nil
}

// Close finalizes the open session against the interest mask gathered from
// its block. A rejected session is removed from the registry and returned
// as nil with a block diagnostic; an admitted session may come back with an
// advisory.
func (b *Builder) Close(mask EventMask) (*Session, error) {
	s := b.current
	if s == nil {
		return nil, errors.Field(errors.CodeNoOpenRecord, "", "no open bfd_instance to close")
	}
	b.current = nil

	final, err := Finalize(*s, mask)
	if errors.IsBlocking(err) {
		b.registry.remove(s)
		s.State = StateRejected
		return nil, err
	}

	*s = final
	return s, err
}

// Discard drops the open session without finalizing it.
func (b *Builder) Discard() {
	b.discard()
}

func (b *Builder) discard() {
	if b.current == nil {
		return
	}
	b.registry.remove(b.current)
	b.current.State = StateRejected
	b.current = nil
}

func (b *Builder) open() (*Session, error) {
	if b.current == nil {
		return nil, errors.Field(errors.CodeNoOpenRecord, "", "no open bfd_instance")
	}
	return b.current, nil
}

func (b *Builder) currentName() string {
	if b.current == nil {
		return ""
	}
	return b.current.Name
}
