package bfd

import (
	"github.com/conneroisu/bfdconf/internal/errors"
	"github.com/conneroisu/bfdconf/internal/validation"
)

// Finalize applies the end-of-block checks to s and returns the admitted
// session. It does not touch any registry.
//
// A block diagnostic means s is rejected. A returned advisory accompanies
// an admitted session.
func Finalize(s Session, mask EventMask) (Session, error) {
	family := validation.FamilyOf(s.Neighbor)
	if family == validation.FamilyNone {
		s.State = StateRejected
		return s, errors.Block(errors.CodeNoNeighbor, s.Name,
			"has no neighbor address set, disabling instance")
	}

	if src := validation.FamilyOf(s.Source); src != validation.FamilyNone && src != family {
		s.State = StateRejected
		return s, errors.Block(errors.CodeFamilyMismatch, s.Name,
			"source address %s and neighbor address %s are not of the same family, disabling instance",
			s.Source.Addr(), s.Neighbor.Addr())
	}

	if s.TTL == 0 {
		s.TTL = DefaultTTL(family)
	}

	var advisory error
	if s.MaxHops > int(s.TTL) {
		advisory = errors.Advisory(errors.CodeMaxHopsClamped, s.Name,
			"max_hops %d exceeds ttl/hoplimit - setting to ttl/hoplimit %d", s.MaxHops, s.TTL).
			WithKeyword(FieldMaxHops.String())
		s.MaxHops = int(s.TTL)
	}

	s.VRRP = Enabled(SubsystemVRRP, mask)
	s.Checker = Enabled(SubsystemChecker, mask)
	s.State = StateActive

	return s, advisory
}
