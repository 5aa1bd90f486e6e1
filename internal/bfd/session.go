// Package bfd holds the BFD session model and the builder that assembles
// sessions from bfd_instance blocks.
//
// A session is opened when its block starts, filled in one keyword at a
// time, and finalized when the block closes. Finalization either admits the
// session or removes it from the registry; an admitted session is never
// modified again.
package bfd

import (
	"math"
	"net/netip"
	"time"

	"github.com/conneroisu/bfdconf/internal/validation"
)

const (
	// NameMax bounds instance names: a name must be shorter than NameMax bytes.
	NameMax = 32

	// ControlPort is the BFD control port assigned to neighbors given without one.
	ControlPort uint16 = 3784

	// ControlTTL is the default TTL for IPv4 neighbors.
	ControlTTL = 255
	// ControlHopLimit is the default hop limit for IPv6 neighbors.
	ControlHopLimit = 64

	// MaxHopsUnlimited accepts packets regardless of the hops they took.
	MaxHopsUnlimited = -1

	DefaultMinRx      = 10 * time.Millisecond
	DefaultMinTx      = 10 * time.Millisecond
	DefaultIdleTx     = 1000 * time.Millisecond
	DefaultMultiplier = 5
)

// Intervals are configured in milliseconds and held as microsecond
// durations, so the upper bound keeps the microsecond count in 32 bits.
const intervalMax = math.MaxUint32 / 1000

var (
	MinRxRange      = validation.Range{Min: 1, Max: intervalMax, Sensible: 1000}
	MinTxRange      = validation.Range{Min: 1, Max: intervalMax, Sensible: 1000}
	IdleTxRange     = validation.Range{Min: 1000, Max: intervalMax, Sensible: 10000}
	MultiplierRange = validation.Range{Min: 1, Max: 10}
	TTLRange        = validation.Range{Min: 1, Max: 255}
	MaxHopsRange    = validation.Range{Min: MaxHopsUnlimited, Max: 255}
)

// State is the lifecycle position of a session.
type State int

const (
	StateDeclared State = iota
	StateConfiguring
	StateActive
	StateRejected
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateDeclared:
		return "declared"
	case StateConfiguring:
		return "configuring"
	case StateActive:
		return "active"
	case StateRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Session is one configured BFD instance.
type Session struct {
	Name     string
	Neighbor netip.AddrPort
	Source   netip.AddrPort

	MinRx      time.Duration
	MinTx      time.Duration
	IdleTx     time.Duration
	Multiplier uint8
	Passive    bool

	// TTL is the IPv4 TTL or IPv6 hop limit; zero until finalized means
	// "derive from the neighbor family".
	TTL     uint8
	MaxHops int

	VRRP    bool
	Checker bool

	State State
}

func newSession(name string) *Session {
	return &Session{
		Name:       name,
		MinRx:      DefaultMinRx,
		MinTx:      DefaultMinTx,
		IdleTx:     DefaultIdleTx,
		Multiplier: DefaultMultiplier,
		State:      StateDeclared,
	}
}

// Family returns the neighbor's address family.
func (s *Session) Family() validation.Family {
	return validation.FamilyOf(s.Neighbor)
}

// HasSource reports whether a source address was configured.
func (s *Session) HasSource() bool {
	return s.Source.Addr().IsValid()
}

// DefaultTTL returns the TTL or hop limit used when none is configured.
func DefaultTTL(f validation.Family) uint8 {
	if f == validation.FamilyIPv6 {
		return ControlHopLimit
	}
	return ControlTTL
}

func millis(v int64) time.Duration {
	return time.Duration(v) * time.Millisecond
}
