package bfd

import "strings"

// Subsystem identifies a process that consumes BFD session state.
type Subsystem uint8

const (
	SubsystemVRRP Subsystem = 1 << iota
	SubsystemChecker
)

// String returns the keyword that declares interest from the subsystem.
func (s Subsystem) String() string {
	switch s {
	case SubsystemVRRP:
		return "vrrp"
	case SubsystemChecker:
		return "checker"
	default:
		return "unknown"
	}
}

// EventMask records which subsystems a bfd_instance block explicitly
// declared interest from. It only lives for the duration of one block.
type EventMask uint8

// Set marks s as declared.
func (m *EventMask) Set(s Subsystem) { *m |= EventMask(s) }

// Reset clears the mask at the start of a new block.
func (m *EventMask) Reset() { *m = 0 }

// Has reports whether s was declared.
func (m EventMask) Has(s Subsystem) bool { return m&EventMask(s) != 0 }

// Empty reports whether the block declared no interest at all.
func (m EventMask) Empty() bool { return m == 0 }

// String lists the declared subsystems.
func (m EventMask) String() string {
	var parts []string
	for _, s := range []Subsystem{SubsystemVRRP, SubsystemChecker} {
		if m.Has(s) {
			parts = append(parts, s.String())
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ",")
}

// Enabled decides whether a session is delivered to s. A block that names
// no subsystem is delivered to all of them; otherwise only to those named.
func Enabled(s Subsystem, m EventMask) bool {
	return m.Empty() || m.Has(s)
}

// AdmitBinding decides whether a binding owned by owner survives the close
// of its block. Full parses keep every binding.
func AdmitBinding(owner Subsystem, m EventMask, full bool) bool {
	return full || Enabled(owner, m)
}
