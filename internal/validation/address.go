package validation

import (
	"errors"
	"fmt"
	"net/netip"
	"strings"
)

var (
	// ErrBadAddress means the token is not an IP address or address:port.
	ErrBadAddress = errors.New("malformed address")
	// ErrNameTooLong means an instance name does not fit the name limit.
	ErrNameTooLong = errors.New("name too long")
	// ErrEmptyName means an instance name is missing.
	ErrEmptyName = errors.New("empty name")
)

// Family is the address family of a parsed address.
type Family int

const (
	FamilyNone Family = iota
	FamilyIPv4
	FamilyIPv6
)

// String returns the string representation of the family
func (f Family) String() string {
	switch f {
	case FamilyIPv4:
		return "inet"
	case FamilyIPv6:
		return "inet6"
	default:
		return "none"
	}
}

// FamilyOf returns the family of ap, or FamilyNone for the zero value.
func FamilyOf(ap netip.AddrPort) Family {
	addr := ap.Addr()
	switch {
	case !addr.IsValid():
		return FamilyNone
	case addr.Is4():
		return FamilyIPv4
	default:
		return FamilyIPv6
	}
}

// ParseAddress parses "ip", "ipv4:port", "[ipv6]" or "[ipv6]:port". The
// default port applies when raw carries none. Brackets only ever enclose a
// whole IPv6 address. IPv4-mapped IPv6 addresses are unmapped so
// the family reflects the address actually in use.
func ParseAddress(raw string, defaultPort uint16) (netip.AddrPort, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return netip.AddrPort{}, fmt.Errorf("%w: empty", ErrBadAddress)
	}

	if ap, err := netip.ParseAddrPort(raw); err == nil {
		return netip.AddrPortFrom(ap.Addr().Unmap(), ap.Port()), nil
	}

	host, bracketed := raw, false
	if strings.HasPrefix(host, "[") && strings.HasSuffix(host, "]") {
		host, bracketed = host[1:len(host)-1], true
	}
	if strings.ContainsAny(host, "[]") {
		return netip.AddrPort{}, fmt.Errorf("%w: unbalanced brackets in %q", ErrBadAddress, raw)
	}

	addr, err := netip.ParseAddr(host)
	if err != nil || (bracketed && !addr.Is6()) {
		return netip.AddrPort{}, fmt.Errorf("%w: %q", ErrBadAddress, raw)
	}

	return netip.AddrPortFrom(addr.Unmap(), defaultPort), nil
}

// CheckName rejects empty names and names of limit bytes or more.
func CheckName(name string, limit int) error {
	if name == "" {
		return ErrEmptyName
	}
	if len(name) >= limit {
		return fmt.Errorf("%w: maximum length is %d characters", ErrNameTooLong, limit-1)
	}
	return nil
}
