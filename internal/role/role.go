// Package role models the process roles that parse a keepalived
// configuration and selects which bfd_instance keywords are live for each.
//
// Every role reads the same text. The gate makes sure each one derives only
// the records it owns, so the parent and BFD processes build sessions while
// the VRRP and checker processes build the bindings that reference them.
package role

import (
	"fmt"
	"sort"
	"strings"

	"github.com/conneroisu/bfdconf/internal/bfd"
)

// Role is the functional identity of the process performing a parse.
type Role int

const (
	// Parent is the supervising process.
	Parent Role = iota
	// BFD is the liveness process that runs the sessions.
	BFD
	// VRRP is the redundancy manager.
	VRRP
	// Checker is the server pool health checker.
	Checker
)

var roleNames = map[Role]string{
	Parent:  "parent",
	BFD:     "bfd",
	VRRP:    "vrrp",
	Checker: "checker",
}

var roleAliases = map[string]Role{
	"parent":      Parent,
	"bfd":         BFD,
	"liveness":    BFD,
	"vrrp":        VRRP,
	"redundancy":  VRRP,
	"checker":     Checker,
	"healthcheck": Checker,
}

// All returns every role in declaration order.
func All() []Role {
	return []Role{Parent, BFD, VRRP, Checker}
}

// String returns the canonical name of the role.
func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("role(%d)", int(r))
}

// Subsystem returns the consumer subsystem a role owns, if any.
func (r Role) Subsystem() (bfd.Subsystem, bool) {
	switch r {
	case VRRP:
		return bfd.SubsystemVRRP, true
	case Checker:
		return bfd.SubsystemChecker, true
	default:
		return 0, false
	}
}

// BuildsSessions reports whether the role constructs sessions itself.
func (r Role) BuildsSessions() bool {
	return r == Parent || r == BFD
}

// Set implements pflag.Value.
func (r *Role) Set(raw string) error {
	parsed, err := Parse(raw)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Type implements pflag.Value.
func (r *Role) Type() string {
	return "role"
}

// Parse converts a role name or alias into a Role.
func Parse(raw string) (Role, error) {
	if r, ok := roleAliases[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return r, nil
	}
	return 0, fmt.Errorf("unknown role %q (expected one of %s)", raw, strings.Join(Names(), ", "))
}

// Names returns the canonical role names.
func Names() []string {
	names := make([]string, 0, len(roleNames))
	for _, r := range All() {
		names = append(names, r.String())
	}
	return names
}

// Root is the block-opening keyword shared by every role.
const Root = "bfd_instance"

// Keywords every role keeps live so the interest mask is always recorded.
const (
	KeywordVRRP    = "vrrp"
	KeywordChecker = "checker"
	KeywordWeight  = "weight"
)

// KeywordSet is the result of the role gate: which registries a parse pass
// writes to and which sub-keywords are live.
type KeywordSet struct {
	Sessions bool
	VRRP     bool
	Checker  bool
	live     map[string]struct{}
}

// SelectKeywordSet returns the keywords live for r. A full parse makes every
// keyword live and writes every registry.
func SelectKeywordSet(r Role, full bool) KeywordSet {
	ks := KeywordSet{live: make(map[string]struct{})}

	ks.Sessions = full || r.BuildsSessions()
	ks.VRRP = full || r == VRRP
	ks.Checker = full || r == Checker

	ks.add(KeywordVRRP, KeywordChecker)
	if ks.Sessions {
		ks.add(bfd.Keywords...)
	}
	if ks.VRRP {
		ks.add(KeywordWeight)
	}

	return ks
}

func (k *KeywordSet) add(names ...string) {
	for _, name := range names {
		k.live[name] = struct{}{}
	}
}

// Live reports whether keyword has a real handler in this pass.
func (k KeywordSet) Live(keyword string) bool {
	_, ok := k.live[keyword]
	return ok
}

// Names returns the live keywords sorted alphabetically.
func (k KeywordSet) Names() []string {
	names := make([]string, 0, len(k.live))
	for name := range k.live {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Universe returns every sub-keyword of a bfd_instance block in
// installation order, live or not.
func Universe() []string {
	all := make([]string, 0, len(bfd.Keywords)+3)
	all = append(all, bfd.Keywords...)
	all = append(all, KeywordWeight, KeywordVRRP, KeywordChecker)
	return all
}
