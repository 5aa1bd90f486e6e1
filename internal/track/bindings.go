package track

import (
	"github.com/conneroisu/bfdconf/internal/bfd"
	"github.com/conneroisu/bfdconf/internal/errors"
	"github.com/conneroisu/bfdconf/internal/validation"
)

// WeightRange bounds the priority adjustment a VRRP instance applies when
// the tracked session goes down.
var WeightRange = validation.Range{Min: -253, Max: 253}

// VRRPBinding is a VRRP process reference to a BFD session.
type VRRPBinding struct {
	Name   string
	Weight int
}

// SessionName implements Binding.
func (v *VRRPBinding) SessionName() string { return v.Name }

// SetWeight parses and applies a signed weight. An invalid token leaves the
// weight unchanged.
func (v *VRRPBinding) SetWeight(raw string) error {
	value, err := WeightRange.Parse(raw)
	if err != nil {
		code := errors.CodeOutOfRange
		if errors.Is(err, validation.ErrNotANumber) {
			code = errors.CodeNotANumber
		}
		return errors.Field(code, v.Name,
			"weight value %s not valid (must be in range %s), ignoring", raw, WeightRange).
			WithKeyword("weight").WithCause(err)
	}
	v.Weight = int(value)
	return nil
}

// CheckerBinding is a checker process reference to a BFD session.
type CheckerBinding struct {
	Name string
}

// SessionName implements Binding.
func (c *CheckerBinding) SessionName() string { return c.Name }

// VRRPRegistry holds VRRP bindings.
type VRRPRegistry = Registry[*VRRPBinding]

// CheckerRegistry holds checker bindings.
type CheckerRegistry = Registry[*CheckerBinding]

// NewVRRP creates the VRRP binding registry.
func NewVRRP() *VRRPRegistry {
	return NewRegistry(bfd.SubsystemVRRP, func(name string) *VRRPBinding {
		return &VRRPBinding{Name: name}
	})
}

// NewChecker creates the checker binding registry.
func NewChecker() *CheckerRegistry {
	return NewRegistry(bfd.SubsystemChecker, func(name string) *CheckerBinding {
		return &CheckerBinding{Name: name}
	})
}
