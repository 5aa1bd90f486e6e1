//go:build property
// +build property

package validation

import (
	"strconv"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestRangeProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)
	r := Range{Min: 1, Max: 10, Sensible: 8}

	properties.Property("formatted integers parse back inside the range", prop.ForAll(
		func(v int64) bool {
			got, err := r.Parse(strconv.FormatInt(v, 10))
			if r.Contains(v) {
				return err == nil && got == v
			}
			return err != nil
		},
		gen.Int64Range(-100, 100),
	))

	properties.Property("advisory only above the soft ceiling", prop.ForAll(
		func(v int64) bool {
			return r.AboveSensible(v) == (v > 8)
		},
		gen.Int64Range(1, 10),
	))

	properties.TestingRun(t)
}

func TestAddressProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("dotted quads parse as IPv4 with the default port", prop.ForAll(
		func(a, b, c, d uint8) bool {
			raw := strconv.Itoa(int(a)) + "." + strconv.Itoa(int(b)) + "." +
				strconv.Itoa(int(c)) + "." + strconv.Itoa(int(d))
			ap, err := ParseAddress(raw, 3784)
			return err == nil && FamilyOf(ap) == FamilyIPv4 && ap.Port() == 3784
		},
		gen.UInt8(), gen.UInt8(), gen.UInt8(), gen.UInt8(),
	))

	properties.TestingRun(t)
}
