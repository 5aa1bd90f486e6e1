package track

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/bfdconf/internal/bfd"
	"github.com/conneroisu/bfdconf/internal/errors"
)

func TestRegistry_OpenAndClose(t *testing.T) {
	reg := NewVRRP()
	assert.Equal(t, bfd.SubsystemVRRP, reg.Owner())

	b, err := reg.Open("BFD-1")
	require.NoError(t, err)
	assert.Equal(t, "BFD-1", b.SessionName())
	assert.Zero(t, b.Weight)

	pending, ok := reg.Pending()
	assert.True(t, ok)
	assert.Same(t, b, pending)

	assert.True(t, reg.Close(0, false))
	_, ok = reg.Pending()
	assert.False(t, ok)
	assert.Equal(t, []string{"BFD-1"}, reg.Names())
}

func TestRegistry_DuplicateRejected(t *testing.T) {
	reg := NewChecker()

	_, err := reg.Open("BFD-1")
	require.NoError(t, err)
	require.True(t, reg.Close(0, false))

	dup, err := reg.Open("BFD-1")
	assert.Nil(t, dup)
	assert.True(t, errors.IsBlocking(err))
	assert.True(t, errors.HasCode(err, errors.CodeDuplicateBinding))
	assert.Equal(t, 1, reg.Len())

	_, ok := reg.Pending()
	assert.False(t, ok)
}

func TestRegistry_DuplicateWhilePending(t *testing.T) {
	reg := NewVRRP()

	_, err := reg.Open("BFD-1")
	require.NoError(t, err)

	_, err = reg.Open("BFD-1")
	assert.True(t, errors.HasCode(err, errors.CodeDuplicateBinding))
	assert.Equal(t, 1, reg.Len())
}

func TestRegistry_NameLimits(t *testing.T) {
	reg := NewVRRP()

	_, err := reg.Open(strings.Repeat("n", bfd.NameMax))
	assert.True(t, errors.HasCode(err, errors.CodeNameTooLong))

	_, err = reg.Open("")
	assert.True(t, errors.HasCode(err, errors.CodeMissingArgument))
	assert.Zero(t, reg.Len())
}

func TestRegistry_CloseDecision(t *testing.T) {
	tests := []struct {
		name  string
		reg   func(t *testing.T) interface{ Close(bfd.EventMask, bool) bool }
		mask  bfd.EventMask
		full  bool
		kept  bool
		after int
	}{
		{
			name: "vrrp binding, nothing declared",
			reg:  openVRRP, mask: 0, kept: true, after: 1,
		},
		{
			name: "vrrp binding, vrrp declared",
			reg:  openVRRP, mask: bfd.EventMask(bfd.SubsystemVRRP), kept: true, after: 1,
		},
		{
			name: "vrrp binding, only checker declared",
			reg:  openVRRP, mask: bfd.EventMask(bfd.SubsystemChecker), kept: false, after: 0,
		},
		{
			name: "vrrp binding, only checker declared, full parse",
			reg:  openVRRP, mask: bfd.EventMask(bfd.SubsystemChecker), full: true, kept: true, after: 1,
		},
		{
			name: "checker binding, only vrrp declared",
			reg:  openChecker, mask: bfd.EventMask(bfd.SubsystemVRRP), kept: false, after: 0,
		},
		{
			name: "checker binding, checker declared",
			reg:  openChecker, mask: bfd.EventMask(bfd.SubsystemChecker), kept: true, after: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := tt.reg(t)
			assert.Equal(t, tt.kept, reg.Close(tt.mask, tt.full))
			assert.Equal(t, tt.after, reg.(interface{ Len() int }).Len())
		})
	}
}

func openVRRP(t *testing.T) interface{ Close(bfd.EventMask, bool) bool } {
	t.Helper()
	reg := NewVRRP()
	_, err := reg.Open("BFD-1")
	require.NoError(t, err)
	return reg
}

func openChecker(t *testing.T) interface{ Close(bfd.EventMask, bool) bool } {
	t.Helper()
	reg := NewChecker()
	_, err := reg.Open("BFD-1")
	require.NoError(t, err)
	return reg
}

func TestRegistry_RejectedCloseOnlyTouchesPending(t *testing.T) {
	reg := NewVRRP()

	_, err := reg.Open("BFD-1")
	require.NoError(t, err)
	require.True(t, reg.Close(0, false))

	_, err = reg.Open("BFD-2")
	require.NoError(t, err)
	assert.False(t, reg.Close(bfd.EventMask(bfd.SubsystemChecker), false))

	assert.Equal(t, []string{"BFD-1"}, reg.Names())
}

func TestRegistry_CloseWithoutPending(t *testing.T) {
	reg := NewVRRP()
	assert.False(t, reg.Close(0, false))
}

func TestRegistry_Discard(t *testing.T) {
	reg := NewChecker()

	_, err := reg.Open("BFD-1")
	require.NoError(t, err)
	reg.Discard()

	assert.Zero(t, reg.Len())
	assert.NotPanics(t, reg.Discard)
}

func TestVRRPBinding_SetWeight(t *testing.T) {
	tests := []struct {
		raw      string
		expected int
		code     string
	}{
		{raw: "50", expected: 50},
		{raw: "-253", expected: -253},
		{raw: "253", expected: 253},
		{raw: "254", code: errors.CodeOutOfRange},
		{raw: "-254", code: errors.CodeOutOfRange},
		{raw: "heavy", code: errors.CodeNotANumber},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			b := &VRRPBinding{Name: "BFD-1"}
			err := b.SetWeight(tt.raw)
			if tt.code != "" {
				assert.True(t, errors.HasCode(err, tt.code))
				assert.Equal(t, errors.SeverityField, errors.SeverityOf(err))
				assert.Zero(t, b.Weight)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, b.Weight)
		})
	}
}

func TestRegistry_LookupAndAll(t *testing.T) {
	reg := NewVRRP()
	for _, name := range []string{"a", "b", "c"} {
		_, err := reg.Open(name)
		require.NoError(t, err)
		reg.Close(0, false)
	}

	b, ok := reg.Lookup("b")
	require.True(t, ok)
	assert.Equal(t, "b", b.Name)

	_, ok = reg.Lookup("z")
	assert.False(t, ok)

	all := reg.All()
	require.Len(t, all, 3)
	all[0] = nil
	assert.NotNil(t, reg.All()[0])
}
