package ingest

import (
	"bytes"
	"context"
	"net/netip"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/bfdconf/internal/bfd"
	"github.com/conneroisu/bfdconf/internal/errors"
	"github.com/conneroisu/bfdconf/internal/logging"
	"github.com/conneroisu/bfdconf/internal/metrics"
	"github.com/conneroisu/bfdconf/internal/role"
	"github.com/conneroisu/bfdconf/internal/validation"
)

const sampleFile = "testdata/keepalived.conf"

func parse(t *testing.T, r role.Role, full bool, src string) *Result {
	t.Helper()
	result, err := Parse(context.Background(), strings.NewReader(src), Options{Role: r, Full: full})
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

func codes(diags []*errors.ConfigError) []string {
	out := make([]string, 0, len(diags))
	for _, d := range diags {
		out = append(out, d.Code)
	}
	return out
}

func sessionByName(t *testing.T, result *Result, name string) *bfd.Session {
	t.Helper()
	for _, s := range result.Sessions {
		if s.Name == name {
			return s
		}
	}
	t.Fatalf("session %s not found in %v", name, result.SessionNames())
	return nil
}

func TestParseFile_BFDRole(t *testing.T) {
	result, err := ParseFile(context.Background(), sampleFile, Options{Role: role.BFD})
	require.NoError(t, err)

	assert.True(t, result.HaveInstances)
	assert.Equal(t, sampleFile, result.Source)
	assert.Empty(t, result.Diagnostics)
	assert.Equal(t, []string{"BFD-core", "BFD-v6", "BFD-vrrp", "BFD-lvs"}, result.SessionNames())
	assert.Empty(t, result.VRRP)
	assert.Empty(t, result.Checker)

	core := sessionByName(t, result, "BFD-core")
	assert.Equal(t, netip.MustParseAddrPort("192.0.2.1:3784"), core.Neighbor)
	assert.Equal(t, netip.MustParseAddr("192.0.2.254"), core.Source.Addr())
	assert.Equal(t, 50*time.Millisecond, core.MinRx)
	assert.Equal(t, 50*time.Millisecond, core.MinTx)
	assert.Equal(t, 2*time.Second, core.IdleTx)
	assert.EqualValues(t, 3, core.Multiplier)
	assert.EqualValues(t, bfd.ControlTTL, core.TTL)
	assert.Equal(t, 10, core.MaxHops)
	assert.True(t, core.VRRP)
	assert.True(t, core.Checker)
	assert.Equal(t, bfd.StateActive, core.State)

	v6 := sessionByName(t, result, "BFD-v6")
	assert.Equal(t, validation.FamilyIPv6, v6.Family())
	assert.EqualValues(t, 32, v6.TTL)
	assert.True(t, v6.Passive)

	onlyVRRP := sessionByName(t, result, "BFD-vrrp")
	assert.True(t, onlyVRRP.VRRP)
	assert.False(t, onlyVRRP.Checker)

	onlyChecker := sessionByName(t, result, "BFD-lvs")
	assert.False(t, onlyChecker.VRRP)
	assert.True(t, onlyChecker.Checker)
}

func TestParseFile_Missing(t *testing.T) {
	_, err := ParseFile(context.Background(), "testdata/does-not-exist.conf", Options{})
	assert.Error(t, err)
}

func TestParse_VRRPRole(t *testing.T) {
	data, err := os.ReadFile(sampleFile)
	require.NoError(t, err)

	result := parse(t, role.VRRP, false, string(data))

	assert.Empty(t, result.Sessions)
	assert.Empty(t, result.Checker)
	assert.Equal(t, []string{"BFD-core", "BFD-v6", "BFD-vrrp"}, result.VRRPNames())
	assert.Equal(t, -20, result.VRRP[2].Weight)
	assert.Zero(t, result.VRRP[0].Weight)
	assert.Empty(t, result.Diagnostics)
}

func TestParse_CheckerRole(t *testing.T) {
	data, err := os.ReadFile(sampleFile)
	require.NoError(t, err)

	result := parse(t, role.Checker, false, string(data))

	assert.Empty(t, result.Sessions)
	assert.Empty(t, result.VRRP)
	assert.Equal(t, []string{"BFD-core", "BFD-v6", "BFD-lvs"}, result.CheckerNames())
	assert.Equal(t, result.CheckerNames(), result.Names())
}

func TestParse_FullParseKeepsEverything(t *testing.T) {
	data, err := os.ReadFile(sampleFile)
	require.NoError(t, err)

	result := parse(t, role.Checker, true, string(data))

	all := []string{"BFD-core", "BFD-v6", "BFD-vrrp", "BFD-lvs"}
	assert.Equal(t, all, result.SessionNames())
	assert.Equal(t, all, result.VRRPNames())
	assert.Equal(t, all, result.CheckerNames())
	assert.Equal(t, all, result.Names())
	assert.Equal(t, -20, result.VRRP[2].Weight)
}

func TestParse_RolesAreConsistent(t *testing.T) {
	data, err := os.ReadFile(sampleFile)
	require.NoError(t, err)

	results, err := ParseAll(context.Background(), data, Options{})
	require.NoError(t, err)
	require.Len(t, results, len(role.All()))

	byRole := make(map[role.Role]*Result)
	for _, r := range results {
		byRole[r.Role] = r
		assert.Equal(t, results[0].Digest, r.Digest)
	}

	sessions := byRole[role.BFD]
	vrrp := byRole[role.VRRP]
	checker := byRole[role.Checker]

	assert.Equal(t, sessions.SessionNames(), byRole[role.Parent].SessionNames())

	// Liveness and consumer roles derive disjoint, non-empty record sets.
	require.NotEmpty(t, sessions.Sessions)
	require.NotEmpty(t, vrrp.VRRP)
	assert.Empty(t, sessions.VRRP)
	assert.Empty(t, vrrp.Sessions)
	assert.Empty(t, checker.Sessions)

	var forVRRP, forChecker []string
	for _, s := range sessions.Sessions {
		if s.VRRP {
			forVRRP = append(forVRRP, s.Name)
		}
		if s.Checker {
			forChecker = append(forChecker, s.Name)
		}
	}
	assert.Equal(t, forVRRP, vrrp.VRRPNames())
	assert.Equal(t, forChecker, checker.CheckerNames())
}

func TestParse_DefaultTTLByFamily(t *testing.T) {
	result := parse(t, role.BFD, false, `
bfd_instance v4 {
    neighbor_ip 10.0.0.1
}
bfd_instance v6 {
    neighbor_ip fe80::1
}
`)

	assert.EqualValues(t, bfd.ControlTTL, sessionByName(t, result, "v4").TTL)
	assert.EqualValues(t, bfd.ControlHopLimit, sessionByName(t, result, "v6").TTL)
}

func TestParse_MaxHopsClamped(t *testing.T) {
	result := parse(t, role.BFD, false, `
bfd_instance BFD-1 {
    neighbor_ip 10.0.0.1
    ttl 5
    max_hops 20
}
`)

	s := sessionByName(t, result, "BFD-1")
	assert.Equal(t, 5, s.MaxHops)
	assert.LessOrEqual(t, s.MaxHops, int(s.TTL))
	assert.Equal(t, []string{errors.CodeMaxHopsClamped}, codes(result.Advisories()))
	assert.Empty(t, result.Errors())
}

func TestParse_DuplicateName(t *testing.T) {
	result := parse(t, role.BFD, false, `
bfd_instance BFD-1 {
    neighbor_ip 10.0.0.1
    multiplier 3
}
bfd_instance BFD-1 {
    neighbor_ip 10.0.0.2
    multiplier 7
}
`)

	require.Equal(t, []string{"BFD-1"}, result.SessionNames())
	s := result.Sessions[0]
	assert.EqualValues(t, 3, s.Multiplier)
	assert.Equal(t, netip.MustParseAddr("10.0.0.1"), s.Neighbor.Addr())
	require.Equal(t, []string{errors.CodeDuplicateName}, codes(result.Errors()))
	assert.Equal(t, 6, result.Errors()[0].Line)
}

func TestParse_DuplicateNeighbor(t *testing.T) {
	result := parse(t, role.BFD, false, `
bfd_instance BFD-1 {
    neighbor_ip 10.0.0.1
}
bfd_instance BFD-2 {
    neighbor_ip 10.0.0.1
    min_rx 100
}
bfd_instance BFD-3 {
    neighbor_ip 10.0.0.3
}
`)

	assert.Equal(t, []string{"BFD-1", "BFD-3"}, result.SessionNames())
	assert.Equal(t, []string{errors.CodeDuplicateNeighbor}, codes(result.Errors()))
}

func TestParse_FieldErrorKeepsDefaults(t *testing.T) {
	result := parse(t, role.BFD, false, `
bfd_instance BFD-1 {
    neighbor_ip 10.0.0.1
    min_rx 200
    multiplier 0
    min_tx fast
    idle_tx
}
`)

	s := sessionByName(t, result, "BFD-1")
	assert.EqualValues(t, bfd.DefaultMultiplier, s.Multiplier)
	assert.Equal(t, bfd.DefaultMinTx, s.MinTx)
	assert.Equal(t, bfd.DefaultIdleTx, s.IdleTx)
	assert.Equal(t, 200*time.Millisecond, s.MinRx)
	assert.Equal(t,
		[]string{errors.CodeOutOfRange, errors.CodeNotANumber, errors.CodeMissingArgument},
		codes(result.Errors()))
}

func TestParse_AboveSensibleIsAdvisory(t *testing.T) {
	result := parse(t, role.BFD, false, `
bfd_instance BFD-1 {
    neighbor_ip 10.0.0.1
    min_rx 5000
}
`)

	assert.Equal(t, 5*time.Second, sessionByName(t, result, "BFD-1").MinRx)
	assert.Equal(t, []string{errors.CodeAboveSensible}, codes(result.Advisories()))
}

func TestParse_BlockErrorsRejectSession(t *testing.T) {
	tests := []struct {
		name string
		body string
		code string
	}{
		{name: "malformed neighbor", body: "neighbor_ip 10.0.0.256", code: errors.CodeBadAddress},
		{name: "malformed source", body: "neighbor_ip 10.0.0.1\n source_ip nowhere", code: errors.CodeBadAddress},
		{name: "no neighbor", body: "min_rx 100", code: errors.CodeNoNeighbor},
		{name: "family mismatch", body: "neighbor_ip 2001:db8::1\n source_ip 10.0.0.1", code: errors.CodeFamilyMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := "bfd_instance BFD-1 {\n " + tt.body + "\n multiplier 3\n}\n" +
				"bfd_instance BFD-2 {\n neighbor_ip 10.0.0.9\n}\n"
			result := parse(t, role.BFD, false, src)

			assert.Equal(t, []string{"BFD-2"}, result.SessionNames())
			require.Equal(t, []string{tt.code}, codes(result.Errors()))
			assert.Equal(t, errors.SeverityBlock, result.Errors()[0].Severity)
		})
	}
}

func TestParse_NameTooLong(t *testing.T) {
	long := strings.Repeat("a", bfd.NameMax)
	src := "bfd_instance " + long + " {\n neighbor_ip 10.0.0.1\n vrrp\n}\n"

	for _, r := range role.All() {
		result := parse(t, r, false, src)
		assert.Empty(t, result.Names(), "role %s", r)
		assert.Equal(t, []string{errors.CodeNameTooLong}, codes(result.Errors()), "role %s", r)
	}
}

func TestParse_MissingName(t *testing.T) {
	result := parse(t, role.BFD, false, "bfd_instance {\n neighbor_ip 10.0.0.1\n}\n")

	assert.True(t, result.HaveInstances)
	assert.Empty(t, result.Sessions)
	assert.Equal(t, []string{errors.CodeMissingArgument}, codes(result.Errors()))
}

func TestParse_DuplicateBinding(t *testing.T) {
	src := `
bfd_instance BFD-1 {
    weight 10
}
bfd_instance BFD-1 {
    weight 20
}
`
	vrrp := parse(t, role.VRRP, false, src)
	require.Equal(t, []string{"BFD-1"}, vrrp.VRRPNames())
	assert.Equal(t, 10, vrrp.VRRP[0].Weight)
	assert.Equal(t, []string{errors.CodeDuplicateBinding}, codes(vrrp.Errors()))

	checker := parse(t, role.Checker, false, src)
	assert.Equal(t, []string{"BFD-1"}, checker.CheckerNames())
}

func TestParse_WeightOutOfRange(t *testing.T) {
	result := parse(t, role.VRRP, false, "bfd_instance BFD-1 {\n weight 300\n}\n")

	require.Len(t, result.VRRP, 1)
	assert.Zero(t, result.VRRP[0].Weight)
	assert.Equal(t, []string{errors.CodeOutOfRange}, codes(result.Errors()))
}

func TestParse_RoleGateSilencesForeignKeywords(t *testing.T) {
	src := `
bfd_instance BFD-1 {
    neighbor_ip not-an-address
    multiplier 0
    weight 999
}
`
	vrrp := parse(t, role.VRRP, false, src)
	assert.Equal(t, []string{"BFD-1"}, vrrp.VRRPNames())
	assert.Equal(t, []string{errors.CodeOutOfRange}, codes(vrrp.Diagnostics))

	checker := parse(t, role.Checker, false, src)
	assert.Equal(t, []string{"BFD-1"}, checker.CheckerNames())
	assert.Empty(t, checker.Diagnostics)

	bfdRole := parse(t, role.BFD, false, src)
	assert.Empty(t, bfdRole.Sessions)
	assert.Equal(t, []string{errors.CodeBadAddress}, codes(bfdRole.Diagnostics))
}

func TestParse_EnablementFromEventMask(t *testing.T) {
	tests := []struct {
		name    string
		events  string
		vrrp    bool
		checker bool
	}{
		{name: "none declared", events: "", vrrp: true, checker: true},
		{name: "vrrp only", events: "vrrp", vrrp: true, checker: false},
		{name: "checker only", events: "checker", vrrp: false, checker: true},
		{name: "both", events: "vrrp\n checker", vrrp: true, checker: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := "bfd_instance BFD-1 {\n neighbor_ip 10.0.0.1\n " + tt.events + "\n}\n"

			sessions := parse(t, role.BFD, false, src)
			s := sessionByName(t, sessions, "BFD-1")
			assert.Equal(t, tt.vrrp, s.VRRP)
			assert.Equal(t, tt.checker, s.Checker)

			assert.Equal(t, tt.vrrp, len(parse(t, role.VRRP, false, src).VRRP) == 1)
			assert.Equal(t, tt.checker, len(parse(t, role.Checker, false, src).Checker) == 1)
		})
	}
}

func TestParse_MaskResetsPerBlock(t *testing.T) {
	src := `
bfd_instance BFD-1 {
    neighbor_ip 10.0.0.1
    checker
}
bfd_instance BFD-2 {
    neighbor_ip 10.0.0.2
}
`
	vrrp := parse(t, role.VRRP, false, src)
	assert.Equal(t, []string{"BFD-2"}, vrrp.VRRPNames())

	sessions := parse(t, role.BFD, false, src)
	assert.True(t, sessionByName(t, sessions, "BFD-2").VRRP)
}

func TestParse_FullParseRejectionDropsBindings(t *testing.T) {
	tests := []struct {
		name     string
		rejected string
	}{
		{
			name:     "malformed neighbor",
			rejected: "weight 5\n    neighbor_ip bogus",
		},
		{
			name:     "no neighbor",
			rejected: "weight 5",
		},
		{
			name:     "family mismatch",
			rejected: "neighbor_ip 10.0.0.1\n    source_ip 2001:db8::1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parse(t, role.Parent, true, `
bfd_instance BFD-1 {
    `+tt.rejected+`
}
bfd_instance BFD-2 {
    neighbor_ip 10.0.0.2
}
`)

			assert.Equal(t, []string{"BFD-2"}, result.SessionNames())
			assert.Equal(t, []string{"BFD-2"}, result.VRRPNames())
			assert.Equal(t, []string{"BFD-2"}, result.CheckerNames())
			assert.NotEmpty(t, result.Errors())
		})
	}
}

func TestResult_PartitionsHandBuiltDiagnostics(t *testing.T) {
	r := &Result{Diagnostics: []*errors.ConfigError{
		errors.Advisory(errors.CodeAboveSensible, "BFD-1", "large"),
		errors.Block(errors.CodeNoNeighbor, "BFD-1", "no neighbor"),
	}}

	assert.Equal(t, []string{errors.CodeNoNeighbor}, codes(r.Errors()))
	assert.Equal(t, []string{errors.CodeAboveSensible}, codes(r.Advisories()))
}

func TestParse_NoInstances(t *testing.T) {
	result := parse(t, role.BFD, false, "global_defs {\n router_id x\n}\n")

	assert.False(t, result.HaveInstances)
	assert.Empty(t, result.Sessions)
	assert.Empty(t, result.Diagnostics)
}

func TestParse_DigestTracksInput(t *testing.T) {
	a := parse(t, role.BFD, false, "bfd_instance A {\n neighbor_ip 10.0.0.1\n}\n")
	b := parse(t, role.VRRP, false, "bfd_instance A {\n neighbor_ip 10.0.0.1\n}\n")
	c := parse(t, role.BFD, false, "bfd_instance B {\n neighbor_ip 10.0.0.1\n}\n")

	assert.Equal(t, a.Digest, b.Digest)
	assert.NotEqual(t, a.Digest, c.Digest)
}

func TestParse_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Parse(ctx, strings.NewReader(""), Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParse_LogsDiagnostics(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewLogger(&logging.LoggerConfig{Level: logging.LevelInfo, Format: "json", Output: &buf})

	_, err := Parse(context.Background(), strings.NewReader(`
bfd_instance BFD-1 {
    neighbor_ip 10.0.0.1
    min_rx 2000
    multiplier 11
}
`), Options{Role: role.BFD, Logger: logger, Source: "inline"})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"level":"INFO"`)
	assert.Contains(t, out, `"code":"ABOVE_SENSIBLE"`)
	assert.Contains(t, out, `"level":"ERROR"`)
	assert.Contains(t, out, `"code":"OUT_OF_RANGE"`)
	assert.Contains(t, out, `"source":"inline"`)
}

func TestParse_RecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector := metrics.NewPrometheus(reg, "test")

	_, err := Parse(context.Background(), strings.NewReader(`
bfd_instance BFD-1 {
    neighbor_ip 10.0.0.1
}
bfd_instance BFD-2 {
    min_rx 10
}
`), Options{Role: role.BFD, Metrics: collector})
	require.NoError(t, err)

	families, err := reg.Gather()
	require.NoError(t, err)

	got := make(map[string]float64)
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			key := mf.GetName()
			for _, lp := range m.GetLabel() {
				key += "/" + lp.GetValue()
			}
			if m.GetCounter() != nil {
				got[key] = m.GetCounter().GetValue()
			}
		}
	}

	assert.InDelta(t, 1, got["test_bfd_sessions_total/admitted"], 0)
	assert.InDelta(t, 1, got["test_bfd_sessions_total/rejected"], 0)
	assert.InDelta(t, 1, got["test_parse_total/bfd"], 0)
	assert.InDelta(t, 1, got["test_parse_diagnostics_total/NO_NEIGHBOR/block"], 0)
}
