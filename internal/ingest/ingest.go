// Package ingest reads bfd_instance blocks from a keepalived-style
// configuration on behalf of one process role.
//
// Parse installs the bfd_instance keyword in a dispatch table, gates its
// sub-keywords by role, and feeds the text through the keyword reader. The
// result holds whatever records the role owns: sessions for the parent and
// BFD processes, VRRP bindings for the VRRP process, and checker bindings for
// the checker process. A full parse builds all three.
package ingest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/zeebo/xxh3"

	"github.com/conneroisu/bfdconf/internal/bfd"
	"github.com/conneroisu/bfdconf/internal/errors"
	"github.com/conneroisu/bfdconf/internal/logging"
	"github.com/conneroisu/bfdconf/internal/metrics"
	"github.com/conneroisu/bfdconf/internal/role"
	"github.com/conneroisu/bfdconf/internal/track"
)

// Options controls a parse pass.
type Options struct {
	// Role is the process role the pass runs as.
	Role role.Role
	// Full makes every keyword live regardless of role, as a validation
	// pass does.
	Full bool
	// Source names the input in logs.
	Source string
	// Logger receives diagnostics. Defaults to a no-op logger.
	Logger logging.Logger
	// Metrics receives parse events. Defaults to a no-op collector.
	Metrics metrics.Collector
}

// Result is what one parse pass derived from the configuration.
type Result struct {
	Role          role.Role
	Full          bool
	Source        string
	HaveInstances bool
	Sessions      []*bfd.Session
	VRRP          []*track.VRRPBinding
	Checker       []*track.CheckerBinding
	Diagnostics   []*errors.ConfigError
	// Digest fingerprints the input text so passes over the same file by
	// different roles can be matched up.
	Digest uint64

	diagnostics *errors.Collector
}

// SessionNames returns admitted session names in declaration order.
func (r *Result) SessionNames() []string {
	names := make([]string, 0, len(r.Sessions))
	for _, s := range r.Sessions {
		names = append(names, s.Name)
	}
	return names
}

// VRRPNames returns VRRP binding names in declaration order.
func (r *Result) VRRPNames() []string {
	names := make([]string, 0, len(r.VRRP))
	for _, b := range r.VRRP {
		names = append(names, b.Name)
	}
	return names
}

// CheckerNames returns checker binding names in declaration order.
func (r *Result) CheckerNames() []string {
	names := make([]string, 0, len(r.Checker))
	for _, b := range r.Checker {
		names = append(names, b.Name)
	}
	return names
}

// Names returns the names of the records the role owns.
func (r *Result) Names() []string {
	switch {
	case r.Full || r.Role.BuildsSessions():
		return r.SessionNames()
	case r.Role == role.VRRP:
		return r.VRRPNames()
	default:
		return r.CheckerNames()
	}
}

// Errors returns field and block diagnostics.
func (r *Result) Errors() []*errors.ConfigError {
	return r.collector().Errors()
}

// Advisories returns advisory diagnostics.
func (r *Result) Advisories() []*errors.ConfigError {
	return r.collector().Advisories()
}

// collector returns the collector of the pass, rebuilding one from
// Diagnostics for results assembled by hand.
func (r *Result) collector() *errors.Collector {
	if r.diagnostics == nil {
		r.diagnostics = errors.NewCollector()
		for _, d := range r.Diagnostics {
			r.diagnostics.Add(d)
		}
	}
	return r.diagnostics
}

// Parse reads src as opts.Role. Configuration problems become diagnostics
// in the result and never stop the parse; only a failure to read src is
// returned as an error.
func Parse(ctx context.Context, src io.Reader, opts Options) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p := newParser(opts)
	perf := logging.StartOperation(p.logger, "parse")

	hasher := xxh3.New()
	if err := p.reader().Read(ctx, io.TeeReader(src, hasher)); err != nil {
		return nil, err
	}

	result := p.result()
	result.Digest = hasher.Sum64()

	duration := perf.End(ctx,
		"sessions", len(result.Sessions),
		"vrrp_bindings", len(result.VRRP),
		"checker_bindings", len(result.Checker),
		"diagnostics", result.collector().Len(),
	)
	p.metrics.RecordParse(opts.Role.String(), duration)

	return result, nil
}

// ParseFile parses the file at path.
func ParseFile(ctx context.Context, path string, opts Options) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening configuration: %w", err)
	}
	defer f.Close()

	if opts.Source == "" {
		opts.Source = path
	}
	return Parse(ctx, f, opts)
}

// ParseAll parses data once per role, in role order, the way each process
// would on startup. opts.Role is ignored.
func ParseAll(ctx context.Context, data []byte, opts Options) ([]*Result, error) {
	results := make([]*Result, 0, len(role.All()))
	for _, r := range role.All() {
		o := opts
		o.Role = r
		result, err := Parse(ctx, bytes.NewReader(data), o)
		if err != nil {
			return nil, fmt.Errorf("parsing as %s: %w", r, err)
		}
		results = append(results, result)
	}
	return results, nil
}
