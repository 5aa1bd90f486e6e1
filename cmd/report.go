package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/conneroisu/bfdconf/internal/bfd"
	"github.com/conneroisu/bfdconf/internal/errors"
	"github.com/conneroisu/bfdconf/internal/ingest"
)

type sessionView struct {
	Name       string `json:"name" yaml:"name"`
	Neighbor   string `json:"neighbor" yaml:"neighbor"`
	Source     string `json:"source,omitempty" yaml:"source,omitempty"`
	MinRx      string `json:"min_rx" yaml:"min_rx"`
	MinTx      string `json:"min_tx" yaml:"min_tx"`
	IdleTx     string `json:"idle_tx" yaml:"idle_tx"`
	Multiplier uint8  `json:"multiplier" yaml:"multiplier"`
	Passive    bool   `json:"passive" yaml:"passive"`
	TTL        uint8  `json:"ttl" yaml:"ttl"`
	MaxHops    int    `json:"max_hops" yaml:"max_hops"`
	VRRP       bool   `json:"vrrp" yaml:"vrrp"`
	Checker    bool   `json:"checker" yaml:"checker"`
}

type bindingView struct {
	Name   string `json:"name" yaml:"name"`
	Weight *int   `json:"weight,omitempty" yaml:"weight,omitempty"`
}

type diagnosticView struct {
	Line     int    `json:"line,omitempty" yaml:"line,omitempty"`
	Severity string `json:"severity" yaml:"severity"`
	Code     string `json:"code,omitempty" yaml:"code,omitempty"`
	Instance string `json:"instance,omitempty" yaml:"instance,omitempty"`
	Keyword  string `json:"keyword,omitempty" yaml:"keyword,omitempty"`
	Message  string `json:"message" yaml:"message"`
}

type reportView struct {
	Role          string           `json:"role" yaml:"role"`
	Full          bool             `json:"full" yaml:"full"`
	Source        string           `json:"source" yaml:"source"`
	Digest        string           `json:"digest" yaml:"digest"`
	HaveInstances bool             `json:"have_instances" yaml:"have_instances"`
	Sessions      []sessionView    `json:"sessions,omitempty" yaml:"sessions,omitempty"`
	VRRP          []bindingView    `json:"vrrp,omitempty" yaml:"vrrp,omitempty"`
	Checker       []bindingView    `json:"checker,omitempty" yaml:"checker,omitempty"`
	Diagnostics   []diagnosticView `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

func digestString(d uint64) string {
	return fmt.Sprintf("%016x", d)
}

func newSessionView(s *bfd.Session) sessionView {
	v := sessionView{
		Name:       s.Name,
		Neighbor:   s.Neighbor.String(),
		MinRx:      s.MinRx.String(),
		MinTx:      s.MinTx.String(),
		IdleTx:     s.IdleTx.String(),
		Multiplier: s.Multiplier,
		Passive:    s.Passive,
		TTL:        s.TTL,
		MaxHops:    s.MaxHops,
		VRRP:       s.VRRP,
		Checker:    s.Checker,
	}
	if s.HasSource() {
		v.Source = s.Source.String()
	}
	return v
}

func newDiagnosticView(d *errors.ConfigError) diagnosticView {
	msg := d.Message
	if d.Cause != nil {
		msg += ": " + d.Cause.Error()
	}
	return diagnosticView{
		Line:     d.Line,
		Severity: d.Severity.String(),
		Code:     d.Code,
		Instance: d.Record,
		Keyword:  d.Keyword,
		Message:  msg,
	}
}

func newReportView(r *ingest.Result) reportView {
	v := reportView{
		Role:          r.Role.String(),
		Full:          r.Full,
		Source:        r.Source,
		Digest:        digestString(r.Digest),
		HaveInstances: r.HaveInstances,
	}
	for _, s := range r.Sessions {
		v.Sessions = append(v.Sessions, newSessionView(s))
	}
	for _, b := range r.VRRP {
		weight := b.Weight
		v.VRRP = append(v.VRRP, bindingView{Name: b.Name, Weight: &weight})
	}
	for _, b := range r.Checker {
		v.Checker = append(v.Checker, bindingView{Name: b.Name})
	}
	for _, d := range r.Diagnostics {
		v.Diagnostics = append(v.Diagnostics, newDiagnosticView(d))
	}
	return v
}

// encode writes v as JSON or YAML, or calls text for the text format.
func encode(w io.Writer, format string, v any, text func() error) error {
	switch format {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(v)
	case "yaml":
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(v); err != nil {
			return err
		}
		return encoder.Close()
	default:
		return text()
	}
}

func writeReport(w io.Writer, format string, r *ingest.Result) error {
	v := newReportView(r)
	return encode(w, format, v, func() error {
		return writeReportText(w, v)
	})
}

func writeReportText(w io.Writer, v reportView) error {
	mode := ""
	if v.Full {
		mode = ", full"
	}
	fmt.Fprintf(w, "%s (role %s%s, digest %s)\n", v.Source, v.Role, mode, v.Digest)

	if !v.HaveInstances {
		fmt.Fprintln(w, "no bfd_instance blocks")
	}

	if len(v.Sessions) > 0 {
		fmt.Fprintf(w, "sessions: %d\n", len(v.Sessions))
		for _, s := range v.Sessions {
			fmt.Fprintf(w, "  %s neighbor %s", s.Name, s.Neighbor)
			if s.Source != "" {
				fmt.Fprintf(w, " source %s", s.Source)
			}
			fmt.Fprintf(w, " min_rx %s min_tx %s idle_tx %s multiplier %d ttl %d",
				s.MinRx, s.MinTx, s.IdleTx, s.Multiplier, s.TTL)
			if s.MaxHops != bfd.MaxHopsUnlimited {
				fmt.Fprintf(w, " max_hops %d", s.MaxHops)
			}
			if s.Passive {
				fmt.Fprint(w, " passive")
			}
			fmt.Fprintln(w)
		}
	}

	if len(v.VRRP) > 0 {
		fmt.Fprintf(w, "vrrp bindings: %d\n", len(v.VRRP))
		for _, b := range v.VRRP {
			fmt.Fprintf(w, "  %s weight %d\n", b.Name, *b.Weight)
		}
	}

	if len(v.Checker) > 0 {
		fmt.Fprintf(w, "checker bindings: %d\n", len(v.Checker))
		for _, b := range v.Checker {
			fmt.Fprintf(w, "  %s\n", b.Name)
		}
	}

	if len(v.Diagnostics) > 0 {
		fmt.Fprintf(w, "diagnostics: %d\n", len(v.Diagnostics))
		for _, d := range v.Diagnostics {
			fmt.Fprintf(w, "  line %d: %s [%s]", d.Line, d.Severity, d.Code)
			if d.Instance != "" {
				fmt.Fprintf(w, " instance %s:", d.Instance)
			}
			if d.Keyword != "" {
				fmt.Fprintf(w, " %s:", d.Keyword)
			}
			fmt.Fprintf(w, " %s\n", d.Message)
		}
	}

	return nil
}
