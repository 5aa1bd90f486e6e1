package ingest

import (
	"context"

	"github.com/conneroisu/bfdconf/internal/bfd"
	"github.com/conneroisu/bfdconf/internal/errors"
	"github.com/conneroisu/bfdconf/internal/keyword"
	"github.com/conneroisu/bfdconf/internal/logging"
	"github.com/conneroisu/bfdconf/internal/metrics"
	"github.com/conneroisu/bfdconf/internal/role"
	"github.com/conneroisu/bfdconf/internal/track"
)

// cursor is the per-block state of a parse pass.
type cursor struct {
	name string
	mask bfd.EventMask
}

type parser struct {
	opts    Options
	logger  logging.Logger
	metrics metrics.Collector
	gate    role.KeywordSet

	sessions *sessionStrategy
	vrrp     *track.VRRPRegistry
	checker  *track.CheckerRegistry
	strategy composite

	cursor        cursor
	haveInstances bool
	diagnostics   *errors.Collector
}

func newParser(opts Options) *parser {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	collector := opts.Metrics
	if collector == nil {
		collector = metrics.NewNop()
	}

	p := &parser{
		opts:        opts,
		logger:      logger.WithComponent("ingest").With("role", opts.Role.String(), "source", opts.Source),
		metrics:     collector,
		gate:        role.SelectKeywordSet(opts.Role, opts.Full),
		vrrp:        track.NewVRRP(),
		checker:     track.NewChecker(),
		diagnostics: errors.NewCollector(),
	}

	if p.gate.Sessions {
		p.sessions = &sessionStrategy{builder: bfd.NewBuilder(nil), metrics: collector}
		p.strategy = append(p.strategy, p.sessions)
	}
	if p.gate.VRRP {
		p.strategy = append(p.strategy, &bindingStrategy[*track.VRRPBinding]{
			registry: p.vrrp, full: opts.Full, metrics: collector,
		})
	}
	if p.gate.Checker {
		p.strategy = append(p.strategy, &bindingStrategy[*track.CheckerBinding]{
			registry: p.checker, full: opts.Full, metrics: collector,
		})
	}

	return p
}

// table installs bfd_instance with every sub-keyword bound to Nop, then
// rebinds the ones the role gate makes live.
func (p *parser) table() *keyword.Table {
	t := keyword.NewTable()
	root := t.InstallRoot(role.Root, p.openBlock).OnEnd(p.closeBlock)

	for _, kw := range role.Universe() {
		root.Install(kw, keyword.Nop)
	}

	for _, kw := range root.Subs() {
		if !p.gate.Live(kw) {
			continue
		}
		root.Rebind(kw, p.guard(p.handlerFor(kw)))
	}

	return t
}

func (p *parser) reader() *keyword.Reader {
	return keyword.NewReader(p.table(),
		keyword.WithLogger(p.logger),
		keyword.WithReport(p.report),
	)
}

func (p *parser) handlerFor(kw string) keyword.Handler {
	switch kw {
	case role.KeywordVRRP:
		return p.declare(bfd.SubsystemVRRP)
	case role.KeywordChecker:
		return p.declare(bfd.SubsystemChecker)
	case role.KeywordWeight:
		return p.weight
	}

	field, _ := bfd.FieldForKeyword(kw)
	return p.field(field)
}

// guard aborts every strategy when a handler rejects the block, so the
// block leaves nothing behind in any registry.
func (p *parser) guard(h keyword.Handler) keyword.Handler {
	return func(ctx context.Context, d keyword.Directive) error {
		err := h(ctx, d)
		if errors.IsBlocking(err) {
			p.strategy.abort(ctx)
		}
		return err
	}
}

func (p *parser) openBlock(ctx context.Context, d keyword.Directive) error {
	p.haveInstances = true
	p.cursor = cursor{}

	name, ok := d.Arg(0)
	if !ok {
		return errors.Block(errors.CodeMissingArgument, "", "%s requires a name", role.Root).
			WithKeyword(role.Root)
	}
	p.cursor.name = name

	return p.strategy.open(ctx, name)
}

func (p *parser) closeBlock(ctx context.Context) error {
	err := p.strategy.close(ctx, p.cursor.mask)
	p.cursor = cursor{}
	return err
}

func (p *parser) declare(s bfd.Subsystem) keyword.Handler {
	return func(context.Context, keyword.Directive) error {
		p.cursor.mask.Set(s)
		return nil
	}
}

func (p *parser) field(f bfd.Field) keyword.Handler {
	return func(_ context.Context, d keyword.Directive) error {
		raw, ok := d.Arg(0)
		if !ok && f.TakesArgument() {
			return errors.Field(errors.CodeMissingArgument, p.cursor.name,
				"%s requires a value, ignoring", d.Keyword()).WithKeyword(d.Keyword())
		}
		return p.sessions.set(f, raw)
	}
}

func (p *parser) weight(_ context.Context, d keyword.Directive) error {
	raw, ok := d.Arg(0)
	if !ok {
		return errors.Field(errors.CodeMissingArgument, p.cursor.name,
			"weight requires a value, ignoring").WithKeyword(d.Keyword())
	}
	b, open := p.vrrp.Pending()
	if !open {
		return errors.Field(errors.CodeNoOpenRecord, p.cursor.name,
			"no open VRRP binding for weight").WithKeyword(d.Keyword())
	}
	return b.SetWeight(raw)
}

// report records a diagnostic and logs it. Advisories and duplicate
// bindings are informational; everything else is a configuration error.
func (p *parser) report(ctx context.Context, diag *errors.ConfigError) {
	p.diagnostics.Add(diag)
	p.metrics.RecordDiagnostic(diag.Severity.String(), diag.Code)

	fields := []interface{}{
		"code", diag.Code,
		"severity", diag.Severity.String(),
		"line", diag.Line,
	}
	if diag.Record != "" {
		fields = append(fields, "instance", diag.Record)
	}
	if diag.Keyword != "" {
		fields = append(fields, "keyword", diag.Keyword)
	}

	if errors.IsAdvisory(diag) || errors.HasCode(diag, errors.CodeDuplicateBinding) {
		p.logger.Info(ctx, diag.Error(), fields...)
		return
	}
	p.logger.Error(ctx, diag, "Configuration error", fields...)
}

func (p *parser) result() *Result {
	r := &Result{
		Role:          p.opts.Role,
		Full:          p.opts.Full,
		Source:        p.opts.Source,
		HaveInstances: p.haveInstances,
		VRRP:          p.vrrp.All(),
		Checker:       p.checker.All(),
		Diagnostics:   p.diagnostics.All(),
		diagnostics:   p.diagnostics,
	}
	if p.sessions != nil {
		r.Sessions = p.sessions.builder.Registry().All()
	} else {
		r.Sessions = make([]*bfd.Session, 0)
	}
	return r
}
