package keyword

import (
	"context"
	"fmt"
	"io"

	"github.com/conneroisu/bfdconf/internal/errors"
	"github.com/conneroisu/bfdconf/internal/logging"
)

// ReportFunc receives every diagnostic raised while reading, in order.
type ReportFunc func(ctx context.Context, diag *errors.ConfigError)

// Reader drives a Table from configuration text.
type Reader struct {
	table  *Table
	logger logging.Logger
	report ReportFunc
}

// Option configures a Reader.
type Option func(*Reader)

// WithLogger sets the logger used for skipped sections.
func WithLogger(l logging.Logger) Option {
	return func(r *Reader) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithReport sets the diagnostic sink.
func WithReport(fn ReportFunc) Option {
	return func(r *Reader) {
		if fn != nil {
			r.report = fn
		}
	}
}

// NewReader creates a reader for t.
func NewReader(t *Table, opts ...Option) *Reader {
	r := &Reader{
		table:  t,
		logger: logging.NewNop(),
		report: func(context.Context, *errors.ConfigError) {},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// skipState discards items until the brace that closes the block being
// skipped, then resumes at depth resume.
type skipState struct {
	active bool
	nest   int
	resume int
}

type pass struct {
	*Reader

	depth   int
	block   *Keyword
	opened  int
	pending *item
	skip    skipState
	last    int
}

// Read consumes src to the end. Configuration problems are reported as
// diagnostics and never stop the read; only a failure of src is returned.
func (r *Reader) Read(ctx context.Context, src io.Reader) error {
	p := &pass{Reader: r}
	lex := newLexer(src)
	r.logger.Debug(ctx, "Reading configuration", "roots", r.table.Roots())

	for {
		it, ok, err := lex.next()
		if err != nil {
			return fmt.Errorf("reading configuration: %w", err)
		}
		if !ok {
			break
		}
		p.last = it.line
		p.step(ctx, it)
	}

	p.finish(ctx)
	return nil
}

func (p *pass) step(ctx context.Context, it item) {
	if p.skip.active {
		p.skipItem(it)
		return
	}

	switch it.kind {
	case itemDirective:
		if p.depth == 0 {
			p.flushPending(ctx)
			held := it
			p.pending = &held
			return
		}
		p.dispatch(ctx, it)

	case itemOpen:
		if p.depth > 0 {
			p.emit(ctx, errors.Field(errors.CodeUnknownKeyword, "",
				"unexpected nested block in %s, skipping it", p.block.Name()).WithLine(it.line))
			p.startSkip(p.depth)
			return
		}
		p.openPending(ctx, it.line)

	case itemClose:
		if p.depth == 0 {
			p.flushPending(ctx)
			p.emit(ctx, errors.Block(errors.CodeUnbalancedBlock, "",
				"unexpected '}' outside a block").WithLine(it.line))
			return
		}
		p.closeBlock(ctx)
	}
}

func (p *pass) skipItem(it item) {
	switch it.kind {
	case itemOpen:
		p.skip.nest++
	case itemClose:
		p.skip.nest--
		if p.skip.nest == 0 {
			p.depth = p.skip.resume
			if p.depth == 0 {
				p.block = nil
			}
			p.skip = skipState{}
		}
	}
}

func (p *pass) startSkip(resume int) {
	p.skip = skipState{active: true, nest: 1, resume: resume}
}

// openPending enters the block of the held root directive.
func (p *pass) openPending(ctx context.Context, line int) {
	d := p.pending
	p.pending = nil
	if d == nil {
		p.emit(ctx, errors.Block(errors.CodeUnbalancedBlock, "",
			"block opened without a keyword, skipping it").WithLine(line))
		p.startSkip(0)
		return
	}

	k, known := p.table.Root(d.tokens[0])
	if !known {
		p.logger.Debug(ctx, "Skipping configuration section",
			"keyword", d.tokens[0], "line", d.line)
		p.startSkip(0)
		return
	}

	if err := k.begin(ctx, Directive{Tokens: d.tokens, Line: d.line}); err != nil {
		p.emitErr(ctx, err, d.line, d.tokens[0])
		if errors.IsBlocking(err) {
			p.startSkip(0)
			return
		}
	}
	p.depth = 1
	p.block = k
	p.opened = d.line
}

// flushPending handles a root directive that was not followed by a block.
func (p *pass) flushPending(ctx context.Context) {
	d := p.pending
	if d == nil {
		return
	}
	p.pending = nil

	k, known := p.table.Root(d.tokens[0])
	if !known {
		p.logger.Debug(ctx, "Skipping configuration keyword",
			"keyword", d.tokens[0], "line", d.line)
		return
	}

	if err := k.begin(ctx, Directive{Tokens: d.tokens, Line: d.line}); err != nil {
		p.emitErr(ctx, err, d.line, d.tokens[0])
		if errors.IsBlocking(err) {
			return
		}
	}
	if err := k.finish(ctx); err != nil {
		p.emitErr(ctx, err, d.line, "")
	}
}

func (p *pass) dispatch(ctx context.Context, it item) {
	kw := it.tokens[0]
	h, ok := p.block.Sub(kw)
	if !ok {
		p.emit(ctx, errors.Field(errors.CodeUnknownKeyword, "",
			"unknown keyword in %s block, ignoring", p.block.Name()).
			WithKeyword(kw).WithLine(it.line))
		return
	}

	err := h(ctx, Directive{Tokens: it.tokens, Line: it.line})
	if err == nil {
		return
	}
	p.emitErr(ctx, err, it.line, kw)
	if errors.IsBlocking(err) {
		p.startSkip(0)
	}
}

func (p *pass) closeBlock(ctx context.Context) {
	k := p.block
	p.depth = 0
	p.block = nil
	if err := k.finish(ctx); err != nil {
		p.emitErr(ctx, err, p.last, "")
	}
}

func (p *pass) finish(ctx context.Context) {
	p.flushPending(ctx)

	switch {
	case p.skip.active:
		p.emit(ctx, errors.Block(errors.CodeUnbalancedBlock, "",
			"end of input inside a skipped block").WithLine(p.last))
		p.skip = skipState{}
	case p.depth > 0:
		p.emit(ctx, errors.Block(errors.CodeUnbalancedBlock, "",
			"missing '}' for %s opened on line %d", p.block.Name(), p.opened).WithLine(p.last))
		p.closeBlock(ctx)
	}
}

// emitErr reports a handler error, filling in the position it was raised at.
func (p *pass) emitErr(ctx context.Context, err error, line int, kw string) {
	if multi, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range multi.Unwrap() {
			p.emitErr(ctx, e, line, kw)
		}
		return
	}

	var ce *errors.ConfigError
	if !errors.As(err, &ce) {
		if errors.Is(err, errors.ErrSkipBlock) {
			return
		}
		ce = errors.Field("", "", "%v", err)
	}
	if ce.Line == 0 {
		ce.WithLine(line)
	}
	if ce.Keyword == "" && kw != "" {
		ce.WithKeyword(kw)
	}
	p.emit(ctx, ce)
}

func (p *pass) emit(ctx context.Context, diag *errors.ConfigError) {
	p.report(ctx, diag)
}
