package ingest

import (
	"context"

	"github.com/conneroisu/bfdconf/internal/bfd"
	"github.com/conneroisu/bfdconf/internal/errors"
	"github.com/conneroisu/bfdconf/internal/metrics"
	"github.com/conneroisu/bfdconf/internal/track"
)

// strategy is what a bfd_instance block means to one registry. A parse pass
// runs one strategy per registry its role writes to.
type strategy interface {
	open(ctx context.Context, name string) error
	close(ctx context.Context, mask bfd.EventMask) error
	abort(ctx context.Context)
}

// sessionStrategy builds sessions.
type sessionStrategy struct {
	builder *bfd.Builder
	metrics metrics.Collector
	active  bool
}

func (s *sessionStrategy) open(_ context.Context, name string) error {
	_, err := s.builder.Open(name)
	if errors.IsBlocking(err) {
		s.metrics.RecordSession(metrics.OutcomeRejected)
		return err
	}
	s.active = true
	return err
}

func (s *sessionStrategy) set(field bfd.Field, raw string) error {
	return s.builder.SetField(field, raw)
}

func (s *sessionStrategy) close(_ context.Context, mask bfd.EventMask) error {
	if !s.active {
		return nil
	}
	s.active = false

	session, err := s.builder.Close(mask)
	if session == nil {
		s.metrics.RecordSession(metrics.OutcomeRejected)
		return err
	}
	s.metrics.RecordSession(metrics.OutcomeAdmitted)
	return err
}

// abort drops the open session. The builder may already have removed it
// when the failing setter was its own.
func (s *sessionStrategy) abort(context.Context) {
	if !s.active {
		return
	}
	s.active = false
	s.builder.Discard()
	s.metrics.RecordSession(metrics.OutcomeRejected)
}

// bindingStrategy builds the bindings of one consumer subsystem.
type bindingStrategy[B track.Binding] struct {
	registry *track.Registry[B]
	full     bool
	metrics  metrics.Collector
}

func (s *bindingStrategy[B]) open(_ context.Context, name string) error {
	_, err := s.registry.Open(name)
	if errors.IsBlocking(err) {
		s.metrics.RecordBinding(s.registry.Owner().String(), metrics.OutcomeRejected)
	}
	return err
}

func (s *bindingStrategy[B]) close(_ context.Context, mask bfd.EventMask) error {
	if _, open := s.registry.Pending(); !open {
		return nil
	}
	outcome := metrics.OutcomeDropped
	if s.registry.Close(mask, s.full) {
		outcome = metrics.OutcomeAdmitted
	}
	s.metrics.RecordBinding(s.registry.Owner().String(), outcome)
	return nil
}

func (s *bindingStrategy[B]) abort(context.Context) {
	if _, open := s.registry.Pending(); !open {
		return
	}
	s.registry.Discard()
	s.metrics.RecordBinding(s.registry.Owner().String(), metrics.OutcomeRejected)
}

// composite runs several strategies on the same block. A block error from
// any of them aborts all of them. The session strategy comes first, so a
// session rejected at close takes its pending bindings with it.
type composite []strategy

func (c composite) open(ctx context.Context, name string) error {
	var errs []error
	for _, s := range c {
		if err := s.open(ctx, name); err != nil {
			errs = append(errs, err)
		}
	}
	err := errors.Join(errs...)
	if errors.IsBlocking(err) {
		c.abort(ctx)
	}
	return err
}

func (c composite) close(ctx context.Context, mask bfd.EventMask) error {
	var errs []error
	for i, s := range c {
		err := s.close(ctx, mask)
		if err == nil {
			continue
		}
		errs = append(errs, err)
		if errors.IsBlocking(err) {
			c[i+1:].abort(ctx)
			break
		}
	}
	return errors.Join(errs...)
}

func (c composite) abort(ctx context.Context) {
	for _, s := range c {
		s.abort(ctx)
	}
}
