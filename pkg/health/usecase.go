package health

import (
	"context"
	"errors"
)

// Checker pings one backing store.
type Checker interface {
	Name() string
	Check(ctx context.Context) error
}

// Failure is one checker that did not pass.
type Failure struct {
	Name string
	Err  error
}

func (f Failure) Error() string { return f.Name + ": " + f.Err.Error() }

func (f Failure) Unwrap() error { return f.Err }

// ReadinessUseCase is served by GET /api/ready.
type ReadinessUseCase interface {
	Ready(ctx context.Context) error
	Report(ctx context.Context) []Failure
}

type service struct {
	checkers []Checker
}

// NewService reports ready when every checker passes. No checkers means ready.
func NewService(checkers ...Checker) ReadinessUseCase {
	return &service{checkers: checkers}
}

// Report runs every checker and returns the failures in checker order,
// so a broken store never hides another one.
func (s *service) Report(ctx context.Context) []Failure {
	var failures []Failure
	for _, ch := range s.checkers {
		if err := ch.Check(ctx); err != nil {
			failures = append(failures, Failure{Name: ch.Name(), Err: err})
		}
	}
	return failures
}

// Ready joins the failures of Report.
func (s *service) Ready(ctx context.Context) error {
	failures := s.Report(ctx)
	if len(failures) == 0 {
		return nil
	}
	errs := make([]error, 0, len(failures))
	for _, f := range failures {
		errs = append(errs, f)
	}
	return errors.Join(errs...)
}
