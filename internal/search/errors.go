package search

import (
	"context"
	"errors"
	"fmt"

	"github.com/ngmaloney/bite-terminal/internal/forecast"
	"github.com/ngmaloney/bite-terminal/internal/geocoding"
)

// Stage names the pipeline step that failed
type Stage string

const (
	StageGeocode Stage = "geocode"
	StageWeather Stage = "weather"
	StageScore   Stage = "score"
)

// Kind classifies why a stage failed
type Kind int

const (
	KindUnavailable Kind = iota
	KindNotFound
	KindTimeout
	KindMalformed
)

// String returns a short user-facing reason
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindTimeout:
		return "timed out"
	case KindMalformed:
		return "malformed data"
	default:
		return "unavailable"
	}
}

// Sentinels matched by FetchError.Is according to Kind
var (
	ErrNotFound    = errors.New("not found")
	ErrTimeout     = errors.New("timed out")
	ErrUnavailable = errors.New("unavailable")
	ErrMalformed   = errors.New("malformed data")
)

// FetchError reports a failed search
type FetchError struct {
	Stage Stage
	Kind  Kind
	Err   error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Stage, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's Kind
func (e *FetchError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrTimeout:
		return e.Kind == KindTimeout
	case ErrUnavailable:
		return e.Kind == KindUnavailable
	case ErrMalformed:
		return e.Kind == KindMalformed
	}
	return false
}

// Reason is the text shown in the unavailable state
func (e *FetchError) Reason() string {
	return fmt.Sprintf("%s %s", e.Stage, e.Kind)
}

func classify(stage Stage, stageCtx context.Context, err error) *FetchError {
	kind := KindUnavailable
	switch {
	case errors.Is(err, geocoding.ErrNotFound), errors.Is(err, geocoding.ErrEmptyQuery):
		kind = KindNotFound
	case errors.Is(err, geocoding.ErrMalformed), errors.Is(err, forecast.ErrMalformed):
		kind = KindMalformed
	case errors.Is(err, context.DeadlineExceeded), errors.Is(stageCtx.Err(), context.DeadlineExceeded):
		kind = KindTimeout
	}
	return &FetchError{Stage: stage, Kind: kind, Err: err}
}
