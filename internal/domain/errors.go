package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfiguration reports an invalid locale graph write (fallback cycle, unknown fallback).
	ErrConfiguration = errors.New("localize: configuration error")
	// ErrNotConfigured reports that a required setting, such as the default locale, is absent.
	ErrNotConfigured = errors.New("localize: not configured")
	// ErrResolutionMiss reports that no value exists anywhere in the fallback chain.
	ErrResolutionMiss = errors.New("localize: resolution miss")
	// ErrInterpolation reports a template placeholder without a matching parameter.
	ErrInterpolation = errors.New("localize: interpolation error")
	// ErrNotFound reports an unknown entity, field, locale or message key.
	ErrNotFound = errors.New("localize: not found")
	// ErrCancelled reports a resolution aborted by the caller's context.
	ErrCancelled = errors.New("localize: cancelled")
	// ErrInvalidTransition reports a status change the workflow does not allow.
	ErrInvalidTransition = errors.New("localize: invalid status transition")
	// ErrValidation reports malformed input.
	ErrValidation = errors.New("localize: validation failed")
)

// ConfigurationError describes a rejected locale graph write.
type ConfigurationError struct {
	Reason string
	Locale string
	Path   []string
}

func (e *ConfigurationError) Error() string {
	msg := "localize: " + e.Reason
	if e.Locale != "" {
		msg += fmt.Sprintf(" (locale %q)", e.Locale)
	}
	if len(e.Path) > 0 {
		msg += ": " + strings.Join(e.Path, " -> ")
	}
	return msg
}

func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}

// NotFoundError represents missing records from lookups.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// InterpolationError names the placeholder that had no parameter.
type InterpolationError struct {
	Key       string
	Parameter string
}

func (e *InterpolationError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("localize: missing parameter %q", e.Parameter)
	}
	return fmt.Sprintf("localize: message %q references missing parameter %q", e.Key, e.Parameter)
}

func (e *InterpolationError) Unwrap() error {
	return ErrInterpolation
}

// TransitionError describes a rejected status change.
type TransitionError struct {
	From UnitStatus
	To   UnitStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("localize: cannot move translation from %s to %s", e.From, e.To)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// ValidationError carries the offending field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("localize: %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Cancelled converts a context error into ErrCancelled while keeping the cause.
func Cancelled(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrCancelled, err)
	}
	return nil
}

// IsNotFound reports whether err is, or wraps, a not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
