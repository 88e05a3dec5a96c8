package commands

import (
	"context"
	"errors"
	"time"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-localize/internal/domain"
	"github.com/goliatone/go-localize/pkg/interfaces"
)

// TelemetryStatus classifies how a command finished.
type TelemetryStatus string

const (
	TelemetryStatusSuccess  TelemetryStatus = "success"
	TelemetryStatusRejected TelemetryStatus = "rejected"
	TelemetryStatusFailed   TelemetryStatus = "failed"
	// TelemetryStatusContextError covers cancellation and deadlines.
	TelemetryStatusContextError TelemetryStatus = "context_error"
)

// TelemetryInfo is handed to a Telemetry callback once a command returns.
type TelemetryInfo struct {
	Command   string
	Operation string
	Duration  time.Duration
	Status    TelemetryStatus
	// Error is the categorised error returned to the caller.
	Error  error
	Logger interfaces.Logger
}

// Telemetry observes command outcomes in place of the default log lines.
type Telemetry[T command.Message] func(ctx context.Context, msg T, info TelemetryInfo)

// outcomeStatus maps the raw execution error onto a status. Rejections are
// caller mistakes (bad input, unknown target, denied transition) rather
// than failures of the module.
func outcomeStatus(ctx context.Context, err error) TelemetryStatus {
	switch {
	case err == nil && ctx.Err() == nil:
		return TelemetryStatusSuccess
	case err == nil:
		return TelemetryStatusContextError
	case errors.Is(err, domain.ErrCancelled), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return TelemetryStatusContextError
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrInvalidTransition):
		return TelemetryStatusRejected
	default:
		return TelemetryStatusFailed
	}
}

func logOutcome(logger interfaces.Logger, info TelemetryInfo) {
	args := []any{"duration_ms", info.Duration.Milliseconds()}
	switch info.Status {
	case TelemetryStatusSuccess:
		logger.Info("command.completed", args...)
	case TelemetryStatusRejected:
		logger.Warn("command.rejected", append(args, "error", info.Error)...)
	default:
		logger.Error("command."+string(info.Status), append(args, "error", info.Error)...)
	}
}
