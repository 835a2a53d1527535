// Package executor dispatches single action nodes to their handlers with
// template resolution, retry and live/simulate modes.
package executor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/vendura/automation/pkg/actions"
	"github.com/vendura/automation/pkg/events"
	"github.com/vendura/automation/pkg/models"
	"github.com/vendura/automation/pkg/otelhelper"
	"github.com/vendura/automation/pkg/template"
)

const defaultCallTimeout = 30 * time.Second

// Executor resolves an action's config against the triggering event, invokes
// the registered handler (live mode) or produces a synthetic description
// (simulate mode), and classifies the outcome.
type Executor struct {
	registry    *actions.Registry
	logger      *slog.Logger
	tracer      trace.Tracer
	policy      RetryPolicy
	callTimeout time.Duration

	// wait is swapped in tests to avoid real backoff sleeps.
	wait func(ctx context.Context, d time.Duration) error
}

// Option configures an Executor.
type Option func(*Executor)

// WithRetryPolicy overrides the default 3-attempt policy.
func WithRetryPolicy(policy RetryPolicy) Option {
	return func(e *Executor) { e.policy = policy }
}

// WithCallTimeout overrides the per-attempt handler timeout.
func WithCallTimeout(timeout time.Duration) Option {
	return func(e *Executor) { e.callTimeout = timeout }
}

// WithTracer attaches a tracer; the default is a no-op tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(e *Executor) { e.tracer = tracer }
}

// WithWaiter replaces the backoff sleeper. Tests inject an instant waiter.
func WithWaiter(wait func(ctx context.Context, d time.Duration) error) Option {
	return func(e *Executor) { e.wait = wait }
}

// NewExecutor creates an action executor over a handler registry.
func NewExecutor(registry *actions.Registry, logger *slog.Logger, opts ...Option) *Executor {
	e := &Executor{
		registry:    registry,
		logger:      logger.With("module", "action_executor"),
		tracer:      noop.NewTracerProvider().Tracer("executor"),
		policy:      DefaultRetryPolicy(),
		callTimeout: defaultCallTimeout,
		wait:        sleep,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Execute runs one action node. In live mode the handler is invoked with
// retry for transient failures; in simulate mode no handler runs and the
// output describes what would have happened.
func (e *Executor) Execute(ctx context.Context, config *models.ActionConfig, event *events.BusinessEvent, mode models.ExecutionMode) (any, error) {
	resolved, err := e.resolveConfig(config, event)
	if err != nil {
		return nil, actions.MarkPermanent(err)
	}

	if mode == models.ModeSimulate {
		return actions.Simulate(resolved, event), nil
	}

	handler, err := e.registry.Handler(config.Type)
	if err != nil {
		return nil, err
	}

	return e.invokeWithRetry(ctx, handler, resolved, event)
}

func (e *Executor) invokeWithRetry(ctx context.Context, handler actions.Handler, config *models.ActionConfig, event *events.BusinessEvent) (any, error) {
	logger := e.logger.With("action_type", config.Type, "event_id", event.ID)

	var (
		output  any
		lastErr error
	)

	for attempt := 1; attempt <= e.policy.MaxAttempts; attempt++ {
		if err := e.wait(ctx, e.policy.Delay(attempt)); err != nil {
			return output, lastErr
		}

		output, lastErr = e.invokeOnce(ctx, handler, config, event, attempt)
		if lastErr == nil {
			if attempt > 1 {
				logger.Info("Action succeeded after retry", "attempt", attempt)
			}

			return output, nil
		}

		if !actions.IsTransient(lastErr) {
			logger.Warn("Action failed permanently", "attempt", attempt, "error", lastErr)

			return output, lastErr
		}

		logger.Warn("Action failed, will retry", "attempt", attempt, "max_attempts", e.policy.MaxAttempts, "error", lastErr)
	}

	return output, fmt.Errorf("action failed after %d attempts: %w", e.policy.MaxAttempts, lastErr)
}

func (e *Executor) invokeOnce(ctx context.Context, handler actions.Handler, config *models.ActionConfig, event *events.BusinessEvent, attempt int) (any, error) {
	callCtx, cancel := context.WithTimeout(ctx, e.callTimeout)
	defer cancel()

	spanCtx, span := e.tracer.Start(callCtx, "action.invoke", trace.WithAttributes(
		attribute.String(otelhelper.ActionTypeKey, string(config.Type)),
		attribute.Int("vendura.action.attempt", attempt),
	))
	defer span.End()

	output, err := handler.Invoke(spanCtx, config, event)
	if err != nil {
		otelhelper.SetError(span, err)
	}

	return output, err
}

// resolveConfig returns a copy of the config with every {{field}}
// placeholder substituted from the event data. The original config is never
// mutated.
func (e *Executor) resolveConfig(config *models.ActionConfig, event *events.BusinessEvent) (*models.ActionConfig, error) {
	resolved := *config

	switch config.Type {
	case models.ActionSendEmail:
		if config.SendEmail == nil {
			return &resolved, nil
		}

		cfg := *config.SendEmail

		var err error
		if cfg.Subject, err = template.Resolve(cfg.Subject, event.Data); err != nil {
			return nil, err
		}

		if cfg.Body, err = template.Resolve(cfg.Body, event.Data); err != nil {
			return nil, err
		}

		resolved.SendEmail = &cfg
	case models.ActionWebhook:
		if config.Webhook == nil {
			return &resolved, nil
		}

		cfg := *config.Webhook

		var err error
		if cfg.Body, err = template.Resolve(cfg.Body, event.Data); err != nil {
			return nil, err
		}

		if cfg.Headers, err = template.ResolveMap(cfg.Headers, event.Data); err != nil {
			return nil, err
		}

		resolved.Webhook = &cfg
	case models.ActionCreateNotification:
		if config.CreateNotification == nil {
			return &resolved, nil
		}

		cfg := *config.CreateNotification

		message, err := template.Resolve(cfg.Message, event.Data)
		if err != nil {
			return nil, err
		}

		cfg.Message = message
		resolved.CreateNotification = &cfg
	case models.ActionTagCustomer, models.ActionTagOrder, models.ActionTagProduct, models.ActionUpdateProductStatus:
		// No templated fields.
	}

	return &resolved, nil
}
