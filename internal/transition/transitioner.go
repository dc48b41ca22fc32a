package transition

import (
	"context"
	"errors"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/goliatone/go-status-updater/internal/content"
	"github.com/goliatone/go-status-updater/internal/logging"
	"github.com/goliatone/go-status-updater/internal/resolver"
	"github.com/goliatone/go-status-updater/pkg/interfaces"
)

var (
	ErrStoreRequired    = errors.New("transition: content store required")
	ErrResolverRequired = errors.New("transition: resolver required")
)

// Transitioner applies guarded status transitions to URL lists, one item at a time.
type Transitioner struct {
	store    content.Store
	resolver resolver.Resolver
	logger   interfaces.Logger
	now      func() time.Time
	newID    func() uuid.UUID
}

// Option customises a Transitioner.
type Option func(*Transitioner)

func WithLogger(logger interfaces.Logger) Option {
	return func(t *Transitioner) {
		if logger != nil {
			t.logger = logger
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(t *Transitioner) {
		if now != nil {
			t.now = now
		}
	}
}

// WithIDGenerator overrides how run identifiers are produced.
func WithIDGenerator(fn func() uuid.UUID) Option {
	return func(t *Transitioner) {
		if fn != nil {
			t.newID = fn
		}
	}
}

func New(store content.Store, res resolver.Resolver, opts ...Option) (*Transitioner, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if res == nil {
		return nil, ErrResolverRequired
	}
	t := &Transitioner{
		store:    store,
		resolver: res,
		logger:   logging.NoOp(),
		now:      time.Now,
		newID:    uuid.New,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
	return t, nil
}

// Run validates the request, then processes each URL in order. An update or
// verification failure halts the batch; the report keeps what was processed.
// Validation failures return an error along with the (possibly empty) report.
func (t *Transitioner) Run(ctx context.Context, req Request) (*Report, error) {
	report := &Report{
		RunID:          t.newID(),
		ExpectedStatus: req.ExpectedStatus,
		NewStatus:      req.NewStatus,
		Total:          len(req.URLs),
		StartedAt:      t.now(),
	}
	runFields := map[string]any{"run_id": report.RunID.String()}
	ctx = logging.ContextWithFields(ctx, runFields)
	logger := logging.WithFields(t.logger, runFields)

	if err := Validate(req); err != nil {
		report.Rejected = true
		report.FinishedAt = t.now()
		logger.Warn("transition.rejected", "error", err)
		return report, err
	}

	if idx := firstInvalidURL(req.URLs); idx >= 0 {
		raw := req.URLs[idx]
		report.Rejected = true
		report.Outcomes = []Outcome{{URL: raw, Result: ResultInvalidURL, Detail: DetailMalformedURL}}
		report.FinishedAt = t.now()
		logger.Warn("transition.rejected", "url", raw, "result", ResultInvalidURL)
		return report, invalidURLError(raw)
	}

	logger.Info("transition.started",
		"total", report.Total,
		"expected_status", req.ExpectedStatus,
		"new_status", req.NewStatus,
	)

	var runErr error
	cancelled := func(err error) {
		report.Halted = true
		runErr = goerrors.Wrap(err, goerrors.CategoryCommand, "bulk status run cancelled").
			WithTextCode(TextCodeCancelled)
		logger.Warn("transition.cancelled", "processed", len(report.Outcomes), "error", err)
	}
	for _, raw := range req.URLs {
		if err := ctx.Err(); err != nil {
			cancelled(err)
			break
		}

		outcome, ok := t.process(ctx, req, raw)
		if !ok {
			cancelled(ctx.Err())
			break
		}
		report.Outcomes = append(report.Outcomes, outcome)
		t.logOutcome(logger, outcome)

		if outcome.Result.Halts() {
			report.Halted = true
			break
		}
	}

	report.FinishedAt = t.now()
	counts := report.Counts()
	logger.Info("transition.completed",
		"processed", len(report.Outcomes),
		"total", report.Total,
		"halted", report.Halted,
		"updated", counts[ResultUpdated],
		"not_found", counts[ResultNotFound],
		"status_mismatch", counts[ResultStatusMismatch],
		"duration", report.FinishedAt.Sub(report.StartedAt),
	)
	return report, runErr
}

// process handles one URL. It reports false when the context ended before the
// item could be looked up, in which case the outcome must not be recorded.
func (t *Transitioner) process(ctx context.Context, req Request, raw string) (Outcome, bool) {
	outcome := Outcome{URL: raw}

	id, resolution, ok := t.resolver.Resolve(ctx, raw)
	if !ok {
		if ctx.Err() != nil {
			return outcome, false
		}
		outcome.Result = ResultNotFound
		outcome.Detail = DetailNoContent
		return outcome, true
	}
	outcome.ItemID = id
	outcome.Strategy = resolution.Strategy

	item, err := t.store.Load(ctx, id)
	if err != nil || item == nil {
		if ctx.Err() != nil {
			return outcome, false
		}
		outcome.Result = ResultNotFound
		outcome.Detail = DetailLoadFailed
		return outcome, true
	}

	if item.Status != req.ExpectedStatus {
		outcome.Result = ResultStatusMismatch
		outcome.Actual = item.Status
		return outcome, true
	}

	if err := t.store.UpdateStatus(ctx, id, req.ExpectedStatus, req.NewStatus); err != nil {
		outcome.Result = ResultUpdateFailed
		outcome.Detail = err.Error()
		if errors.Is(err, content.ErrStatusConflict) {
			outcome.Detail = DetailStatusChanged
		}
		return outcome, true
	}

	updated, err := t.store.Load(ctx, id)
	if err != nil || updated == nil {
		outcome.Result = ResultVerificationFailed
		if err != nil {
			outcome.Detail = err.Error()
		}
		return outcome, true
	}
	outcome.Actual = updated.Status
	if updated.Status != req.NewStatus {
		outcome.Result = ResultVerificationFailed
		return outcome, true
	}

	outcome.Result = ResultUpdated
	return outcome, true
}

func (t *Transitioner) logOutcome(logger interfaces.Logger, outcome Outcome) {
	itemID := ""
	if outcome.ItemID > 0 {
		itemID = outcome.ItemID.String()
	}
	entry := logging.WithItemContext(logger, "", outcome.URL, itemID)
	args := []any{"result", outcome.Result}
	if outcome.Strategy != "" {
		args = append(args, "strategy", outcome.Strategy)
	}
	if outcome.Actual != "" {
		args = append(args, "actual", outcome.Actual)
	}
	if outcome.Detail != "" {
		args = append(args, "detail", outcome.Detail)
	}

	switch {
	case outcome.Result.Success():
		entry.Info("transition.item", args...)
	case outcome.Result.Halts():
		entry.Error("transition.item", args...)
	default:
		entry.Warn("transition.item", args...)
	}
}
