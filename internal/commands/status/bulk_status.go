package statuscmd

import (
	"context"
	"strings"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-status-updater/internal/commands"
	"github.com/goliatone/go-status-updater/internal/domain"
	"github.com/goliatone/go-status-updater/internal/transition"
	"github.com/goliatone/go-status-updater/pkg/interfaces"
)

const bulkStatusMessageType = "cms.content.bulk_status"

// BulkStatusCommand carries the three values submitted by the host form.
type BulkStatusCommand struct {
	// URLs holds one URL per line.
	URLs           string `json:"urls"`
	ExpectedStatus string `json:"expected_status"`
	NewStatus      string `json:"new_status"`

	// Result, when set, receives the report and presentation lines.
	Result *BulkStatusResult `json:"-"`
}

// BulkStatusResult collects what a run produced.
type BulkStatusResult struct {
	mu     sync.Mutex
	report *transition.Report
	lines  []transition.Line
}

func (r *BulkStatusResult) store(report *transition.Report, lines []transition.Line) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.report = report
	r.lines = lines
}

// Report returns the last report recorded, nil if the run never started.
func (r *BulkStatusResult) Report() *transition.Report {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.report
}

// Lines returns the rendered lines of the last run.
func (r *BulkStatusResult) Lines() []transition.Line {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]transition.Line(nil), r.lines...)
}

// Type implements command.Message.
func (BulkStatusCommand) Type() string { return bulkStatusMessageType }

// Validate checks the fields are present and the statuses are known.
func (m BulkStatusCommand) Validate() error {
	errs := validation.Errors{}
	if strings.TrimSpace(m.URLs) == "" {
		errs["urls"] = validation.NewError("cms.content.bulk_status.urls_required", "urls is required")
	}
	if err := validateStatus(m.ExpectedStatus, "expected_status"); err != nil {
		errs["expected_status"] = err
	}
	if err := validateStatus(m.NewStatus, "new_status"); err != nil {
		errs["new_status"] = err
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateStatus(value, field string) error {
	if strings.TrimSpace(value) == "" {
		return validation.NewError("cms.content.bulk_status."+field+"_required", field+" is required")
	}
	if _, err := domain.ParseStatus(value); err != nil {
		return validation.NewError("cms.content.bulk_status."+field+"_invalid", err.Error())
	}
	return nil
}

// Runner executes a parsed bulk transition request.
type Runner interface {
	Run(ctx context.Context, req transition.Request) (*transition.Report, error)
}

// BulkStatusHandler runs bulk transitions through the shared command handler.
type BulkStatusHandler struct {
	inner *commands.Handler[BulkStatusCommand]
}

func NewBulkStatusHandler(runner Runner, logger interfaces.Logger, opts ...commands.HandlerOption[BulkStatusCommand]) *BulkStatusHandler {
	exec := func(ctx context.Context, msg BulkStatusCommand) error {
		report, err := runner.Run(ctx, transition.ParseInput(transition.Input{
			URLs:           msg.URLs,
			ExpectedStatus: msg.ExpectedStatus,
			NewStatus:      msg.NewStatus,
		}))
		if msg.Result != nil {
			msg.Result.store(report, transition.Lines(report, err))
		}
		return err
	}

	handlerOpts := []commands.HandlerOption[BulkStatusCommand]{
		commands.WithLogger[BulkStatusCommand](logger),
		commands.WithOperation[BulkStatusCommand]("content.bulk_status"),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &BulkStatusHandler{
		inner: commands.NewHandler[BulkStatusCommand](exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[BulkStatusCommand].Execute.
// When the message fails validation the result receives the request level lines.
func (h *BulkStatusHandler) Execute(ctx context.Context, msg BulkStatusCommand) error {
	err := h.inner.Execute(ctx, msg)
	if err != nil && msg.Result != nil && msg.Result.Report() == nil && len(msg.Result.Lines()) == 0 {
		msg.Result.store(nil, rejectedLines(msg, err))
	}
	return err
}

func rejectedLines(msg BulkStatusCommand, err error) []transition.Line {
	verr := transition.Validate(transition.ParseInput(transition.Input{
		URLs:           msg.URLs,
		ExpectedStatus: msg.ExpectedStatus,
		NewStatus:      msg.NewStatus,
	}))
	if verr != nil {
		return transition.Lines(nil, verr)
	}
	return transition.Lines(nil, err)
}
