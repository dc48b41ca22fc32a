package transition

import (
	"strings"
	"time"

	"github.com/goliatone/go-status-updater/internal/content"
	"github.com/goliatone/go-status-updater/internal/domain"
	"github.com/google/uuid"
)

// Input carries the raw values submitted by the host form.
type Input struct {
	// URLs holds one URL per line.
	URLs           string
	ExpectedStatus string
	NewStatus      string
}

// Request is one bulk transition invocation.
type Request struct {
	URLs           []string
	ExpectedStatus domain.Status
	NewStatus      domain.Status
}

// ParseInput trims the URL list as a whole, then splits it on newlines and trims every
// line. Interior blank lines are kept as empty URLs so Run rejects the batch.
// Status values are normalised but not validated; Run rejects unknown values.
func ParseInput(in Input) Request {
	var urls []string
	if list := strings.TrimSpace(in.URLs); list != "" {
		lines := strings.Split(list, "\n")
		urls = make([]string, 0, len(lines))
		for _, line := range lines {
			urls = append(urls, strings.TrimSpace(line))
		}
	}
	return Request{
		URLs:           urls,
		ExpectedStatus: domain.NormalizeStatus(in.ExpectedStatus),
		NewStatus:      domain.NormalizeStatus(in.NewStatus),
	}
}

// Result classifies the fate of a single URL.
type Result string

const (
	ResultUpdated            Result = "updated"
	ResultNotFound           Result = "not_found"
	ResultStatusMismatch     Result = "status_mismatch"
	ResultUpdateFailed       Result = "update_failed"
	ResultVerificationFailed Result = "verification_failed"
	ResultInvalidURL         Result = "invalid_url"
)

// Results lists every result in reporting order.
func Results() []Result {
	return []Result{
		ResultUpdated,
		ResultNotFound,
		ResultStatusMismatch,
		ResultUpdateFailed,
		ResultVerificationFailed,
		ResultInvalidURL,
	}
}

// Halts reports whether the result stops the batch.
func (r Result) Halts() bool {
	return r == ResultUpdateFailed || r == ResultVerificationFailed
}

// Success reports whether the result counts as a success.
func (r Result) Success() bool {
	return r == ResultUpdated
}

const (
	DetailNoContent     = "no content found"
	DetailLoadFailed    = "failed to retrieve content"
	DetailMalformedURL  = "malformed url"
	DetailStatusChanged = "status changed before the update was applied"
)

// Outcome records what happened to one URL.
type Outcome struct {
	URL    string         `json:"url"`
	Result Result         `json:"result"`
	ItemID content.ItemID `json:"item_id,omitempty"`
	// Strategy names the resolver strategy that matched the URL.
	Strategy string        `json:"strategy,omitempty"`
	Actual   domain.Status `json:"actual,omitempty"`
	Detail   string        `json:"detail,omitempty"`
}

// Report is the ordered result of a run.
type Report struct {
	RunID          uuid.UUID     `json:"run_id"`
	ExpectedStatus domain.Status `json:"expected_status"`
	NewStatus      domain.Status `json:"new_status"`
	Outcomes       []Outcome     `json:"outcomes"`
	// Total is the number of URLs submitted.
	Total int `json:"total"`
	// Halted is set when processing stopped before the last URL.
	Halted bool `json:"halted"`
	// Rejected is set when batch validation refused the whole list.
	Rejected   bool      `json:"rejected"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Truncated reports whether fewer outcomes than URLs were recorded.
func (r *Report) Truncated() bool {
	if r == nil {
		return false
	}
	return len(r.Outcomes) < r.Total
}

// Counts tallies outcomes per result.
func (r *Report) Counts() map[Result]int {
	counts := make(map[Result]int, len(Results()))
	if r == nil {
		return counts
	}
	for _, outcome := range r.Outcomes {
		counts[outcome.Result]++
	}
	return counts
}

// Updated lists the identifiers that were transitioned, in order.
func (r *Report) Updated() []content.ItemID {
	if r == nil {
		return nil
	}
	var ids []content.ItemID
	for _, outcome := range r.Outcomes {
		if outcome.Result == ResultUpdated {
			ids = append(ids, outcome.ItemID)
		}
	}
	return ids
}
