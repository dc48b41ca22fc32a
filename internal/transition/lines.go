package transition

import (
	"fmt"

	goerrors "github.com/goliatone/go-errors"
)

// Level tags a presentation line.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Line is one human readable message for the host UI.
type Line struct {
	Level Level  `json:"level"`
	Text  string `json:"text"`
}

// Lines renders one line per outcome, plus a trailing line when the batch halted.
// A run error that produced no outcomes is rendered as error lines instead.
func Lines(report *Report, err error) []Line {
	var lines []Line
	if report != nil {
		for _, outcome := range report.Outcomes {
			lines = append(lines, outcomeLine(report, outcome))
		}
	}

	if len(lines) == 0 && err != nil {
		return errorLines(err)
	}

	if report != nil && report.Halted {
		lines = append(lines, Line{
			Level: LevelError,
			Text:  fmt.Sprintf("Processing stopped after %d of %d URLs.", len(report.Outcomes), report.Total),
		})
	}
	return lines
}

func outcomeLine(report *Report, outcome Outcome) Line {
	switch outcome.Result {
	case ResultUpdated:
		return Line{Level: LevelSuccess, Text: "Successfully updated content for URL: " + outcome.URL}
	case ResultNotFound:
		if outcome.Detail == DetailLoadFailed {
			return Line{Level: LevelError, Text: "Failed to retrieve content for URL: " + outcome.URL}
		}
		return Line{Level: LevelError, Text: "No content found for URL: " + outcome.URL}
	case ResultStatusMismatch:
		return Line{Level: LevelError, Text: fmt.Sprintf(
			"Status mismatch for URL: %s. Expected: %s, Actual: %s",
			outcome.URL, report.ExpectedStatus, outcome.Actual,
		)}
	case ResultUpdateFailed:
		return Line{Level: LevelError, Text: "Failed to update content for URL: " + outcome.URL}
	case ResultVerificationFailed:
		return Line{Level: LevelError, Text: "Status change verification failed for URL: " + outcome.URL}
	case ResultInvalidURL:
		return Line{Level: LevelError, Text: "Invalid URL detected: " + outcome.URL}
	default:
		return Line{Level: LevelError, Text: fmt.Sprintf("Unexpected result %q for URL: %s", outcome.Result, outcome.URL)}
	}
}

func errorLines(err error) []Line {
	var typed *goerrors.Error
	if !goerrors.As(err, &typed) {
		return []Line{{Level: LevelError, Text: err.Error()}}
	}

	lines := []Line{{Level: LevelError, Text: typed.Message}}
	if typed.Message == messageFieldsRequired {
		return lines
	}
	for _, field := range typed.ValidationErrors {
		lines = append(lines, Line{Level: LevelError, Text: field.Field + ": " + field.Message})
	}
	return lines
}
