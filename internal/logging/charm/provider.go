package charm

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	charmlog "github.com/charmbracelet/log"

	"github.com/goliatone/go-status-updater/internal/logging"
	"github.com/goliatone/go-status-updater/pkg/interfaces"
)

// Config captures the options exposed by the charmbracelet/log adapter.
type Config struct {
	Writer io.Writer
	Level  string
	// Format is "text" (styled, default) or "logfmt".
	Format     string
	TimeFormat string
}

// Provider hands out charmbracelet/log loggers prefixed with the module name.
type Provider struct {
	root *charmlog.Logger
}

func NewProvider(cfg Config) (*Provider, error) {
	level := charmlog.InfoLevel
	if name := charmLevelName(cfg.Level); name != "" {
		parsed, err := charmlog.ParseLevel(name)
		if err != nil {
			return nil, fmt.Errorf("logging: parse charm level %q: %w", cfg.Level, err)
		}
		level = parsed
	}

	var formatter charmlog.Formatter
	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "", "text", "console", "pretty":
		formatter = charmlog.TextFormatter
	case "logfmt":
		formatter = charmlog.LogfmtFormatter
	case "json":
		formatter = charmlog.JSONFormatter
	default:
		return nil, fmt.Errorf("logging: unsupported charm format %q", cfg.Format)
	}

	writer := cfg.Writer
	if writer == nil {
		writer = os.Stderr
	}
	timeFormat := cfg.TimeFormat
	if timeFormat == "" {
		timeFormat = time.RFC3339
	}

	root := charmlog.NewWithOptions(writer, charmlog.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      timeFormat,
		Formatter:       formatter,
	})
	return &Provider{root: root}, nil
}

func (p *Provider) GetLogger(name string) interfaces.Logger {
	if p == nil || p.root == nil {
		return logging.NoOp()
	}
	inner := p.root
	if trimmed := strings.TrimSpace(name); trimmed != "" {
		inner = inner.WithPrefix(trimmed)
	}
	return &adapter{inner: inner}
}

type adapter struct {
	inner *charmlog.Logger
}

var (
	_ interfaces.Logger       = (*adapter)(nil)
	_ interfaces.FieldsLogger = (*adapter)(nil)
)

// charmbracelet/log has no trace level.
func (l *adapter) Trace(msg string, args ...any) { l.inner.Debug(msg, args...) }
func (l *adapter) Debug(msg string, args ...any) { l.inner.Debug(msg, args...) }
func (l *adapter) Info(msg string, args ...any)  { l.inner.Info(msg, args...) }
func (l *adapter) Warn(msg string, args ...any)  { l.inner.Warn(msg, args...) }
func (l *adapter) Error(msg string, args ...any) { l.inner.Error(msg, args...) }

// Fatal logs at fatal level without exiting the process.
func (l *adapter) Fatal(msg string, args ...any) {
	l.inner.Log(charmlog.FatalLevel, msg, args...)
}

func (l *adapter) WithFields(fields map[string]any) interfaces.Logger {
	if len(fields) == 0 {
		return l
	}
	return &adapter{inner: l.inner.With(keyvals(fields)...)}
}

func (l *adapter) WithContext(ctx context.Context) interfaces.Logger {
	return l.WithFields(logging.ContextFields(ctx))
}

func keyvals(fields map[string]any) []any {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]any, 0, len(keys)*2)
	for _, k := range keys {
		out = append(out, k, fields[k])
	}
	return out
}

// charmLevelName maps the shared level names onto charm's set, which has no trace.
func charmLevelName(level string) string {
	switch name := strings.ToLower(strings.TrimSpace(level)); name {
	case "trace":
		return "debug"
	case "warning":
		return "warn"
	default:
		return name
	}
}
