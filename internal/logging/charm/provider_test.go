package charm

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/goliatone/go-status-updater/internal/logging"
)

func TestProviderWritesLogfmtWithFields(t *testing.T) {
	var buf bytes.Buffer
	provider, err := NewProvider(Config{Writer: &buf, Level: "debug", Format: "logfmt"})
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}

	ctx := logging.ContextWithFields(context.Background(), map[string]any{"correlation_id": "req-1"})
	logger := logging.WithFields(provider.GetLogger("cms.transition"), map[string]any{"run_id": "abc"}).
		WithContext(ctx)
	logger.Info("transition.summary", "updated", 2)

	out := buf.String()
	for _, want := range []string{"cms.transition", "transition.summary", "run_id=abc", "correlation_id=req-1", "updated=2"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}
}

func TestProviderLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	provider, err := NewProvider(Config{Writer: &buf, Level: "warn", Format: "logfmt"})
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}
	logger := provider.GetLogger("cms.test")
	logger.Info("hidden")
	logger.Fatal("shown")

	if strings.Contains(buf.String(), "hidden") {
		t.Fatalf("expected info to be filtered, got %q", buf.String())
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Fatalf("expected fatal entry, got %q", buf.String())
	}
}

func TestNewProviderRejectsUnknownSettings(t *testing.T) {
	if _, err := NewProvider(Config{Level: "loud"}); err == nil {
		t.Fatal("expected level error")
	}
	if _, err := NewProvider(Config{Format: "xml"}); err == nil {
		t.Fatal("expected format error")
	}
}

func TestNilProviderReturnsNoOp(t *testing.T) {
	var provider *Provider
	provider.GetLogger("cms.test").Info("dropped")
}
