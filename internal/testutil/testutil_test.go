package testutil

import (
	"strings"
	"testing"
)

func TestNewBufferLoggerCaptures(t *testing.T) {
	logger, buf := NewBufferLogger()

	logger.Info("hello", "key", "value")

	out := buf.String()
	if out == "" {
		t.Fatal("expected log output in buffer")
	}
	if want := "key=value"; !strings.Contains(out, want) {
		t.Fatalf("expected %q in output %q", want, out)
	}
}
