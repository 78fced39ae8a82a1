package log

import (
	"bytes"
	"strings"
	"testing"
)

func TestPrinter(t *testing.T) {
	var out, tee bytes.Buffer

	p := NewPrinter(&out, 10)
	p.SetLogger(&tee)

	p.Printf("%s\n", strings.Repeat("x", 20))
	if got := out.String(); got != strings.Repeat("x", 10)+"...\n" {
		t.Errorf("clipped output: got %q", got)
	}
	if got := tee.String(); got != strings.Repeat("x", 20)+"\n" {
		t.Errorf("log output should not be clipped: got %q", got)
	}

	out.Reset()
	p.SetEnabled(false)
	p.Println("hidden")
	if out.Len() != 0 {
		t.Errorf("disabled printer wrote %q", out.String())
	}
	if !strings.HasSuffix(tee.String(), "hidden\n") {
		t.Errorf("log writer should still receive output, got %q", tee.String())
	}
}

func TestSetLogLevel(t *testing.T) {
	defer SetLogLevel(Normal)

	tests := []struct {
		level Level
		debug bool
		info  bool
	}{
		{Quiet, false, false},
		{Normal, false, true},
		{Verbose, true, true},
		{Tracing, true, true},
	}
	for _, tt := range tests {
		SetLogLevel(tt.level)
		if debugLogger.IsEnabled() != tt.debug {
			t.Errorf("level %v: debug enabled = %v", tt.level, debugLogger.IsEnabled())
		}
		if infoLogger.IsEnabled() != tt.info {
			t.Errorf("level %v: info enabled = %v", tt.level, infoLogger.IsEnabled())
		}
	}
}
