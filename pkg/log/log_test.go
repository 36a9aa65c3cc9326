package log

import (
	"bytes"
	"strings"
	"testing"
)

func newTestLogger(t *testing.T, name string) (*Logger, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	SetOutput(buf)
	return ForService(name), buf
}

func TestPrefixAndLevel(t *testing.T) {
	SetGlobalDebug(false)

	l, buf := newTestLogger(t, "prefix_test")
	l.Infof("loaded %d days", 3)
	out := buf.String()

	if !strings.Contains(out, "INFO [prefix_test>] loaded 3 days") {
		t.Fatalf("unexpected log line: %q", out)
	}
}

func TestWarnAndError(t *testing.T) {
	l, buf := newTestLogger(t, "levels_test")
	l.Warnf("slow track")
	l.Errorf("broken track")
	out := buf.String()

	if !strings.Contains(out, "WARN [levels_test>] slow track") {
		t.Errorf("missing warn line: %q", out)
	}
	if !strings.Contains(out, "ERROR [levels_test>] broken track") {
		t.Errorf("missing error line: %q", out)
	}
}

func TestDebugPerService(t *testing.T) {
	SetGlobalDebug(false)

	const name = "debug_service_specific"
	DisableDebugFor(name)
	l, buf := newTestLogger(t, name)

	l.Debugf("hidden")
	if strings.Contains(buf.String(), "hidden") {
		t.Fatal("debug line printed while disabled")
	}

	EnableDebugFor(name)
	defer DisableDebugFor(name)
	l.Debugf("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Fatalf("expected debug line after EnableDebugFor, got %q", buf.String())
	}
}

func TestDebugGlobal(t *testing.T) {
	const name = "debug_service_global"
	DisableDebugFor(name)
	l, buf := newTestLogger(t, name)

	SetGlobalDebug(true)
	defer SetGlobalDebug(false)

	l.Debugf("global visible")
	if !strings.Contains(buf.String(), "DEBUG [debug_service_global>] global visible") {
		t.Fatalf("expected debug line with global debug, got %q", buf.String())
	}
}

func TestSetOutputUpdatesExistingLoggers(t *testing.T) {
	l := ForService("existing_logger")
	buf := &bytes.Buffer{}
	SetOutput(buf)
	l.Infof("redirected")
	if !strings.Contains(buf.String(), "redirected") {
		t.Fatalf("existing logger did not follow SetOutput: %q", buf.String())
	}
}
