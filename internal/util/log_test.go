package util

import (
	"bytes"
	"strings"
	"testing"
)

func TestLogLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetColors(false)
	defer func() {
		SetOutput(nil)
		SetLogLevel(LevelInfo)
	}()

	SetLogLevel(LevelInfo)
	DebugLog("hidden %d", 1)
	InfoLog("shown %d", 2)
	if strings.Contains(buf.String(), "hidden") {
		t.Error("debug message should be filtered at info level")
	}
	if !strings.Contains(buf.String(), "[INFO]  shown 2") {
		t.Errorf("expected info line, got %q", buf.String())
	}

	buf.Reset()
	SetQuiet(true)
	if !IsQuiet() {
		t.Error("expected quiet mode")
	}
	WarnLog("warn")
	ErrorLog("boom")
	if strings.Contains(buf.String(), "warn") {
		t.Error("warning should be filtered in quiet mode")
	}
	if !strings.Contains(buf.String(), "[ERROR] boom") {
		t.Errorf("expected error line, got %q", buf.String())
	}
}
