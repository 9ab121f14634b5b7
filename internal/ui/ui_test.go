package ui

import (
	"bytes"
	"strings"
	"testing"
)

func TestConsole_Reply(t *testing.T) {
	var buf bytes.Buffer
	c := Console{Out: &buf}

	c.Reply("here is some advice")
	if got := buf.String(); got != "here is some advice\n" {
		t.Errorf("Reply wrote %q", got)
	}
}

func TestConsole_Notice(t *testing.T) {
	var buf bytes.Buffer
	c := Console{Out: &buf}

	c.Notice("provider unreachable")
	if !strings.HasPrefix(buf.String(), "* ") {
		t.Errorf("Notice wrote %q, want a starred line", buf.String())
	}
}

func TestSilentUI(t *testing.T) {
	s := SilentUI{}
	// Should not panic
	s.Reply("test")
	s.Notice("")
}

func TestUI_ImplementsInterface(t *testing.T) {
	var _ UI = Console{}
	var _ UI = SilentUI{}
}
