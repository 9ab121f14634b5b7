package validate

import (
	"strings"
	"testing"
)

func TestCheckMessage(t *testing.T) {
	c := New(DefaultLimits)

	if v := c.CheckMessage("hello"); v != nil {
		t.Errorf("normal message rejected: %+v", v)
	}
	if v := c.CheckMessage("   "); v == nil {
		t.Error("blank message should be rejected")
	}
	if v := c.CheckMessage(strings.Repeat("x", 4001)); v == nil {
		t.Error("over-long message should be rejected")
	} else if v.Rule != "max_message_chars" {
		t.Errorf("rule = %q, want max_message_chars", v.Rule)
	}
}

func TestCheckSkills(t *testing.T) {
	c := New(DefaultLimits)

	if v := c.CheckSkills([]string{"python", "sql"}); v != nil {
		t.Errorf("normal skill list rejected: %+v", v)
	}

	many := make([]string, 51)
	for i := range many {
		many[i] = "skill"
	}
	if v := c.CheckSkills(many); v == nil {
		t.Error("51 skills should be rejected")
	}

	if v := c.CheckSkills([]string{strings.Repeat("x", 101)}); v == nil {
		t.Error("over-long skill should be rejected")
	}
}

func TestCheckRole(t *testing.T) {
	c := New(DefaultLimits)

	cases := []struct {
		role string
		ok   bool
	}{
		{"Data Scientist", true},
		{"", true},
		{"   ", true},
		{"ab", false},
		{strings.Repeat("x", 201), false},
	}
	for _, tc := range cases {
		v := c.CheckRole(tc.role)
		if (v == nil) != tc.ok {
			t.Errorf("CheckRole(%q) violation = %+v, want ok=%v", tc.role, v, tc.ok)
		}
	}
}

func TestCheckAnswer(t *testing.T) {
	c := New(DefaultLimits)
	if v := c.CheckAnswer(strings.Repeat("x", 2001)); v == nil {
		t.Error("over-long answer should be rejected")
	}
	if v := c.CheckAnswer("a fine answer"); v != nil {
		t.Errorf("normal answer rejected: %+v", v)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 10); got != "short" {
		t.Errorf("Truncate short = %q", got)
	}
	got := Truncate(strings.Repeat("x", 20), 10)
	if len([]rune(got)) != 10 {
		t.Errorf("truncated length = %d, want 10", len([]rune(got)))
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("truncated text %q lacks ellipsis", got)
	}
}
