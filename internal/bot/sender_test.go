package bot

import (
	"strings"
	"testing"
)

func TestSplitMessageTextShort(t *testing.T) {
	parts := splitMessageText("короткое сообщение", 100)
	if len(parts) != 1 || parts[0] != "короткое сообщение" {
		t.Fatalf("parts = %v", parts)
	}
}

func TestSplitMessageTextPrefersLineBreaks(t *testing.T) {
	text := strings.Repeat("строка расписания\n", 50)
	parts := splitMessageText(text, 100)
	if len(parts) < 2 {
		t.Fatalf("expected multiple parts, got %d", len(parts))
	}
	for i, p := range parts {
		if len([]rune(p)) > 100 {
			t.Errorf("part %d exceeds limit: %d runes", i, len([]rune(p)))
		}
		if strings.HasPrefix(p, "расписания") {
			t.Errorf("part %d split mid-line: %q", i, p)
		}
	}
	if got := strings.Join(parts, "\n"); !strings.Contains(got, "строка расписания") {
		t.Error("content lost during split")
	}
}

func TestParseSubgroup(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"1", 1, true},
		{"2", 2, true},
		{btnNoSubgroup, 0, true},
		{"3", 0, false},
		{"первая", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseSubgroup(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("parseSubgroup(%q) = %d,%v want %d,%v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
