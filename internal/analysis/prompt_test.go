package analysis

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestBuildPromptEmbedsInputs(t *testing.T) {
	prompt := buildPrompt("resume body here", "jd body here")

	if !strings.Contains(prompt, "resume body here") {
		t.Fatalf("prompt does not embed resume text")
	}
	if !strings.Contains(prompt, "jd body here") {
		t.Fatalf("prompt does not embed jd text")
	}
	if !strings.Contains(prompt, `"score_breakdown"`) {
		t.Fatalf("prompt does not mandate the score_breakdown shape")
	}
	if !strings.Contains(prompt, "Skill match (40%)") {
		t.Fatalf("prompt lost the scoring weights")
	}
}

func TestBuildPromptTruncates(t *testing.T) {
	longJD := strings.Repeat("j", 5000)
	longResume := strings.Repeat("r", 9000)

	prompt := buildPrompt(longResume, longJD)

	if strings.Contains(prompt, strings.Repeat("j", maxJDRunes+1)) {
		t.Fatalf("jd text was not truncated to %d runes", maxJDRunes)
	}
	if !strings.Contains(prompt, strings.Repeat("j", maxJDRunes)) {
		t.Fatalf("jd text truncated below %d runes", maxJDRunes)
	}
	if strings.Contains(prompt, strings.Repeat("r", maxResumeRunes+1)) {
		t.Fatalf("resume text was not truncated to %d runes", maxResumeRunes)
	}
}

func TestTruncateRunesMultibyte(t *testing.T) {
	// 4 multi-byte runes; cutting at 2 must not split a rune.
	s := "日本語文"
	got := truncateRunes(s, 2)
	if got != "日本" {
		t.Fatalf("expected %q, got %q", "日本", got)
	}
	if !utf8.ValidString(got) {
		t.Fatalf("truncation produced invalid UTF-8: %q", got)
	}

	if got := truncateRunes("short", 100); got != "short" {
		t.Fatalf("short input must pass through, got %q", got)
	}
	if got := truncateRunes("anything", 0); got != "" {
		t.Fatalf("zero budget must yield empty string, got %q", got)
	}
}

func TestBuildPromptDeterministic(t *testing.T) {
	a := buildPrompt("resume", "jd")
	b := buildPrompt("resume", "jd")
	if a != b {
		t.Fatalf("same inputs produced different prompts")
	}
}
