package telegram

import (
	"errors"
	"testing"

	"pollstory/internal/story"
)

func TestParseChannel(t *testing.T) {
	if id, name := parseChannel("-1001234567890"); id != -1001234567890 || name != "" {
		t.Fatalf("numeric channel parsed as (%d, %q)", id, name)
	}
	if id, name := parseChannel("@stories"); id != 0 || name != "@stories" {
		t.Fatalf("username channel parsed as (%d, %q)", id, name)
	}
}

func TestClassifyStopPollError(t *testing.T) {
	gone := classifyStopPollError(errors.New("Bad Request: poll has already been closed"))
	if !errors.Is(gone, story.ErrPollGone) {
		t.Fatalf("closed poll should map to ErrPollGone, got %v", gone)
	}
	gone = classifyStopPollError(errors.New("Bad Request: message to stop poll not found"))
	if !errors.Is(gone, story.ErrPollGone) {
		t.Fatalf("missing poll message should map to ErrPollGone, got %v", gone)
	}
	other := classifyStopPollError(errors.New("Forbidden: bot was kicked"))
	if errors.Is(other, story.ErrPollGone) {
		t.Fatalf("transport error must stay distinguishable, got %v", other)
	}
}
