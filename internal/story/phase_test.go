package story

import (
	"testing"

	"pollstory/internal/state"
)

func TestPhaseOf(t *testing.T) {
	cases := []struct {
		name string
		st   state.StoryState
		want Phase
	}{
		{"empty", state.StoryState{}, PhaseBootstrap},
		{"narrative", state.StoryState{Narrative: "Once."}, PhaseAdvancing},
		{"finished", state.StoryState{Narrative: "Once.", Finished: true}, PhaseFinished},
		{"finished without narrative", state.StoryState{Finished: true}, PhaseFinished},
	}
	for _, c := range cases {
		if got := phaseOf(c.st); got != c.want {
			t.Fatalf("%s: phase = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestSentenceCount(t *testing.T) {
	cases := []struct {
		narrative string
		want      int
	}{
		{"", 0},
		{"No dot", 1},
		{"One.", 2},
		{"One. Two. Three.", 4},
	}
	for _, c := range cases {
		if got := sentenceCount(c.narrative); got != c.want {
			t.Fatalf("sentenceCount(%q) = %d, want %d", c.narrative, got, c.want)
		}
	}
}

func TestPastSoftThreshold(t *testing.T) {
	cases := []struct {
		sentences, max int
		want           bool
	}{
		{0, 10, false},
		{8, 10, false},
		{9, 10, true},
		{10, 10, true},
		{400, 500, false},
		{401, 500, true},
	}
	for _, c := range cases {
		if got := pastSoftThreshold(c.sentences, c.max); got != c.want {
			t.Fatalf("pastSoftThreshold(%d, %d) = %v, want %v", c.sentences, c.max, got, c.want)
		}
	}
}

func TestSplitText(t *testing.T) {
	if got := splitText("short", 10); len(got) != 1 || got[0] != "short" {
		t.Fatalf("splitText short = %v", got)
	}
	chunks := splitText("abcdefghij", 4)
	want := []string{"abcd", "efgh", "ij"}
	if len(chunks) != len(want) {
		t.Fatalf("chunks = %v, want %v", chunks, want)
	}
	for i := range want {
		if chunks[i] != want[i] {
			t.Fatalf("chunk %d = %q, want %q", i, chunks[i], want[i])
		}
	}
}
