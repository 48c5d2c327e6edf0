package story

import (
	"strings"

	"pollstory/internal/state"
)

// Phase is the progression state evaluated once per invocation.
type Phase int

const (
	// PhaseBootstrap means no narrative exists yet.
	PhaseBootstrap Phase = iota
	// PhaseAdvancing means the narrative exists and is not finished.
	PhaseAdvancing
	// PhaseFinished is terminal: steps are no-ops.
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseBootstrap:
		return "bootstrap"
	case PhaseAdvancing:
		return "advancing"
	case PhaseFinished:
		return "finished"
	}
	return "unknown"
}

func phaseOf(st state.StoryState) Phase {
	switch {
	case st.Finished:
		return PhaseFinished
	case st.Narrative == "":
		return PhaseBootstrap
	default:
		return PhaseAdvancing
	}
}

// sentenceCount approximates narrative length as the number of dot-separated
// segments, the same measure the length ceiling is configured against.
func sentenceCount(narrative string) int {
	if narrative == "" {
		return 0
	}
	return len(strings.Split(narrative, "."))
}

// pastSoftThreshold reports whether the narrative is close enough to the
// ceiling that the next poll must offer the end-story option.
func pastSoftThreshold(sentences, maxSentences int) bool {
	return float64(sentences) > 0.8*float64(maxSentences)
}
