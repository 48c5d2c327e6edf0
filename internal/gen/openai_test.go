package gen

import (
	"encoding/binary"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

func toolResponse(name, args string) *openai.ChatCompletionResponse {
	return &openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{
			Message: openai.ChatCompletionMessage{
				ToolCalls: []openai.ToolCall{{
					Function: openai.FunctionCall{Name: name, Arguments: args},
				}},
			},
		}},
	}
}

func TestExtractToolArgs(t *testing.T) {
	resp := toolResponse("write_story_part", `{"story_part":"Text.","main_idea":"Idea.","reasoning":"r"}`)
	args, err := extractToolArgs(resp, "write_story_part")
	if err != nil {
		t.Fatalf("extractToolArgs: %v", err)
	}
	if !strings.Contains(string(args), "Text.") {
		t.Fatalf("unexpected arguments: %s", args)
	}
}

func TestExtractToolArgsWrongTool(t *testing.T) {
	resp := toolResponse("some_other_tool", `{}`)
	if _, err := extractToolArgs(resp, "write_story_part"); err == nil {
		t.Fatal("expected error for a missing tool call")
	}
}

func TestExtractToolArgsInvalidJSON(t *testing.T) {
	resp := toolResponse("suggest_poll_options", `{"options": [`)
	if _, err := extractToolArgs(resp, "suggest_poll_options"); err == nil {
		t.Fatal("expected error for invalid JSON arguments")
	}
}

func TestExtractToolArgsNoChoices(t *testing.T) {
	if _, err := extractToolArgs(&openai.ChatCompletionResponse{}, "write_story_part"); err == nil {
		t.Fatal("expected error for an empty response")
	}
}

func TestTailTruncate(t *testing.T) {
	if got := tailTruncate("abcdef", 10); got != "abcdef" {
		t.Fatalf("short input should be untouched, got %q", got)
	}
	if got := tailTruncate("abcdef", 3); got != "def" {
		t.Fatalf("want tail %q, got %q", "def", got)
	}
	// rune-safe: no broken encodings at the cut point
	if got := tailTruncate("日本語のテキスト", 4); got != "テキスト" {
		t.Fatalf("want %q, got %q", "テキスト", got)
	}
}

func TestWrapWAVHeader(t *testing.T) {
	pcm := make([]byte, 480)
	out := wrapWAV(pcm, speechSampleRate, speechChannels)
	if len(out) != 44+len(pcm) {
		t.Fatalf("wav length = %d, want %d", len(out), 44+len(pcm))
	}
	if string(out[0:4]) != "RIFF" || string(out[8:12]) != "WAVE" {
		t.Fatal("missing RIFF/WAVE markers")
	}
	if rate := binary.LittleEndian.Uint32(out[24:28]); rate != speechSampleRate {
		t.Fatalf("sample rate = %d, want %d", rate, speechSampleRate)
	}
	if size := binary.LittleEndian.Uint32(out[40:44]); size != uint32(len(pcm)) {
		t.Fatalf("data size = %d, want %d", size, len(pcm))
	}
}
