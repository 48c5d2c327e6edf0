// Package gen implements the generation backends: OpenAI chat completions
// for narrative text, poll options and image prompts, and Gemini for
// illustrations and narration.
package gen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

var ErrNoToolCall = errors.New("gen: response did not contain the expected tool call")

// OpenAIGenerator asks an OpenAI-compatible chat API for story content using
// strict function calling, so every response is schema-checked JSON.
type OpenAIGenerator struct {
	client          *openai.Client
	model           string
	maxContextChars int
	imageStyle      string
}

func NewOpenAIGenerator(apiKey, baseURL, model string, maxContextChars int, imageStyle string) *OpenAIGenerator {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if maxContextChars <= 0 {
		maxContextChars = 15000
	}
	return &OpenAIGenerator{
		client:          openai.NewClientWithConfig(cfg),
		model:           model,
		maxContextChars: maxContextChars,
		imageStyle:      imageStyle,
	}
}

const continueSystemPrompt = `You are a celebrated novelist continuing an interactive serialized story.
Readers vote between installments; the winning choice steers the plot, but you hold the main idea of
the story and keep the whole narrative coherent with it.

Write the NEXT THREE PARAGRAPHS, separated by blank lines. Never call a character "the hero" or
"the heroine" - use names. If the main idea you are given is empty, invent one: a short outline of
the entire future story including concrete events and its ending. Revise the main idea when the
readers' choice drifts from it, but never replace the plot wholesale.

Respond ONLY through the 'write_story_part' tool with fields:
- 'main_idea': the (possibly revised) guiding idea of the story;
- 'reasoning': a short plan for the next three paragraphs, including two cliches you will avoid;
- 'story_part': the three paragraphs themselves, with no reasoning and no fourth-wall breaks.
Add no other text.`

const concludeSystemPrompt = `You are a celebrated novelist concluding an interactive serialized story.

Write the FINAL THREE PARAGRAPHS, separated by blank lines: resolve the conflicts, answer the open
questions, and show how the characters changed. Never call a character "the hero" or "the heroine" -
use names. Avoid stock phrases; in 'reasoning' name two cliches you deliberately avoid.

Respond ONLY through the 'write_story_part' tool with fields 'main_idea', 'reasoning' and
'story_part'. Add no other text.`

const pollSystemPrompt = `You are the assistant of an interactive serialized story. Given the full story so far,
invent exactly 4 SHORT (at most 90 characters) and FUNDAMENTALLY DIFFERENT continuation choices for a
reader poll. The options must point in genuinely different, even opposite, directions; avoid minor
variations of one action. Respond ONLY through the 'suggest_poll_options' tool with field 'options'
(an array of 4 strings). Add no other text.`

const imagePromptSystemPrompt = `You are an expert prompt engineer. Transform the provided 'story' into one concise,
vivid scene description optimized for image generation: key visual elements, mood, composition.
Always describe the characters in the scene, including their kind (human, robot, elf, ...) and
present appearance; never use a form a character has since abandoned. Use 'main_idea' only as
context - the scene always comes from 'story'. Refine the raw 'styling' into bullet-point style
directives. Respond with one call to 'format_image_prompt' whose 'prompt' contains a [STYLING]
bullet list followed by a [SCENE DESCRIPTION] section.`

var storyTool = openai.Tool{
	Type: openai.ToolTypeFunction,
	Function: &openai.FunctionDefinition{
		Name:        "write_story_part",
		Description: "Records the next three paragraphs of the interactive story and the revised main idea.",
		Strict:      true,
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"main_idea": {"type": "string", "description": "The guiding idea of the story, possibly revised."},
				"reasoning": {"type": "string", "description": "A short plan for the next three paragraphs."},
				"story_part": {"type": "string", "description": "The next three paragraphs, separated by blank lines."}
			},
			"required": ["main_idea", "reasoning", "story_part"],
			"additionalProperties": false
		}`),
	},
}

var pollTool = openai.Tool{
	Type: openai.ToolTypeFunction,
	Function: &openai.FunctionDefinition{
		Name:        "suggest_poll_options",
		Description: "Proposes 4 continuation options for the reader poll.",
		Strict:      true,
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"options": {
					"type": "array",
					"description": "Exactly 4 concise continuation options, at most 90 characters each.",
					"items": {"type": "string"}
				}
			},
			"required": ["options"],
			"additionalProperties": false
		}`),
	},
}

var imagePromptTool = openai.Tool{
	Type: openai.ToolTypeFunction,
	Function: &openai.FunctionDefinition{
		Name:        "format_image_prompt",
		Description: "Combines story and styling into a single image generation prompt.",
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"prompt": {"type": "string", "description": "The fully formatted image generation prompt."}
			},
			"required": ["prompt"]
		}`),
	},
}

// ContinueStory implements story.Generator.
func (g *OpenAIGenerator) ContinueStory(ctx context.Context, premise, narrative, choice string, completion float64, endStory bool) (string, string, error) {
	system := continueSystemPrompt
	if endStory {
		system = concludeSystemPrompt
	}
	user := fmt.Sprintf(`Main idea of the story:
%s

Story so far (%.0f%% complete):
%s

Readers' choice: %q

Write the next three paragraphs using the 'write_story_part' tool.`,
		premise, completion*100, tailTruncate(narrative, g.maxContextChars), choice)

	args, err := g.callTool(ctx, system, user, storyTool)
	if err != nil {
		return "", "", err
	}

	var out struct {
		MainIdea  string `json:"main_idea"`
		Reasoning string `json:"reasoning"`
		StoryPart string `json:"story_part"`
	}
	if err := json.Unmarshal(args, &out); err != nil {
		return "", "", fmt.Errorf("gen: parse write_story_part arguments: %w", err)
	}
	log.Printf("gen: continuation reasoning: %s", out.Reasoning)

	part := strings.TrimSpace(out.StoryPart)
	idea := strings.TrimSpace(out.MainIdea)
	if part == "" || idea == "" {
		return "", "", fmt.Errorf("gen: write_story_part returned an empty story part or main idea")
	}
	return part, idea, nil
}

// ProposePollOptions implements story.Generator. Count and length validation
// is the scheduler's job; this only guarantees a parsed list of strings.
func (g *OpenAIGenerator) ProposePollOptions(ctx context.Context, narrative string, includeEndOption bool) ([]string, error) {
	user := fmt.Sprintf(`Full story so far:
%s

Propose 4 poll options using the 'suggest_poll_options' tool.`,
		tailTruncate(narrative, g.maxContextChars))

	args, err := g.callTool(ctx, pollSystemPrompt, user, pollTool)
	if err != nil {
		return nil, err
	}
	var out struct {
		Options []string `json:"options"`
	}
	if err := json.Unmarshal(args, &out); err != nil {
		return nil, fmt.Errorf("gen: parse suggest_poll_options arguments: %w", err)
	}
	return out.Options, nil
}

// ComposeImagePrompt implements story.Generator.
func (g *OpenAIGenerator) ComposeImagePrompt(ctx context.Context, text, premise string) (string, error) {
	input, _ := json.Marshal(map[string]string{
		"story":     text,
		"styling":   g.imageStyle,
		"main_idea": premise,
	})

	args, err := g.callTool(ctx, imagePromptSystemPrompt, string(input), imagePromptTool)
	if err != nil {
		return "", err
	}
	var out struct {
		Prompt string `json:"prompt"`
	}
	if err := json.Unmarshal(args, &out); err != nil {
		return "", fmt.Errorf("gen: parse format_image_prompt arguments: %w", err)
	}
	if strings.TrimSpace(out.Prompt) == "" {
		return "", fmt.Errorf("gen: format_image_prompt returned an empty prompt")
	}
	return out.Prompt, nil
}

// callTool runs one chat completion forced onto a single tool and returns the
// raw tool-call arguments.
func (g *OpenAIGenerator) callTool(ctx context.Context, system, user string, tool openai.Tool) (json.RawMessage, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Tools: []openai.Tool{tool},
		ToolChoice: openai.ToolChoice{
			Type:     openai.ToolTypeFunction,
			Function: openai.ToolFunction{Name: tool.Function.Name},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("gen: chat completion: %w", err)
	}
	return extractToolArgs(&resp, tool.Function.Name)
}

func extractToolArgs(resp *openai.ChatCompletionResponse, toolName string) (json.RawMessage, error) {
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: %s (no choices)", ErrNoToolCall, toolName)
	}
	for _, call := range resp.Choices[0].Message.ToolCalls {
		if call.Function.Name != toolName {
			continue
		}
		if !json.Valid([]byte(call.Function.Arguments)) {
			return nil, fmt.Errorf("gen: tool %s returned invalid JSON arguments", toolName)
		}
		return json.RawMessage(call.Function.Arguments), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNoToolCall, toolName)
}

// tailTruncate keeps the last max runes of s: recent story context matters
// more than the opening.
func tailTruncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[len(r)-max:])
}
