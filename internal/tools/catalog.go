// Package tools holds the static dispatch table that maps a tool category to
// the model it runs on and the instruction wrapped around the caller's prompt.
package tools

import (
	"fmt"
	"slices"

	"github.com/samber/lo"
)

type Kind int

const (
	KindText Kind = iota
	KindImage
)

func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	default:
		return "text"
	}
}

type Tool struct {
	Category string
	Kind     Kind
	// Template holds one %s for the prompt. Empty means the prompt is sent as is.
	Template string
}

// Render returns the text sent upstream for prompt.
func (t Tool) Render(prompt string) string {
	if t.Template == "" {
		return prompt
	}
	return fmt.Sprintf(t.Template, prompt)
}

var catalog = map[string]Tool{
	"text-generation":  {Kind: KindText},
	"image-generation": {Kind: KindImage},
	"refine-image-prompt": {
		Kind:     KindText,
		Template: `Refine the following image generation prompt to make it more detailed and evocative, suitable for an AI image generator: "%s"`,
	},
	"code-generation": {Kind: KindText},
	"explain-code": {
		Kind:     KindText,
		Template: "Explain the following code snippet in detail, including its purpose, how it works, and any potential improvements:\n```\n%s\n```",
	},
	"speech-to-text": {
		Kind:     KindText,
		Template: `Transcribe the following spoken input: "%s"`,
	},
	"text-to-speech": {
		Kind:     KindText,
		Template: `Generate speech for the following text: "%s"`,
	},
	"suggest-tone": {
		Kind:     KindText,
		Template: `Suggest a suitable tone (e.g., formal, casual, excited, calm) for the following text for text-to-speech conversion: "%s"`,
	},
	"data-analysis": {
		Kind:     KindText,
		Template: `Perform data analysis on: "%s"`,
	},
	"generate-report-summary": {
		Kind:     KindText,
		Template: `Generate a concise report summary from the following data and analysis: "%s"`,
	},
	"translation": {
		Kind:     KindText,
		Template: `Translate the following text: "%s"`,
	},
	"detect-language": {
		Kind:     KindText,
		Template: `Detect the language of the following text: "%s"`,
	},
	"summarization": {
		Kind:     KindText,
		Template: `Summarize the following text: "%s"`,
	},
	"extract-keywords": {
		Kind:     KindText,
		Template: `Extract key keywords from the following text: "%s"`,
	},
	"chatbot": {Kind: KindText},
	"summarize-conversation": {
		Kind:     KindText,
		Template: `Summarize the following conversation snippet: "%s"`,
	},
	"object-detection": {
		Kind:     KindText,
		Template: `Perform object detection on: "%s"`,
	},
	"image-captioning": {
		Kind:     KindText,
		Template: `Generate a descriptive caption for an image that contains: "%s"`,
	},
	"idea-brainstormer": {
		Kind:     KindText,
		Template: `Brainstorm a list of creative ideas for: "%s"`,
	},
}

// Older frontends send the underscore spelling for the two generic tools.
var aliases = map[string]string{
	"text_generation":  "text-generation",
	"image_generation": "image-generation",
}

// Lookup resolves category with an exact, case-sensitive match.
func Lookup(category string) (Tool, bool) {
	if canonical, ok := aliases[category]; ok {
		category = canonical
	}
	t, ok := catalog[category]
	if !ok {
		return Tool{}, false
	}
	t.Category = category
	return t, true
}

// Categories returns the canonical category names in sorted order.
func Categories() []string {
	keys := lo.Keys(catalog)
	slices.Sort(keys)
	return keys
}

// All returns every canonical tool, sorted by category.
func All() []Tool {
	return lo.Map(Categories(), func(category string, _ int) Tool {
		t, _ := Lookup(category)
		return t
	})
}
