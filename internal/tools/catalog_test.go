package tools

import (
	"strings"
	"testing"
)

func TestRenderTemplates(t *testing.T) {
	tests := []struct {
		category string
		prompt   string
		want     string
	}{
		{"text-generation", "write a poem", "write a poem"},
		{"code-generation", "fizzbuzz in go", "fizzbuzz in go"},
		{"chatbot", "hi there", "hi there"},
		{"image-generation", "a red fox", "a red fox"},
		{"summarization", "The quick brown fox", `Summarize the following text: "The quick brown fox"`},
		{"translation", "hola", `Translate the following text: "hola"`},
		{"detect-language", "bonjour", `Detect the language of the following text: "bonjour"`},
		{"extract-keywords", "go is fun", `Extract key keywords from the following text: "go is fun"`},
		{"summarize-conversation", "a: hi b: hey", `Summarize the following conversation snippet: "a: hi b: hey"`},
		{"object-detection", "a street", `Perform object detection on: "a street"`},
		{"image-captioning", "a cat", `Generate a descriptive caption for an image that contains: "a cat"`},
		{"idea-brainstormer", "a party", `Brainstorm a list of creative ideas for: "a party"`},
		{"data-analysis", "1,2,3", `Perform data analysis on: "1,2,3"`},
		{"generate-report-summary", "q3", `Generate a concise report summary from the following data and analysis: "q3"`},
		{"speech-to-text", "hello", `Transcribe the following spoken input: "hello"`},
		{"text-to-speech", "hello", `Generate speech for the following text: "hello"`},
		{"suggest-tone", "we won", `Suggest a suitable tone (e.g., formal, casual, excited, calm) for the following text for text-to-speech conversion: "we won"`},
		{"refine-image-prompt", "a dog", `Refine the following image generation prompt to make it more detailed and evocative, suitable for an AI image generator: "a dog"`},
		{"explain-code", "x := 1", "Explain the following code snippet in detail, including its purpose, how it works, and any potential improvements:\n```\nx := 1\n```"},
	}

	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			tool, ok := Lookup(tt.category)
			if !ok {
				t.Fatalf("category %q not found", tt.category)
			}
			if got := tool.Render(tt.prompt); got != tt.want {
				t.Fatalf("Render() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderKeepsPercentVerbatim(t *testing.T) {
	tool, _ := Lookup("summarization")
	got := tool.Render("100% done %s")
	want := `Summarize the following text: "100% done %s"`
	if got != want {
		t.Fatalf("Render() = %q, want %q", got, want)
	}
}

func TestLookupKinds(t *testing.T) {
	img, ok := Lookup("image-generation")
	if !ok || img.Kind != KindImage {
		t.Fatalf("image-generation should be an image tool, got %+v", img)
	}
	for _, category := range Categories() {
		tool, _ := Lookup(category)
		if category != "image-generation" && tool.Kind != KindText {
			t.Fatalf("%s should be a text tool", category)
		}
		if tool.Category != category {
			t.Fatalf("Lookup(%q).Category = %q", category, tool.Category)
		}
	}
}

func TestLookupAliases(t *testing.T) {
	tool, ok := Lookup("text_generation")
	if !ok || tool.Category != "text-generation" || tool.Kind != KindText {
		t.Fatalf("unexpected alias resolution: %+v ok=%v", tool, ok)
	}
	tool, ok = Lookup("image_generation")
	if !ok || tool.Category != "image-generation" || tool.Kind != KindImage {
		t.Fatalf("unexpected alias resolution: %+v ok=%v", tool, ok)
	}
}

func TestLookupUnknownAndCaseSensitive(t *testing.T) {
	for _, category := range []string{"foo", "", "Summarization", "SUMMARIZATION", "summarization "} {
		if _, ok := Lookup(category); ok {
			t.Fatalf("Lookup(%q) should miss", category)
		}
	}
}

func TestCategoriesSortedAndComplete(t *testing.T) {
	got := Categories()
	if len(got) != 19 {
		t.Fatalf("expected 19 categories, got %d: %v", len(got), got)
	}
	for i := 1; i < len(got); i++ {
		if got[i-1] >= got[i] {
			t.Fatalf("categories not sorted at %d: %v", i, got)
		}
	}
	for _, c := range got {
		if strings.Contains(c, "_") {
			t.Fatalf("aliases must not be listed: %s", c)
		}
	}
}

func TestAll(t *testing.T) {
	all := All()
	if len(all) != len(Categories()) {
		t.Fatalf("All() returned %d tools", len(all))
	}
	if all[0].Category != Categories()[0] {
		t.Fatalf("All() not aligned with Categories()")
	}
}

func TestKindString(t *testing.T) {
	if KindText.String() != "text" || KindImage.String() != "image" {
		t.Fatalf("unexpected kind names")
	}
}
