// Package summarizer asks a hosted language model for a two-line summary of
// an article.
package summarizer

import (
	"context"
	"fmt"
	"strings"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Summarizer produces a short summary for the given article text.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// Prompt builds the instruction sent to the model. The text is forwarded
// unchanged, including when it is empty.
func Prompt(text string) string {
	return fmt.Sprintf("請用兩行文字總結這篇新聞內容：\n%s\n", text)
}

// Func adapts a plain function to Summarizer.
type Func func(ctx context.Context, text string) (string, error)

// Summarize calls f.
func (f Func) Summarize(ctx context.Context, text string) (string, error) {
	return f(ctx, text)
}

func clean(s string) string {
	return strings.TrimSpace(s)
}
