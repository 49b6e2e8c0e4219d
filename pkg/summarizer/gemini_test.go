package summarizer

import (
	"context"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirstCandidateText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Role: "model", Parts: []genai.Part{genai.Text(" 台股收紅，"), genai.Text("電子股領漲。\n")}}},
			{Content: &genai.Content{Parts: []genai.Part{genai.Text("ignored")}}},
		},
	}

	got, err := firstCandidateText(resp)
	require.NoError(t, err)
	assert.Equal(t, "台股收紅，電子股領漲。", got)
}

func TestFirstCandidateTextEmpty(t *testing.T) {
	_, err := firstCandidateText(nil)
	assert.ErrorContains(t, err, "no candidates")

	_, err = firstCandidateText(&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}})
	assert.ErrorContains(t, err, "empty candidate")
}

func TestNewGeminiValidatesConfig(t *testing.T) {
	_, err := NewGemini(context.Background(), GeminiConfig{Model: "gemini-1.5-flash"})
	assert.ErrorContains(t, err, "api key")
	_, err = NewGemini(context.Background(), GeminiConfig{APIKey: "k"})
	assert.ErrorContains(t, err, "model")
}

func TestFuncAdapter(t *testing.T) {
	var s Summarizer = Func(func(_ context.Context, text string) (string, error) { return "<" + text + ">", nil })
	got, err := s.Summarize(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "<x>", got)
}
