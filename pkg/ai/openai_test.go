package ai

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseAnswer(t *testing.T) {
	answer, err := parseAnswer(`{"answer":"Volunteer 30 approved hours to waive your fee.","suggestions":["How do I log hours?"]}`)
	require.NoError(t, err)
	require.Equal(t, "Volunteer 30 approved hours to waive your fee.", answer.Text)
	require.Len(t, answer.Suggestions, 1)
}

func TestParseAnswerRejectsEmpty(t *testing.T) {
	_, err := parseAnswer(`{"answer":"  "}`)
	require.Error(t, err)

	_, err = parseAnswer(`not json`)
	require.Error(t, err)
}

func TestBuildUserPromptIncludesContext(t *testing.T) {
	prompt := buildUserPrompt(Question{
		Text:          "How close am I to a waiver?",
		Topic:         "volunteering",
		MemberName:    "Ana",
		MemberRole:    "volunteer",
		WaiverSummary: "22 of 30 hours approved",
	})
	require.True(t, strings.Contains(prompt, "How close am I to a waiver?"))
	require.True(t, strings.Contains(prompt, "volunteering"))
	require.True(t, strings.Contains(prompt, "22 of 30 hours approved"))
}

func TestNewOpenAIAssistantRequiresKey(t *testing.T) {
	_, err := NewOpenAIAssistant(OpenAIConfig{})
	require.Error(t, err)
}
