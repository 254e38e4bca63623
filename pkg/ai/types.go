package ai

import "context"

// Question carries a member's help request and the portal context given to
// the model.
type Question struct {
	Text          string
	Topic         string
	MemberName    string
	MemberRole    string
	WaiverSummary string
}

// Answer is the structured reply returned by the assistant.
type Answer struct {
	Text        string                 `json:"answer"`
	Suggestions []string               `json:"suggestions,omitempty"`
	Raw         map[string]interface{} `json:"raw,omitempty"`
}

// Assistant describes a hosted model capable of answering portal questions.
type Assistant interface {
	Ask(ctx context.Context, question Question) (Answer, error)
}
