package dto

// AssistantAskRequest carries a member's question for the help assistant.
type AssistantAskRequest struct {
	Question string `json:"question" validate:"required,min=3,max=2000"`
	Topic    string `json:"topic" validate:"max=64"`
}

// AssistantAnswerResponse is the assistant's reply.
type AssistantAnswerResponse struct {
	Answer      string   `json:"answer"`
	Suggestions []string `json:"suggestions,omitempty"`
	Model       string   `json:"model"`
}

// UserConfigResponse lists the features and payloads resolved for a role.
type UserConfigResponse struct {
	Role     string                            `json:"role"`
	Features map[string]map[string]interface{} `json:"features"`
	CacheHit bool                              `json:"cache_hit"`
}

// UploadResponse reports a stored file.
type UploadResponse struct {
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}
