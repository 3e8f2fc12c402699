package dto

type ChatRequest struct {
	Message        string `json:"message" validate:"required,min=1,max=2000"`
	SessionId      string `json:"session_id,omitempty"`
	UserId         string `json:"user_id,omitempty"`
	IncludeSources *bool  `json:"include_sources,omitempty"` // defaults to true
}

type SourceCitationDTO struct {
	Title          string  `json:"title"`
	ContentType    string  `json:"content_type"`
	RelevanceScore float64 `json:"relevance_score"`
	SourceURL      string  `json:"source_url,omitempty"`
	Excerpt        string  `json:"excerpt,omitempty"`
}

type ChatResponse struct {
	Answer          string              `json:"answer"`
	SessionId       string              `json:"session_id"`
	QueryCategory   string              `json:"query_category"`
	Sources         []SourceCitationDTO `json:"sources"`
	ConfidenceScore float64             `json:"confidence_score"`
	ResponseTimeMs  float64             `json:"response_time_ms"`
	Disclaimer      string              `json:"disclaimer"`
}

type ClearSessionResponse struct {
	SessionId string `json:"session_id"`
	Cleared   bool   `json:"cleared"`
}

type SessionHistoryTurnDTO struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

type SessionHistoryResponse struct {
	SessionId string                  `json:"session_id"`
	Turns     []SessionHistoryTurnDTO `json:"turns"`
}
