package events

import "time"

const (
	TypeChatCompleted    = "CHAT_COMPLETED"
	TypeSessionCleared   = "SESSION_CLEARED"
	TypeDocumentIngested = "DOCUMENT_INGESTED"
	TypeDocumentDeleted  = "DOCUMENT_DELETED"
)

// NewChatCompleted is emitted after a chat turn has been fully answered.
func NewChatCompleted(sessionID, category string, confidence float64, sourceCount int, responseTimeMs float64) Event {
	return BaseEvent{
		Type: TypeChatCompleted,
		Data: map[string]interface{}{
			"session_id":       sessionID,
			"category":         category,
			"confidence":       confidence,
			"source_count":     sourceCount,
			"response_time_ms": responseTimeMs,
		},
		OccurredAt: time.Now(),
	}
}

// NewSessionCleared is emitted when a conversation is explicitly ended.
func NewSessionCleared(sessionID string) Event {
	return BaseEvent{
		Type: TypeSessionCleared,
		Data: map[string]interface{}{
			"session_id": sessionID,
		},
		OccurredAt: time.Now(),
	}
}

// NewDocumentIngested is emitted after a knowledge document and its
// embeddings have been indexed.
func NewDocumentIngested(documentID string, chunkCount int) Event {
	return BaseEvent{
		Type: TypeDocumentIngested,
		Data: map[string]interface{}{
			"document_id": documentID,
			"chunk_count": chunkCount,
		},
		OccurredAt: time.Now(),
	}
}

// NewDocumentDeleted is emitted after a knowledge document is removed.
func NewDocumentDeleted(documentID string) Event {
	return BaseEvent{
		Type: TypeDocumentDeleted,
		Data: map[string]interface{}{
			"document_id": documentID,
		},
		OccurredAt: time.Now(),
	}
}
