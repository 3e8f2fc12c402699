package dto

import "github.com/google/uuid"

// PublishEmbedDocumentMessage asks the embed consumer to (re)index a
// knowledge document.
type PublishEmbedDocumentMessage struct {
	DocumentId uuid.UUID `json:"document_id"`
}
