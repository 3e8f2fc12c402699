package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Knowledge base content types.
const (
	ContentTypeMedicalArticle  = "medical_article"
	ContentTypeFAQ             = "faq"
	ContentTypePatientGuide    = "patient_guide"
	ContentTypeResearchSummary = "research_summary"
	ContentTypeSupportResource = "support_resource"
)

type KnowledgeDocument struct {
	Id          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Title       string         `gorm:"type:varchar(500);not null"`
	Content     string         `gorm:"type:text;not null"`
	ContentType string         `gorm:"type:varchar(50);not null;default:'medical_article';index"`
	Category    string         `gorm:"type:varchar(50);index"`
	SourceURL   string         `gorm:"type:text"`
	Tags        datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt   time.Time      `gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime"`
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

func (KnowledgeDocument) TableName() string {
	return "knowledge_documents"
}
