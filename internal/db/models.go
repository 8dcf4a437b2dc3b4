package db

import (
	"time"

	"github.com/pgvector/pgvector-go"
)

// TopicDocument maps topics.documents. Rows are append-only.
type TopicDocument struct {
	DocumentID   int64            `gorm:"column:document_id;primaryKey;autoIncrement"`
	DocumentUUID string           `gorm:"column:document_uuid;type:uuid;not null;default:gen_random_uuid();unique"`
	SourceItemID string           `gorm:"column:source_item_id;type:text;not null;default:''"`
	Title        string           `gorm:"column:title;type:text;not null;default:''"`
	Description  string           `gorm:"column:description;type:text;not null;default:''"`
	URL          string           `gorm:"column:url;type:text;not null;default:''"`
	Content      string           `gorm:"column:content;type:text;not null"`
	ModelName    string           `gorm:"column:model_name;type:text;not null"`
	Embedding    *pgvector.Vector `gorm:"column:embedding;type:vector;not null"`
	IndexedAt    time.Time        `gorm:"column:indexed_at;type:timestamptz;not null;default:now()"`
}

func (TopicDocument) TableName() string { return "topics.documents" }

func autoMigrateModels() []any {
	return []any{
		&TopicDocument{},
	}
}
