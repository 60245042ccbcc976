package domain

import (
	"strings"
	"time"
)

// EmbeddingDimensions is the fixed length of stored item vectors.
const EmbeddingDimensions = 384

// MaxTags caps the number of tags stored per item.
const MaxTags = 20

// MaxContentChars caps item and enrichment content length.
const MaxContentChars = 20000

// MaxQuestionChars caps query question length.
const MaxQuestionChars = 500

// ItemType represents the type of a knowledge item
type ItemType string

const (
	ItemTypeNote    ItemType = "note"
	ItemTypeLink    ItemType = "link"
	ItemTypeInsight ItemType = "insight"
)

// SortField is a list-endpoint sort column
type SortField string

const (
	SortFieldCreatedAt SortField = "createdAt"
	SortFieldUpdatedAt SortField = "updatedAt"
	SortFieldTitle     SortField = "title"
)

// SortOrder is a list-endpoint sort direction
type SortOrder string

const (
	SortOrderAsc  SortOrder = "asc"
	SortOrderDesc SortOrder = "desc"
)

// KnowledgeItem is the persisted content unit. Summary and Embedding are
// populated best-effort by AI enrichment and may be absent. The embedding,
// when present, reflects title+content as of the last successful generation;
// it may lag the current content if regeneration failed.
type KnowledgeItem struct {
	ID        string
	Title     string
	Content   string
	Type      ItemType
	Tags      []string
	SourceURL string // empty means none; stored as NULL
	Summary   string // empty means none; stored as NULL
	Embedding []float32
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidateKnowledgeItem validates a KnowledgeItem instance
func ValidateKnowledgeItem(k *KnowledgeItem) error {
	if k == nil {
		return ErrMissingRequiredField
	}

	if k.ID == "" {
		return ErrMissingRequiredField
	}

	if strings.TrimSpace(k.Title) == "" {
		return ErrMissingRequiredField
	}

	if strings.TrimSpace(k.Content) == "" {
		return ErrMissingRequiredField
	}

	if !IsValidItemType(k.Type) {
		return ErrInvalidItemType
	}

	if len(k.Content) > MaxContentChars {
		return ErrContentTooLong
	}

	if len(k.Tags) > MaxTags {
		return ErrTooManyTags
	}

	if len(k.Embedding) != 0 && len(k.Embedding) != EmbeddingDimensions {
		return ErrWrongEmbeddingDimensions
	}

	return nil
}

// IsValidItemType checks if an ItemType is valid
func IsValidItemType(t ItemType) bool {
	switch t {
	case ItemTypeNote, ItemTypeLink, ItemTypeInsight:
		return true
	}
	return false
}

// IsValidSortField checks if a SortField is valid
func IsValidSortField(f SortField) bool {
	switch f {
	case SortFieldCreatedAt, SortFieldUpdatedAt, SortFieldTitle:
		return true
	}
	return false
}

// IsValidSortOrder checks if a SortOrder is valid
func IsValidSortOrder(o SortOrder) bool {
	switch o {
	case SortOrderAsc, SortOrderDesc:
		return true
	}
	return false
}
