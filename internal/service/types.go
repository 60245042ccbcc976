package service

import "github.com/mindvault-app/mindvault/internal/domain"

// ListItemsInput carries validated list parameters. Zero values mean
// "no filter"; Page and Limit are already clamped by the handler.
type ListItemsInput struct {
	Search    string
	Type      domain.ItemType
	Tags      []string
	SortBy    domain.SortField
	SortOrder domain.SortOrder
	Page      int
	Limit     int
}

// ListItemsOutput is one page of items plus pagination bookkeeping.
type ListItemsOutput struct {
	Items      []*domain.KnowledgeItem
	Count      int
	Page       int
	Limit      int
	TotalPages int
}

// Candidate is the reduced projection retrieval hands to answer synthesis.
type Candidate struct {
	ID      string
	Title   string
	Content string
	Summary string
}

// SimilarItem pairs an item with its cosine similarity to a query vector.
type SimilarItem struct {
	Item       *domain.KnowledgeItem
	Similarity float64
}
