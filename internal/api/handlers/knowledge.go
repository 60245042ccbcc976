package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mindvault-app/mindvault/internal/api"
	"github.com/mindvault-app/mindvault/internal/domain"
	"github.com/mindvault-app/mindvault/internal/service"
	"github.com/mindvault-app/mindvault/internal/validation"
)

const (
	defaultPage  = 1
	maxPage      = 100000
	defaultLimit = 50
	maxLimit     = 100

	defaultSimilarLimit = 5
	maxSimilarLimit     = 20
)

type KnowledgeService interface {
	Create(ctx context.Context, input service.CreateInput) (*domain.KnowledgeItem, error)
	GetByID(ctx context.Context, id string) (*domain.KnowledgeItem, error)
	List(ctx context.Context, input service.ListItemsInput) (*service.ListItemsOutput, error)
	Update(ctx context.Context, input service.UpdateInput) (*domain.KnowledgeItem, error)
	Delete(ctx context.Context, id string) error
	Similar(ctx context.Context, id string, limit int) ([]*service.SimilarItem, error)
}

type KnowledgeHandler struct {
	svc KnowledgeService
}

func NewKnowledgeHandler(svc KnowledgeService) *KnowledgeHandler {
	return &KnowledgeHandler{svc: svc}
}

type CreateItemRequest struct {
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Type      string   `json:"type"`
	Tags      []string `json:"tags"`
	SourceURL string   `json:"sourceUrl"`
}

type UpdateItemRequest struct {
	Title     *string  `json:"title"`
	Content   *string  `json:"content"`
	Type      *string  `json:"type"`
	Tags      []string `json:"tags"`
	SourceURL *string  `json:"sourceUrl"`
	Summary   *string  `json:"summary"`
}

type ItemResponse struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Type      string   `json:"type"`
	Tags      []string `json:"tags"`
	SourceURL *string  `json:"sourceUrl"`
	Summary   *string  `json:"summary"`
	CreatedAt string   `json:"createdAt"`
	UpdatedAt string   `json:"updatedAt"`
}

func itemToResponse(k *domain.KnowledgeItem) *ItemResponse {
	tags := k.Tags
	if tags == nil {
		tags = []string{}
	}
	return &ItemResponse{
		ID:        k.ID,
		Title:     k.Title,
		Content:   k.Content,
		Type:      string(k.Type),
		Tags:      tags,
		SourceURL: optionalString(k.SourceURL),
		Summary:   optionalString(k.Summary),
		CreatedAt: k.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: k.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (h *KnowledgeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	title := strings.TrimSpace(req.Title)
	content := strings.TrimSpace(req.Content)
	if title == "" {
		api.Error(w, http.StatusBadRequest, "title is required")
		return
	}
	if content == "" {
		api.Error(w, http.StatusBadRequest, "content is required")
		return
	}
	if len(content) > domain.MaxContentChars {
		api.HandleError(w, domain.ErrContentTooLong)
		return
	}

	itemType := domain.ItemTypeNote
	if req.Type != "" {
		if !validation.IsKnownType(req.Type) {
			api.HandleError(w, domain.ErrInvalidItemType)
			return
		}
		itemType = domain.ItemType(req.Type)
	}

	sourceURL := strings.TrimSpace(req.SourceURL)
	if sourceURL != "" && !validation.IsSafeURL(sourceURL) {
		api.HandleError(w, domain.ErrInvalidSourceURL)
		return
	}

	input := service.CreateInput{
		Title:     title,
		Content:   content,
		Type:      itemType,
		Tags:      validation.NormalizeTags(req.Tags),
		SourceURL: sourceURL,
	}

	item, err := h.svc.Create(r.Context(), input)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, itemToResponse(item))
}

type ItemListResponse struct {
	Data       []*ItemResponse `json:"data"`
	Count      int             `json:"count"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"totalPages"`
}

func (h *KnowledgeHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	itemType := q.Get("type")
	if itemType != "" && !validation.IsKnownType(itemType) {
		api.HandleError(w, domain.ErrInvalidItemType)
		return
	}

	sortBy := q.Get("sortBy")
	if sortBy == "" {
		sortBy = string(domain.SortFieldCreatedAt)
	} else if !validation.IsKnownSortField(sortBy) {
		api.HandleError(w, domain.ErrInvalidSortField)
		return
	}

	sortOrder := q.Get("sortOrder")
	if sortOrder == "" {
		sortOrder = string(domain.SortOrderDesc)
	} else if !validation.IsKnownSortOrder(sortOrder) {
		api.HandleError(w, domain.ErrInvalidSortOrder)
		return
	}

	var tags []string
	for _, t := range strings.Split(q.Get("tags"), ",") {
		if trimmed := strings.TrimSpace(t); trimmed != "" {
			tags = append(tags, strings.ToLower(trimmed))
		}
	}

	input := service.ListItemsInput{
		Search:    strings.TrimSpace(q.Get("search")),
		Type:      domain.ItemType(itemType),
		Tags:      tags,
		SortBy:    domain.SortField(sortBy),
		SortOrder: domain.SortOrder(sortOrder),
		Page:      validation.ParseBoundedInt(q.Get("page"), defaultPage, 1, maxPage),
		Limit:     validation.ParseBoundedInt(q.Get("limit"), defaultLimit, 1, maxLimit),
	}

	output, err := h.svc.List(r.Context(), input)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	responses := make([]*ItemResponse, len(output.Items))
	for i, item := range output.Items {
		responses[i] = itemToResponse(item)
	}

	api.JSON(w, http.StatusOK, ItemListResponse{
		Data:       responses,
		Count:      output.Count,
		Page:       output.Page,
		Limit:      output.Limit,
		TotalPages: output.TotalPages,
	})
}

func (h *KnowledgeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	item, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, itemToResponse(item))
}

func (h *KnowledgeHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	var req UpdateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	input := service.UpdateInput{ItemID: id}
	if req.Title != nil {
		trimmed := strings.TrimSpace(*req.Title)
		input.Title = &trimmed
	}
	if req.Content != nil {
		trimmed := strings.TrimSpace(*req.Content)
		input.Content = &trimmed
	}
	if req.Type != nil {
		itemType := domain.ItemType(*req.Type)
		input.Type = &itemType
	}
	if req.Tags != nil {
		input.Tags = validation.NormalizeTags(req.Tags)
		input.HasTags = true
	}
	if req.SourceURL != nil {
		trimmed := strings.TrimSpace(*req.SourceURL)
		if trimmed != "" && !validation.IsSafeURL(trimmed) {
			api.HandleError(w, domain.ErrInvalidSourceURL)
			return
		}
		input.SourceURL = &trimmed
	}
	if req.Summary != nil {
		input.Summary = req.Summary
	}

	item, err := h.svc.Update(r.Context(), input)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, itemToResponse(item))
}

func (h *KnowledgeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusOK, api.MessageResponse{Message: "Knowledge item deleted successfully"})
}

type SimilarItemResponse struct {
	Item       *ItemResponse `json:"item"`
	Similarity float64       `json:"similarity"`
}

func (h *KnowledgeHandler) Similar(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	limit := validation.ParseBoundedInt(r.URL.Query().Get("limit"), defaultSimilarLimit, 1, maxSimilarLimit)

	similar, err := h.svc.Similar(r.Context(), id, limit)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	responses := make([]*SimilarItemResponse, len(similar))
	for i, s := range similar {
		responses[i] = &SimilarItemResponse{
			Item:       itemToResponse(s.Item),
			Similarity: s.Similarity,
		}
	}

	api.Success(w, http.StatusOK, responses)
}
