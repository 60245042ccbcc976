package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/mindvault-app/mindvault/internal/api"
	"github.com/mindvault-app/mindvault/internal/domain"
	"github.com/mindvault-app/mindvault/internal/service"
	"github.com/mindvault-app/mindvault/internal/telemetry"
)

const (
	noResultsAnswer       = "I couldn't find any relevant information in your knowledge base. Try adding more content or rephrasing your question."
	noResultsPublicAnswer = "No relevant information found."
)

type QueryRunner interface {
	Query(ctx context.Context, question string) (*service.QueryOutput, error)
}

type EnrichmentRunner interface {
	Summarize(ctx context.Context, content string) (string, error)
	AutoTag(ctx context.Context, content, title string) ([]string, error)
}

type AIHandler struct {
	query    QueryRunner
	enricher EnrichmentRunner
	metrics  *telemetry.Metrics
}

func NewAIHandler(query QueryRunner, enricher EnrichmentRunner, metrics *telemetry.Metrics) *AIHandler {
	return &AIHandler{query: query, enricher: enricher, metrics: metrics}
}

func (h *AIHandler) incAICall(op string, success bool) {
	if h.metrics != nil {
		h.metrics.IncAICall(op, success)
	}
}

type QueryRequest struct {
	Question string `json:"question"`
}

type QueryResponse struct {
	Answer     string          `json:"answer"`
	Sources    []*ItemResponse `json:"sources"`
	Confidence float64         `json:"confidence"`
}

func (h *AIHandler) Query(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	question := strings.TrimSpace(req.Question)
	if question == "" {
		api.Error(w, http.StatusBadRequest, "question is required")
		return
	}
	if len(question) > domain.MaxQuestionChars {
		api.HandleError(w, domain.ErrQuestionTooLong)
		return
	}

	output, err := h.query.Query(r.Context(), question)
	if err != nil {
		h.incAICall("query", false)
		api.HandleError(w, err)
		return
	}
	h.incAICall("query", true)

	resp := QueryResponse{
		Answer:     output.Answer,
		Sources:    make([]*ItemResponse, len(output.Sources)),
		Confidence: output.Confidence,
	}
	if !output.Found {
		resp.Answer = noResultsAnswer
	}
	for i, item := range output.Sources {
		resp.Sources[i] = itemToResponse(item)
	}

	api.JSON(w, http.StatusOK, resp)
}

type PublicSourceResponse struct {
	ID      string  `json:"id"`
	Title   string  `json:"title"`
	Type    string  `json:"type"`
	Summary *string `json:"summary"`
}

type PublicQueryResponse struct {
	Answer  string                  `json:"answer"`
	Sources []*PublicSourceResponse `json:"sources"`
}

func (h *AIHandler) PublicQuery(w http.ResponseWriter, r *http.Request) {
	question := strings.TrimSpace(r.URL.Query().Get("q"))
	if question == "" {
		api.Error(w, http.StatusBadRequest, "q is required")
		return
	}
	if len(question) > domain.MaxQuestionChars {
		api.HandleError(w, domain.ErrQuestionTooLong)
		return
	}

	output, err := h.query.Query(r.Context(), question)
	if err != nil {
		h.incAICall("public_query", false)
		api.HandleError(w, err)
		return
	}
	h.incAICall("public_query", true)

	resp := PublicQueryResponse{
		Answer:  output.Answer,
		Sources: make([]*PublicSourceResponse, len(output.Sources)),
	}
	if !output.Found {
		resp.Answer = noResultsPublicAnswer
	}
	for i, item := range output.Sources {
		resp.Sources[i] = &PublicSourceResponse{
			ID:      item.ID,
			Title:   item.Title,
			Type:    string(item.Type),
			Summary: optionalString(item.Summary),
		}
	}

	api.JSON(w, http.StatusOK, resp)
}

type SummarizeRequest struct {
	Content string `json:"content"`
}

type SummarizeResponse struct {
	Summary string `json:"summary"`
}

func (h *AIHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	var req SummarizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		api.Error(w, http.StatusBadRequest, "content is required")
		return
	}
	if len(content) > domain.MaxContentChars {
		api.HandleError(w, domain.ErrContentTooLong)
		return
	}

	summary, err := h.enricher.Summarize(r.Context(), content)
	if err != nil {
		h.incAICall("summarize", false)
		api.Error(w, http.StatusInternalServerError, "failed to generate summary")
		return
	}
	h.incAICall("summarize", true)

	api.JSON(w, http.StatusOK, SummarizeResponse{Summary: summary})
}

type AutoTagRequest struct {
	Content string `json:"content"`
	Title   string `json:"title"`
}

type AutoTagResponse struct {
	Tags []string `json:"tags"`
}

func (h *AIHandler) AutoTag(w http.ResponseWriter, r *http.Request) {
	var req AutoTagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		api.Error(w, http.StatusBadRequest, "content is required")
		return
	}
	if len(content) > domain.MaxContentChars {
		api.HandleError(w, domain.ErrContentTooLong)
		return
	}

	tags, err := h.enricher.AutoTag(r.Context(), content, strings.TrimSpace(req.Title))
	if err != nil {
		h.incAICall("auto_tag", false)
		api.Error(w, http.StatusInternalServerError, "failed to generate tags")
		return
	}
	h.incAICall("auto_tag", true)

	if tags == nil {
		tags = []string{}
	}
	api.JSON(w, http.StatusOK, AutoTagResponse{Tags: tags})
}
