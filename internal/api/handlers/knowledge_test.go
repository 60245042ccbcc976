package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mindvault-app/mindvault/internal/domain"
	"github.com/mindvault-app/mindvault/internal/service"
)

type MockKnowledgeService struct {
	mock.Mock
}

func (m *MockKnowledgeService) Create(ctx context.Context, input service.CreateInput) (*domain.KnowledgeItem, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.KnowledgeItem), args.Error(1)
}

func (m *MockKnowledgeService) GetByID(ctx context.Context, id string) (*domain.KnowledgeItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.KnowledgeItem), args.Error(1)
}

func (m *MockKnowledgeService) List(ctx context.Context, input service.ListItemsInput) (*service.ListItemsOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListItemsOutput), args.Error(1)
}

func (m *MockKnowledgeService) Update(ctx context.Context, input service.UpdateInput) (*domain.KnowledgeItem, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.KnowledgeItem), args.Error(1)
}

func (m *MockKnowledgeService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockKnowledgeService) Similar(ctx context.Context, id string, limit int) ([]*service.SimilarItem, error) {
	args := m.Called(ctx, id, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*service.SimilarItem), args.Error(1)
}

func newTestItem() *domain.KnowledgeItem {
	now := time.Now().UTC()
	return &domain.KnowledgeItem{
		ID:        "item-123",
		Title:     "Go Concurrency",
		Content:   "goroutines and channels",
		Type:      domain.ItemTypeNote,
		Tags:      []string{"go", "concurrency"},
		Summary:   "Notes on Go concurrency.",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func requestWithID(method, url, id string, body []byte) *http.Request {
	req := httptest.NewRequest(method, url, bytes.NewReader(body))
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestKnowledgeHandler_Create_Success(t *testing.T) {
	mockSvc := new(MockKnowledgeService)
	handler := NewKnowledgeHandler(mockSvc)

	expected := newTestItem()
	mockSvc.On("Create", mock.Anything, mock.MatchedBy(func(input service.CreateInput) bool {
		return input.Title == "Go Concurrency" &&
			input.Type == domain.ItemTypeNote &&
			len(input.Tags) == 2
	})).Return(expected, nil)

	body := `{"title":" Go Concurrency ","content":"goroutines and channels","tags":["Go "," Concurrency"]}`
	req := httptest.NewRequest(http.MethodPost, "/knowledge", bytes.NewReader([]byte(body)))
	w := httptest.NewRecorder()

	handler.Create(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "item-123", data["id"])
	assert.Equal(t, "Notes on Go concurrency.", data["summary"])
	mockSvc.AssertExpectations(t)
}

func TestKnowledgeHandler_Create_InvalidJSON(t *testing.T) {
	mockSvc := new(MockKnowledgeService)
	handler := NewKnowledgeHandler(mockSvc)

	req := httptest.NewRequest(http.MethodPost, "/knowledge", bytes.NewReader([]byte(`{invalid`)))
	w := httptest.NewRecorder()

	handler.Create(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid request body")
}

func TestKnowledgeHandler_Create_MissingTitle(t *testing.T) {
	mockSvc := new(MockKnowledgeService)
	handler := NewKnowledgeHandler(mockSvc)

	body := `{"title":"   ","content":"some content"}`
	req := httptest.NewRequest(http.MethodPost, "/knowledge", bytes.NewReader([]byte(body)))
	w := httptest.NewRecorder()

	handler.Create(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "title is required")
}

func TestKnowledgeHandler_Create_InvalidType(t *testing.T) {
	mockSvc := new(MockKnowledgeService)
	handler := NewKnowledgeHandler(mockSvc)

	body := `{"title":"Test","content":"content","type":"report"}`
	req := httptest.NewRequest(http.MethodPost, "/knowledge", bytes.NewReader([]byte(body)))
	w := httptest.NewRecorder()

	handler.Create(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid knowledge type")
	mockSvc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestKnowledgeHandler_Create_InvalidSourceURL(t *testing.T) {
	mockSvc := new(MockKnowledgeService)
	handler := NewKnowledgeHandler(mockSvc)

	body := `{"title":"Test","content":"content","sourceUrl":"javascript:alert(1)"}`
	req := httptest.NewRequest(http.MethodPost, "/knowledge", bytes.NewReader([]byte(body)))
	w := httptest.NewRecorder()

	handler.Create(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "source URL must be a valid http(s) URL")
}

func TestKnowledgeHandler_Create_DefaultsTypeToNote(t *testing.T) {
	mockSvc := new(MockKnowledgeService)
	handler := NewKnowledgeHandler(mockSvc)

	mockSvc.On("Create", mock.Anything, mock.MatchedBy(func(input service.CreateInput) bool {
		return input.Type == domain.ItemTypeNote
	})).Return(newTestItem(), nil)

	body := `{"title":"Test","content":"content"}`
	req := httptest.NewRequest(http.MethodPost, "/knowledge", bytes.NewReader([]byte(body)))
	w := httptest.NewRecorder()

	handler.Create(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestKnowledgeHandler_List_Success(t *testing.T) {
	mockSvc := new(MockKnowledgeService)
	handler := NewKnowledgeHandler(mockSvc)

	output := &service.ListItemsOutput{
		Items:      []*domain.KnowledgeItem{newTestItem()},
		Count:      1,
		Page:       1,
		Limit:      50,
		TotalPages: 1,
	}
	mockSvc.On("List", mock.Anything, mock.MatchedBy(func(input service.ListItemsInput) bool {
		return input.Page == 1 &&
			input.Limit == 50 &&
			input.SortBy == domain.SortFieldCreatedAt &&
			input.SortOrder == domain.SortOrderDesc
	})).Return(output, nil)

	req := httptest.NewRequest(http.MethodGet, "/knowledge", nil)
	w := httptest.NewRecorder()

	handler.List(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp ItemListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, 1, resp.TotalPages)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "item-123", resp.Data[0].ID)
	mockSvc.AssertExpectations(t)
}

func TestKnowledgeHandler_List_ClampsPagination(t *testing.T) {
	mockSvc := new(MockKnowledgeService)
	handler := NewKnowledgeHandler(mockSvc)

	mockSvc.On("List", mock.Anything, mock.MatchedBy(func(input service.ListItemsInput) bool {
		return input.Page == 1 && input.Limit == 100
	})).Return(&service.ListItemsOutput{Items: []*domain.KnowledgeItem{}, Page: 1, Limit: 100}, nil)

	req := httptest.NewRequest(http.MethodGet, "/knowledge?page=-5&limit=9999", nil)
	w := httptest.NewRecorder()

	handler.List(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestKnowledgeHandler_List_InvalidType(t *testing.T) {
	mockSvc := new(MockKnowledgeService)
	handler := NewKnowledgeHandler(mockSvc)

	req := httptest.NewRequest(http.MethodGet, "/knowledge?type=report", nil)
	w := httptest.NewRecorder()

	handler.List(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid knowledge type")
	mockSvc.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestKnowledgeHandler_List_InvalidSortBy(t *testing.T) {
	mockSvc := new(MockKnowledgeService)
	handler := NewKnowledgeHandler(mockSvc)

	req := httptest.NewRequest(http.MethodGet, "/knowledge?sortBy=id", nil)
	w := httptest.NewRecorder()

	handler.List(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid sortBy field")
}

func TestKnowledgeHandler_Get_Success(t *testing.T) {
	mockSvc := new(MockKnowledgeService)
	handler := NewKnowledgeHandler(mockSvc)

	mockSvc.On("GetByID", mock.Anything, "item-123").Return(newTestItem(), nil)

	req := requestWithID(http.MethodGet, "/knowledge/item-123", "item-123", nil)
	w := httptest.NewRecorder()

	handler.Get(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "item-123", data["id"])
	assert.Nil(t, data["sourceUrl"])
}

func TestKnowledgeHandler_Get_NotFound(t *testing.T) {
	mockSvc := new(MockKnowledgeService)
	handler := NewKnowledgeHandler(mockSvc)

	mockSvc.On("GetByID", mock.Anything, "missing").Return(nil, domain.ErrItemNotFound)

	req := requestWithID(http.MethodGet, "/knowledge/missing", "missing", nil)
	w := httptest.NewRecorder()

	handler.Get(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "knowledge item not found")
}

func TestKnowledgeHandler_Update_PartialFields(t *testing.T) {
	mockSvc := new(MockKnowledgeService)
	handler := NewKnowledgeHandler(mockSvc)

	mockSvc.On("Update", mock.Anything, mock.MatchedBy(func(input service.UpdateInput) bool {
		return input.ItemID == "item-123" &&
			input.Title != nil && *input.Title == "New Title" &&
			input.Content == nil &&
			!input.HasTags
	})).Return(newTestItem(), nil)

	body := `{"title":"New Title"}`
	req := requestWithID(http.MethodPatch, "/knowledge/item-123", "item-123", []byte(body))
	w := httptest.NewRecorder()

	handler.Update(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestKnowledgeHandler_Update_EmptyTagsIsExplicit(t *testing.T) {
	mockSvc := new(MockKnowledgeService)
	handler := NewKnowledgeHandler(mockSvc)

	mockSvc.On("Update", mock.Anything, mock.MatchedBy(func(input service.UpdateInput) bool {
		return input.HasTags && len(input.Tags) == 0
	})).Return(newTestItem(), nil)

	body := `{"tags":[]}`
	req := requestWithID(http.MethodPatch, "/knowledge/item-123", "item-123", []byte(body))
	w := httptest.NewRecorder()

	handler.Update(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestKnowledgeHandler_Update_NoFields(t *testing.T) {
	mockSvc := new(MockKnowledgeService)
	handler := NewKnowledgeHandler(mockSvc)

	mockSvc.On("Update", mock.Anything, mock.Anything).Return(nil, domain.ErrNoUpdatableFields)

	req := requestWithID(http.MethodPatch, "/knowledge/item-123", "item-123", []byte(`{}`))
	w := httptest.NewRecorder()

	handler.Update(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "no valid fields provided for update")
}

func TestKnowledgeHandler_Delete_Success(t *testing.T) {
	mockSvc := new(MockKnowledgeService)
	handler := NewKnowledgeHandler(mockSvc)

	mockSvc.On("Delete", mock.Anything, "item-123").Return(nil)

	req := requestWithID(http.MethodDelete, "/knowledge/item-123", "item-123", nil)
	w := httptest.NewRecorder()

	handler.Delete(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Knowledge item deleted successfully")
}

func TestKnowledgeHandler_Delete_NotFound(t *testing.T) {
	mockSvc := new(MockKnowledgeService)
	handler := NewKnowledgeHandler(mockSvc)

	mockSvc.On("Delete", mock.Anything, "missing").Return(domain.ErrItemNotFound)

	req := requestWithID(http.MethodDelete, "/knowledge/missing", "missing", nil)
	w := httptest.NewRecorder()

	handler.Delete(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestKnowledgeHandler_Similar_Success(t *testing.T) {
	mockSvc := new(MockKnowledgeService)
	handler := NewKnowledgeHandler(mockSvc)

	similar := []*service.SimilarItem{
		{Item: newTestItem(), Similarity: 0.91},
	}
	mockSvc.On("Similar", mock.Anything, "item-123", 5).Return(similar, nil)

	req := requestWithID(http.MethodGet, "/knowledge/item-123/similar", "item-123", nil)
	w := httptest.NewRecorder()

	handler.Similar(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string][]SimilarItemResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp["data"], 1)
	assert.InDelta(t, 0.91, resp["data"][0].Similarity, 1e-9)
}

func TestKnowledgeHandler_Similar_ClampsLimit(t *testing.T) {
	mockSvc := new(MockKnowledgeService)
	handler := NewKnowledgeHandler(mockSvc)

	mockSvc.On("Similar", mock.Anything, "item-123", 20).Return([]*service.SimilarItem{}, nil)

	req := requestWithID(http.MethodGet, "/knowledge/item-123/similar?limit=100", "item-123", nil)
	w := httptest.NewRecorder()

	handler.Similar(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestKnowledgeHandler_Similar_EmbeddingFailure(t *testing.T) {
	mockSvc := new(MockKnowledgeService)
	handler := NewKnowledgeHandler(mockSvc)

	mockSvc.On("Similar", mock.Anything, "item-123", 5).Return(nil, domain.ErrEmbeddingFailed)

	req := requestWithID(http.MethodGet, "/knowledge/item-123/similar", "item-123", nil)
	w := httptest.NewRecorder()

	handler.Similar(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "failed to generate embedding for similarity search")
}
