package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/cloo-solutions/resumechat/internal/domain"
	"github.com/cloo-solutions/resumechat/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockResumeService struct {
	mock.Mock
}

func (m *MockResumeService) Process(ctx context.Context, in service.ProcessInput) (*service.ProcessResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ProcessResult), args.Error(1)
}

func (m *MockResumeService) Ask(ctx context.Context, sessionID, question string) ([]domain.Exchange, error) {
	args := m.Called(ctx, sessionID, question)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Exchange), args.Error(1)
}

func (m *MockResumeService) History(ctx context.Context, sessionID string) ([]domain.Exchange, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Exchange), args.Error(1)
}

func (m *MockResumeService) Close(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func multipartRequest(t *testing.T, field, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/resumes", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data, ok := resp["data"].(map[string]interface{})
	require.True(t, ok, "missing data envelope: %s", w.Body.String())
	return data
}

func TestResumeHandler_Upload_Success(t *testing.T) {
	mockSvc := new(MockResumeService)
	handler := NewResumeHandler(mockSvc, zerolog.Nop())

	var spooled string
	mockSvc.On("Process", mock.Anything, mock.MatchedBy(func(in service.ProcessInput) bool {
		return in.Filename == "ada.pdf" && in.Path != ""
	})).Run(func(args mock.Arguments) {
		in := args.Get(1).(service.ProcessInput)
		spooled = in.Path
		content, err := os.ReadFile(in.Path)
		require.NoError(t, err)
		assert.Equal(t, "%PDF-1.7 fake", string(content))
	}).Return(&service.ProcessResult{SessionID: "s-1", Facts: "Ada knows Go."}, nil)

	w := httptest.NewRecorder()
	handler.Upload(w, multipartRequest(t, "file", "ada.pdf", []byte("%PDF-1.7 fake")))

	assert.Equal(t, http.StatusCreated, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, "s-1", data["session_id"])
	assert.Equal(t, "Ada knows Go.", data["facts"])

	_, err := os.Stat(spooled)
	assert.True(t, os.IsNotExist(err), "temp file should be removed")
	mockSvc.AssertExpectations(t)
}

func TestResumeHandler_Upload_MissingFile(t *testing.T) {
	mockSvc := new(MockResumeService)
	handler := NewResumeHandler(mockSvc, zerolog.Nop())

	w := httptest.NewRecorder()
	handler.Upload(w, multipartRequest(t, "attachment", "ada.pdf", []byte("%PDF-")))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "a PDF file is required")
	mockSvc.AssertNotCalled(t, "Process", mock.Anything, mock.Anything)
}

func TestResumeHandler_Upload_NotMultipart(t *testing.T) {
	handler := NewResumeHandler(new(MockResumeService), zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/api/resumes", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.Upload(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResumeHandler_Upload_NotPDF(t *testing.T) {
	mockSvc := new(MockResumeService)
	handler := NewResumeHandler(mockSvc, zerolog.Nop())

	w := httptest.NewRecorder()
	handler.Upload(w, multipartRequest(t, "file", "notes.txt", []byte("hello")))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "not a PDF")
	mockSvc.AssertNotCalled(t, "Process", mock.Anything, mock.Anything)
}

func TestResumeHandler_Upload_PipelineError(t *testing.T) {
	mockSvc := new(MockResumeService)
	handler := NewResumeHandler(mockSvc, zerolog.Nop())
	mockSvc.On("Process", mock.Anything, mock.Anything).Return(nil, domain.ErrConsistencyFailed)

	w := httptest.NewRecorder()
	handler.Upload(w, multipartRequest(t, "file", "ada.pdf", []byte("%PDF-1.4")))

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "Embedding model verification failed")
}

func TestResumeHandler_Chat(t *testing.T) {
	mockSvc := new(MockResumeService)
	handler := NewResumeHandler(mockSvc, zerolog.Nop())
	mockSvc.On("Ask", mock.Anything, "s-1", "Python?").Return([]domain.Exchange{{Question: "Python?", Answer: "Yes."}}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"session_id":" s-1 ","message":"Python?"}`))
	w := httptest.NewRecorder()
	handler.Chat(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	history := data["history"].([]interface{})
	require.Len(t, history, 1)
	assert.Equal(t, "Yes.", history[0].(map[string]interface{})["answer"])
}

func TestResumeHandler_Chat_GenerationFailureStillReturnsHistory(t *testing.T) {
	mockSvc := new(MockResumeService)
	handler := NewResumeHandler(mockSvc, zerolog.Nop())
	answer := domain.QuestionErrorPrefix + "Error creating LLM model"
	mockSvc.On("Ask", mock.Anything, "s-1", "Python?").
		Return([]domain.Exchange{{Question: "Python?", Answer: answer}}, domain.ErrGenerationFailed)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"session_id":"s-1","message":"Python?"}`))
	w := httptest.NewRecorder()
	handler.Chat(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), answer)
}

func TestResumeHandler_Chat_UnknownSession(t *testing.T) {
	mockSvc := new(MockResumeService)
	handler := NewResumeHandler(mockSvc, zerolog.Nop())
	mockSvc.On("Ask", mock.Anything, "gone", "hi").Return(nil, domain.ErrSessionNotFound)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"session_id":"gone","message":"hi"}`))
	w := httptest.NewRecorder()
	handler.Chat(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestResumeHandler_Chat_BlankQuestionReturnsEmptyHistory(t *testing.T) {
	mockSvc := new(MockResumeService)
	handler := NewResumeHandler(mockSvc, zerolog.Nop())
	mockSvc.On("Ask", mock.Anything, "", "  ").Return(nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"  "}`))
	w := httptest.NewRecorder()
	handler.Chat(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"history":[]`)
}

func TestResumeHandler_Chat_InvalidJSON(t *testing.T) {
	handler := NewResumeHandler(new(MockResumeService), zerolog.Nop())

	w := httptest.NewRecorder()
	handler.Chat(w, httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{invalid`)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResumeHandler_GetSession(t *testing.T) {
	mockSvc := new(MockResumeService)
	handler := NewResumeHandler(mockSvc, zerolog.Nop())
	mockSvc.On("History", mock.Anything, "s-1").Return([]domain.Exchange{{Question: "q", Answer: "a"}}, nil)

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/sessions/s-1", nil), "id", "s-1")
	w := httptest.NewRecorder()
	handler.GetSession(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, "s-1", data["session_id"])
}

func TestResumeHandler_GetSession_NotFound(t *testing.T) {
	mockSvc := new(MockResumeService)
	handler := NewResumeHandler(mockSvc, zerolog.Nop())
	mockSvc.On("History", mock.Anything, "s-9").Return(nil, domain.ErrSessionNotFound)

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/sessions/s-9", nil), "id", "s-9")
	w := httptest.NewRecorder()
	handler.GetSession(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "session not found")
}

func TestResumeHandler_DeleteSession(t *testing.T) {
	mockSvc := new(MockResumeService)
	handler := NewResumeHandler(mockSvc, zerolog.Nop())
	mockSvc.On("Close", mock.Anything, "s-1").Return(nil)

	req := withURLParam(httptest.NewRequest(http.MethodDelete, "/api/sessions/s-1", nil), "id", "s-1")
	w := httptest.NewRecorder()
	handler.DeleteSession(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	mockSvc.AssertExpectations(t)
}
