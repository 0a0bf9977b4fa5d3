package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/cloo-solutions/resumechat/internal/api"
	"github.com/cloo-solutions/resumechat/internal/api/middleware"
	"github.com/cloo-solutions/resumechat/internal/domain"
	"github.com/cloo-solutions/resumechat/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

const maxUploadMemory = 8 << 20

var pdfMagic = []byte("%PDF-")

type ResumeService interface {
	Process(ctx context.Context, in service.ProcessInput) (*service.ProcessResult, error)
	Ask(ctx context.Context, sessionID, question string) ([]domain.Exchange, error)
	History(ctx context.Context, sessionID string) ([]domain.Exchange, error)
	Close(ctx context.Context, sessionID string) error
}

type ResumeHandler struct {
	svc ResumeService
	log zerolog.Logger
}

func NewResumeHandler(svc ResumeService, log zerolog.Logger) *ResumeHandler {
	return &ResumeHandler{svc: svc, log: log.With().Str("component", "http").Logger()}
}

type ChatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type HistoryResponse struct {
	SessionID string            `json:"session_id,omitempty"`
	History   []domain.Exchange `json:"history"`
}

// Upload spools the multipart "file" field to disk and runs the pipeline.
func (h *ResumeHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			api.Error(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		api.HandleError(w, domain.ErrMissingFile)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		api.HandleError(w, domain.ErrMissingFile)
		return
	}
	defer file.Close()

	path, err := spool(file)
	if path != "" {
		defer os.Remove(path)
	}
	if err != nil {
		if errors.Is(err, domain.ErrNotPDF) {
			api.HandleError(w, err)
			return
		}
		h.log.Error().Err(err).Str("request_id", middleware.GetRequestID(r.Context())).Msg("failed to spool upload")
		api.HandleError(w, domain.ErrStorageOperationFail.WithCause(err))
		return
	}

	result, err := h.svc.Process(r.Context(), service.ProcessInput{Path: path, Filename: header.Filename})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, result)
}

// Chat answers a question. Generation failures are part of the returned
// transcript rather than an error status.
func (h *ResumeHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sessionID := strings.TrimSpace(req.SessionID)
	history, err := h.svc.Ask(r.Context(), sessionID, req.Message)
	if err != nil && history == nil {
		api.HandleError(w, err)
		return
	}
	if history == nil {
		history = []domain.Exchange{}
	}

	api.Success(w, http.StatusOK, HistoryResponse{SessionID: sessionID, History: history})
}

func (h *ResumeHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	history, err := h.svc.History(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	if history == nil {
		history = []domain.Exchange{}
	}

	api.Success(w, http.StatusOK, HistoryResponse{SessionID: id, History: history})
}

func (h *ResumeHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := h.svc.Close(r.Context(), id); err != nil {
		api.HandleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// spool copies an uploaded PDF to a temp file. The caller removes the path.
func spool(src io.Reader) (string, error) {
	head := make([]byte, len(pdfMagic))
	n, err := io.ReadFull(src, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}
	if !bytes.Equal(head[:n], pdfMagic) {
		return "", domain.ErrNotPDF
	}

	tmp, err := os.CreateTemp("", "resume-*.pdf")
	if err != nil {
		return "", err
	}
	path := tmp.Name()

	if _, err := io.Copy(tmp, io.MultiReader(bytes.NewReader(head[:n]), src)); err != nil {
		tmp.Close()
		return path, err
	}
	if err := tmp.Close(); err != nil {
		return path, err
	}
	return path, nil
}
