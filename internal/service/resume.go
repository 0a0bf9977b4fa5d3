package service

import (
	"context"
	"strings"
	"sync"

	"github.com/cloo-solutions/resumechat/internal/domain"
	"github.com/cloo-solutions/resumechat/internal/logger"
	"github.com/cloo-solutions/resumechat/internal/session"
	"github.com/cloo-solutions/resumechat/internal/storage"
	"github.com/cloo-solutions/resumechat/internal/telemetry"
	"github.com/rs/zerolog"
)

// Extractor produces raw profile text from a resume file.
type Extractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

// Splitter chunks profile text into segments.
type Splitter interface {
	Split(text string) []domain.Segment
	SplitProfile(p domain.ProfileData) []domain.Segment
}

// IndexBuilder embeds segments and checks the result.
type IndexBuilder interface {
	Build(ctx context.Context, segments []domain.Segment) (*domain.VectorIndex, error)
	Verify(ctx context.Context, index *domain.VectorIndex) bool
}

// Responder generates grounded text from an index.
type Responder interface {
	GenerateFacts(ctx context.Context, index *domain.VectorIndex) (string, error)
	Answer(ctx context.Context, index *domain.VectorIndex, question string) (string, error)
}

// ResumeArchiver stores uploaded resumes. It is optional.
type ResumeArchiver interface {
	PutFile(ctx context.Context, key, localPath, contentType string) error
	HeadObject(ctx context.Context, key string) (*storage.ObjectMetadata, error)
	GenerateDownloadURL(ctx context.Context, key string) (string, error)
	DeleteObject(ctx context.Context, key string) error
}

// ProcessInput describes an uploaded resume.
type ProcessInput struct {
	Path     string
	Filename string
}

// ProcessResult is returned after a resume is indexed.
type ProcessResult struct {
	SessionID string `json:"session_id"`
	Facts     string `json:"facts"`
	ResumeURL string `json:"resume_url,omitempty"`
}

// ResumeService runs the upload pipeline and answers questions per session.
type ResumeService struct {
	extractor Extractor
	chunker   Splitter
	indexer   IndexBuilder
	query     Responder
	sessions  session.Store
	archive   ResumeArchiver
	log       zerolog.Logger

	mu       sync.Mutex
	archived map[string]string
}

func NewResumeService(
	extractor Extractor,
	chunker Splitter,
	indexer IndexBuilder,
	query Responder,
	sessions session.Store,
	log zerolog.Logger,
) *ResumeService {
	return &ResumeService{
		extractor: extractor,
		chunker:   chunker,
		indexer:   indexer,
		query:     query,
		sessions:  sessions,
		log:       log.With().Str("component", "resume").Logger(),
		archived:  make(map[string]string),
	}
}

// WithArchive enables archiving of uploaded resumes.
func (s *ResumeService) WithArchive(a ResumeArchiver) *ResumeService {
	s.archive = a
	return s
}

// Process extracts, chunks, indexes and verifies a resume, then opens a
// session for it. A failed facts summary does not fail the upload.
func (s *ResumeService) Process(ctx context.Context, in ProcessInput) (result *ProcessResult, err error) {
	if strings.TrimSpace(in.Path) == "" {
		return nil, domain.ErrMissingFile
	}
	ctx, span := telemetry.StartSpan(ctx, "resume.process", telemetry.SpanAttributes{Operation: "process"})
	defer func() { span.Finish(err) }()

	raw, err := s.extractor.Extract(ctx, in.Path)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(raw) == "" {
		return nil, domain.ErrExtractionFailed
	}
	telemetry.AddBreadcrumb(ctx, "resume", "profile extracted")

	var segments []domain.Segment
	if profile, perr := domain.ParseProfileData(raw); perr == nil {
		segments = s.chunker.SplitProfile(profile)
	} else {
		s.log.Debug().Err(perr).Msg("profile output is not structured, chunking raw text")
		segments = s.chunker.Split(raw)
	}
	if len(segments) == 0 {
		return nil, domain.ErrChunkingFailed
	}
	telemetry.AddBreadcrumb(ctx, "resume", "profile chunked")

	index, err := s.indexer.Build(ctx, segments)
	if err != nil {
		return nil, err
	}
	if !s.indexer.Verify(ctx, index) {
		s.release(index)
		return nil, domain.ErrConsistencyFailed
	}
	telemetry.AddBreadcrumb(ctx, "resume", "index verified")

	facts, ferr := s.query.GenerateFacts(ctx, index)
	if ferr != nil {
		s.log.Warn().Err(ferr).Str("index_id", index.ID).Msg("facts generation failed")
		telemetry.CaptureError(ctx, ferr)
		facts = domain.MessageOf(ferr)
	}

	sessionID, err := s.sessions.Create(ctx, index)
	if err != nil {
		s.release(index)
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "failed to create session", err)
	}

	result = &ProcessResult{SessionID: sessionID, Facts: facts}
	if s.archive != nil {
		result.ResumeURL = s.archiveResume(ctx, sessionID, in)
	}

	s.log.Info().
		Str("session_id", sessionID).
		Str("index_id", index.ID).
		Int("segments", index.Len()).
		Msg("resume processed")
	return result, nil
}

// Ask answers question within a session and returns the updated transcript.
// A blank question changes nothing. Without a session id the caller is told
// to upload a resume first.
func (s *ResumeService) Ask(ctx context.Context, sessionID, question string) (history []domain.Exchange, err error) {
	if strings.TrimSpace(question) == "" {
		if sessionID == "" {
			return nil, nil
		}
		return s.History(ctx, sessionID)
	}
	if sessionID == "" {
		return []domain.Exchange{{Question: question, Answer: domain.UploadFirstMessage}}, nil
	}

	ctx, span := telemetry.StartSpan(ctx, "resume.ask", telemetry.SpanAttributes{SessionID: sessionID, Operation: "ask"})
	defer func() { span.Finish(err) }()

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	answer, aerr := s.query.Answer(ctx, sess.Index, question)
	if aerr != nil {
		s.log.Error().Err(aerr).
			Str("session_id", sessionID).
			Str("question", logger.Truncate(question, 80)).
			Msg("failed to answer question")
		answer = domain.QuestionErrorPrefix + domain.MessageOf(aerr)
	}

	history, err = s.sessions.Append(ctx, sessionID, domain.Exchange{Question: question, Answer: answer})
	if err != nil {
		return nil, err
	}
	return history, aerr
}

// History returns the transcript of a session.
func (s *ResumeService) History(ctx context.Context, sessionID string) ([]domain.Exchange, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return sess.History, nil
}

// Close ends a session and releases its index. An archived resume is
// deleted with it.
func (s *ResumeService) Close(ctx context.Context, sessionID string) error {
	if err := s.sessions.Evict(ctx, sessionID); err != nil {
		return err
	}

	s.mu.Lock()
	key, ok := s.archived[sessionID]
	delete(s.archived, sessionID)
	s.mu.Unlock()

	if ok && s.archive != nil {
		if err := s.archive.DeleteObject(ctx, key); err != nil {
			s.log.Warn().Err(err).Str("session_id", sessionID).Msg("failed to delete archived resume")
		}
	}
	return nil
}

func (s *ResumeService) archiveResume(ctx context.Context, sessionID string, in ProcessInput) string {
	key := storage.ResumeKey(sessionID, in.Filename)
	if err := s.archive.PutFile(ctx, key, in.Path, "application/pdf"); err != nil {
		s.log.Warn().Err(err).Str("session_id", sessionID).Msg("failed to archive resume")
		return ""
	}
	s.mu.Lock()
	s.archived[sessionID] = key
	s.mu.Unlock()

	// only hand out a link to an object the store confirms it holds
	meta, err := s.archive.HeadObject(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Str("session_id", sessionID).Str("key", key).Msg("archived resume not found")
		return ""
	}
	s.log.Debug().
		Str("session_id", sessionID).
		Str("key", key).
		Int64("bytes", meta.ContentLength).
		Str("etag", meta.ETag).
		Msg("resume archived")

	url, err := s.archive.GenerateDownloadURL(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Str("session_id", sessionID).Msg("failed to presign resume url")
		return ""
	}
	return url
}

func (s *ResumeService) release(index *domain.VectorIndex) {
	if err := index.Close(context.Background()); err != nil {
		s.log.Warn().Err(err).Str("index_id", index.ID).Msg("failed to release index")
	}
}
