package domain

import "time"

// Exchange is one question and its answer.
type Exchange struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Session binds a session id to one resume index and its transcript.
type Session struct {
	ID         string
	Index      *VectorIndex
	History    []Exchange
	CreatedAt  time.Time
	LastAccess time.Time
}

// Snapshot returns a copy whose History can be modified independently.
func (s *Session) Snapshot() *Session {
	cp := *s
	cp.History = append([]Exchange(nil), s.History...)
	return &cp
}

// UploadFirstMessage is the answer given when a question arrives without a
// processed resume.
const UploadFirstMessage = "Please upload and process a resume first."

// QuestionErrorPrefix prefixes the answer recorded when answering fails.
const QuestionErrorPrefix = "Error processing your question: "
