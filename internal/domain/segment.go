package domain

import (
	"crypto/sha256"
	"strconv"

	"github.com/google/uuid"
)

// Segment is a contiguous run of profile text used as a retrieval unit.
type Segment struct {
	ID    string `json:"id"`
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// segmentNamespace scopes deterministic segment ids.
var segmentNamespace = uuid.MustParse("6f1c3ab4-58a1-4f0e-9a37-2f6a0f0d9c51")

// NewSegment builds a Segment whose id is derived from the source document
// and the segment's ordinal, so identical input always yields identical ids.
func NewSegment(document string, index int, text string) Segment {
	sum := sha256.Sum256([]byte(document))
	name := append(sum[:], []byte(":"+strconv.Itoa(index))...)
	return Segment{
		ID:    uuid.NewSHA1(segmentNamespace, name).String(),
		Index: index,
		Text:  text,
	}
}
