package service

import (
	"strings"
	"unicode"

	"github.com/cloo-solutions/resumechat/internal/domain"
	"github.com/rs/zerolog"
)

// ChunkConfig bounds segment size and overlap, both counted in runes.
type ChunkConfig struct {
	MaxChars int
	Overlap  int
}

func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		MaxChars: 400,
		Overlap:  50,
	}
}

// Chunker splits profile text into sentence-aligned, overlapping segments.
type Chunker struct {
	cfg ChunkConfig
	log zerolog.Logger
}

func NewChunker(cfg ChunkConfig, log zerolog.Logger) *Chunker {
	if cfg.MaxChars <= 0 {
		cfg = DefaultChunkConfig()
	}
	if cfg.Overlap < 0 || cfg.Overlap >= cfg.MaxChars {
		cfg.Overlap = 0
	}
	return &Chunker{cfg: cfg, log: log.With().Str("component", "chunker").Logger()}
}

// SplitProfile chunks the labelled text rendering of p.
func (c *Chunker) SplitProfile(p domain.ProfileData) []domain.Segment {
	return c.Split(p.Text())
}

// Split returns segments of at most MaxChars runes. Consecutive segments
// share up to Overlap runes of whole trailing sentences. Identical input
// always yields identical segments, ids included.
func (c *Chunker) Split(text string) []domain.Segment {
	clean := strings.TrimSpace(text)
	if clean == "" {
		c.log.Warn().Msg("no text to chunk")
		return nil
	}

	chunks := packSentences(splitSentences(clean), c.cfg)
	segments := make([]domain.Segment, 0, len(chunks))
	for i, chunk := range chunks {
		segments = append(segments, domain.NewSegment(clean, i, chunk))
	}

	c.log.Debug().Int("segments", len(segments)).Int("chars", len([]rune(clean))).Msg("text chunked")
	return segments
}

// splitSentences breaks text after '.', '!' or '?' followed by whitespace,
// and at every newline.
func splitSentences(text string) []string {
	runes := []rune(text)
	var sentences []string
	start := 0
	emit := func(end int) {
		s := strings.TrimSpace(string(runes[start:end]))
		if s != "" {
			sentences = append(sentences, s)
		}
		start = end
	}

	for i, r := range runes {
		switch {
		case r == '\n':
			emit(i + 1)
		case r == '.' || r == '!' || r == '?':
			if i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
				emit(i + 1)
			}
		}
	}
	emit(len(runes))
	return sentences
}

// hardSplit cuts a sentence longer than maxChars at the last whitespace
// before each budget boundary, or at the boundary when there is none.
func hardSplit(sentence string, maxChars int) []string {
	runes := []rune(sentence)
	var parts []string
	for len(runes) > maxChars {
		cut := maxChars
		for i := maxChars; i > 0; i-- {
			if unicode.IsSpace(runes[i]) {
				cut = i
				break
			}
		}
		if part := strings.TrimSpace(string(runes[:cut])); part != "" {
			parts = append(parts, part)
		}
		runes = []rune(strings.TrimLeftFunc(string(runes[cut:]), unicode.IsSpace))
	}
	if rest := strings.TrimSpace(string(runes)); rest != "" {
		parts = append(parts, rest)
	}
	return parts
}

func packSentences(sentences []string, cfg ChunkConfig) []string {
	var pieces []string
	for _, s := range sentences {
		if runeLen(s) > cfg.MaxChars {
			pieces = append(pieces, hardSplit(s, cfg.MaxChars)...)
			continue
		}
		pieces = append(pieces, s)
	}

	var chunks []string
	var cur []string
	for _, p := range pieces {
		if len(cur) > 0 && joinedLen(cur)+1+runeLen(p) > cfg.MaxChars {
			chunks = append(chunks, strings.Join(cur, " "))
			cur = overlapTail(cur, cfg.Overlap, cfg.MaxChars-runeLen(p)-1)
		}
		cur = append(cur, p)
	}
	if len(cur) > 0 {
		chunks = append(chunks, strings.Join(cur, " "))
	}
	return chunks
}

// overlapTail returns the longest run of trailing sentences whose joined
// length is within both overlap and room.
func overlapTail(sentences []string, overlap, room int) []string {
	limit := overlap
	if room < limit {
		limit = room
	}
	if limit <= 0 {
		return nil
	}

	start := len(sentences)
	size := 0
	for i := len(sentences) - 1; i >= 0; i-- {
		next := size + runeLen(sentences[i])
		if size > 0 {
			next++
		}
		if next > limit {
			break
		}
		size = next
		start = i
	}
	if start == 0 {
		// never repeat a whole chunk
		start = 1
	}
	if start >= len(sentences) {
		return nil
	}
	return append([]string(nil), sentences[start:]...)
}

func joinedLen(parts []string) int {
	n := 0
	for i, p := range parts {
		if i > 0 {
			n++
		}
		n += runeLen(p)
	}
	return n
}

func runeLen(s string) int {
	return len([]rune(s))
}
