// Package pdf reads resume text out of PDF files.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	einopdf "github.com/cloudwego/eino-ext/components/document/parser/pdf"
	"github.com/cloudwego/eino/components/document/parser"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"
)

// ErrNoText is returned when a PDF yields no extractable text.
var ErrNoText = errors.New("pdf contains no extractable text")

// DocumentParser is the subset of the eino parser used by Loader.
type DocumentParser interface {
	Parse(ctx context.Context, reader io.Reader, opts ...parser.Option) ([]*schema.Document, error)
}

// Loader extracts page text from PDF files.
type Loader struct {
	parser DocumentParser
	log    zerolog.Logger
}

// NewLoader creates a Loader backed by the eino PDF parser in per-page mode.
func NewLoader(ctx context.Context, log zerolog.Logger) (*Loader, error) {
	p, err := einopdf.NewPDFParser(ctx, &einopdf.Config{ToPages: true})
	if err != nil {
		return nil, fmt.Errorf("failed to create pdf parser: %w", err)
	}
	return NewLoaderWithParser(p, log), nil
}

// NewLoaderWithParser creates a Loader over an explicit parser.
func NewLoaderWithParser(p DocumentParser, log zerolog.Logger) *Loader {
	return &Loader{parser: p, log: log.With().Str("component", "pdf").Logger()}
}

// LoadText returns the text of every page in order, joined by newlines.
func (l *Loader) LoadText(ctx context.Context, path string) (string, error) {
	start := time.Now()

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open pdf %s: %w", path, err)
	}
	defer f.Close()

	docs, err := l.parser.Parse(ctx, f,
		parser.WithURI(path),
		parser.WithExtraMeta(map[string]any{"source_file_path": path}),
	)
	if err != nil {
		return "", fmt.Errorf("failed to parse pdf %s: %w", path, err)
	}

	pages := make([]string, 0, len(docs))
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		pages = append(pages, doc.Content)
	}
	text := strings.Join(pages, "\n")
	if strings.TrimSpace(text) == "" {
		return "", ErrNoText
	}

	l.log.Debug().
		Str("path", path).
		Int("pages", len(pages)).
		Int("chars", len(text)).
		Dur("duration", time.Since(start)).
		Msg("pdf text extracted")
	return text, nil
}
