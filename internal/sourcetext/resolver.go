package sourcetext

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/loreforge/loreforge/internal/domain"
	"github.com/loreforge/loreforge/internal/service"
)

// maxFetchBytes bounds how much of a remote link source is read.
const maxFetchBytes = 10 << 20

// pageDelimiter separates logical pages in extracted file text.
const pageDelimiter = "\f"

// ObjectStore reads uploaded file sources.
type ObjectStore interface {
	GetObject(ctx context.Context, key string) ([]byte, error)
}

// Resolver turns a specialist source into indexable text: inline content,
// an uploaded object, or a fetched link. Every failure wraps
// domain.ErrSourceUnreadable so callers can log and skip.
type Resolver struct {
	objects ObjectStore
	client  *http.Client
}

func NewResolver(objects ObjectStore) *Resolver {
	return &Resolver{
		objects: objects,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (r *Resolver) Resolve(ctx context.Context, src *domain.SpecialistSource) (service.SourceText, error) {
	switch src.Kind {
	case domain.SourceKindText:
		return service.SourceText{Text: src.Content}, nil
	case domain.SourceKindFile:
		return r.resolveFile(ctx, src)
	case domain.SourceKindLink:
		return r.resolveLink(ctx, src)
	}
	return service.SourceText{}, fmt.Errorf("source %d: %w: %s", src.ID, domain.ErrInvalidSourceKind, src.Kind)
}

// resolveFile reads extracted file text from object storage. Upstream
// extraction writes one form feed between physical pages; a delimited file
// resolves to paged text so chunking stays page-aligned.
func (r *Resolver) resolveFile(ctx context.Context, src *domain.SpecialistSource) (service.SourceText, error) {
	if r.objects == nil {
		return service.SourceText{}, fmt.Errorf("source %d: object storage not configured: %w", src.ID, domain.ErrSourceUnreadable)
	}

	data, err := r.objects.GetObject(ctx, src.ObjectKey)
	if err != nil {
		return service.SourceText{}, fmt.Errorf("source %d (%s): %w: %v", src.ID, src.ObjectKey, domain.ErrSourceUnreadable, err)
	}

	text := string(data)
	if strings.Contains(text, pageDelimiter) {
		return service.SourceText{Pages: strings.Split(text, pageDelimiter)}, nil
	}
	return service.SourceText{Text: text}, nil
}

func (r *Resolver) resolveLink(ctx context.Context, src *domain.SpecialistSource) (service.SourceText, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return service.SourceText{}, fmt.Errorf("source %d (%s): %w: %v", src.ID, src.URL, domain.ErrSourceUnreadable, err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return service.SourceText{}, fmt.Errorf("source %d (%s): %w: %v", src.ID, src.URL, domain.ErrSourceUnreadable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return service.SourceText{}, fmt.Errorf("source %d (%s): %w: status %d", src.ID, src.URL, domain.ErrSourceUnreadable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return service.SourceText{}, fmt.Errorf("source %d (%s): %w: %v", src.ID, src.URL, domain.ErrSourceUnreadable, err)
	}

	text := string(body)
	if isHTML(resp.Header.Get("Content-Type"), text) {
		text = service.HTMLToText(text)
	}
	return service.SourceText{Text: text}, nil
}

func isHTML(contentType, body string) bool {
	if strings.Contains(contentType, "text/html") {
		return true
	}
	head := strings.ToLower(strings.TrimSpace(body))
	return strings.HasPrefix(head, "<!doctype html") || strings.HasPrefix(head, "<html")
}
