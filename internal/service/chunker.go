package service

import "strings"

// ChunkConfig controls chunking for embeddings. Size and Overlap are
// measured in words, not characters, to stay robust across languages.
type ChunkConfig struct {
	Size    int
	Overlap int
}

// DefaultChunkConfig provides sane defaults for chunking.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		Size:    300,
		Overlap: 50,
	}
}

// ChunkText splits text into overlapping word windows of at most cfg.Size
// words. Adjacent chunks share cfg.Overlap trailing words. Every input word
// appears in at least one chunk; empty or whitespace-only input yields nil.
func ChunkText(text string, cfg ChunkConfig) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	if cfg.Size <= 0 {
		cfg = DefaultChunkConfig()
	}
	if cfg.Overlap < 0 || cfg.Overlap >= cfg.Size {
		cfg.Overlap = 0
	}

	if len(words) <= cfg.Size {
		return []string{strings.Join(words, " ")}
	}

	step := cfg.Size - cfg.Overlap
	chunks := make([]string, 0, (len(words)+step-1)/step)
	for start := 0; ; start += step {
		end := start + cfg.Size
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
		if end == len(words) {
			break
		}
	}
	return chunks
}

// ChunkPages turns page-delimited text into one chunk per page, each
// prefixed with the trailing cfg.Overlap words of the previous chunk so
// chunk boundaries stay aligned with citation-worthy units. Blank pages
// contribute no chunk.
func ChunkPages(pages []string, cfg ChunkConfig) []string {
	if cfg.Size <= 0 {
		cfg = DefaultChunkConfig()
	}

	chunks := make([]string, 0, len(pages))
	var prevWords []string
	for _, page := range pages {
		words := strings.Fields(page)
		if len(words) == 0 {
			continue
		}

		chunk := words
		if len(prevWords) > 0 && cfg.Overlap > 0 {
			tail := prevWords
			if len(tail) > cfg.Overlap {
				tail = tail[len(tail)-cfg.Overlap:]
			}
			chunk = append(append([]string{}, tail...), words...)
		}
		chunks = append(chunks, strings.Join(chunk, " "))
		prevWords = chunk
	}
	if len(chunks) == 0 {
		return nil
	}
	return chunks
}
