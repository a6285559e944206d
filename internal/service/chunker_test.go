package service

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wordsOf(chunks []string) map[string]bool {
	seen := make(map[string]bool)
	for _, c := range chunks {
		for _, w := range strings.Fields(c) {
			seen[w] = true
		}
	}
	return seen
}

func TestChunkText_EmptyInput(t *testing.T) {
	cfg := DefaultChunkConfig()
	assert.Nil(t, ChunkText("", cfg))
	assert.Nil(t, ChunkText("   \n\t  ", cfg))
}

func TestChunkText_ShortInputSingleChunk(t *testing.T) {
	chunks := ChunkText("the kindred of clan ventrue rule the city", DefaultChunkConfig())
	require.Len(t, chunks, 1)
	assert.Equal(t, "the kindred of clan ventrue rule the city", chunks[0])
}

func TestChunkText_NoWordDropped(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 1000; i++ {
		fmt.Fprintf(&b, "w%d ", i)
	}
	chunks := ChunkText(b.String(), DefaultChunkConfig())
	require.Greater(t, len(chunks), 1)

	seen := wordsOf(chunks)
	for i := 0; i < 1000; i++ {
		assert.True(t, seen[fmt.Sprintf("w%d", i)], "word w%d missing", i)
	}
}

func TestChunkText_SizeAndOverlap(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 25; i++ {
		fmt.Fprintf(&b, "w%d ", i)
	}
	chunks := ChunkText(b.String(), ChunkConfig{Size: 10, Overlap: 3})
	require.Len(t, chunks, 4)

	for _, c := range chunks {
		assert.LessOrEqual(t, len(strings.Fields(c)), 10)
	}

	// Each chunk starts with the last 3 words of the previous one.
	first := strings.Fields(chunks[0])
	second := strings.Fields(chunks[1])
	assert.Equal(t, first[len(first)-3:], second[:3])
}

func TestChunkPages_OnePerPageWithOverlapPrefix(t *testing.T) {
	pages := []string{
		"alpha beta gamma delta",
		"epsilon zeta eta",
		"theta iota",
	}
	chunks := ChunkPages(pages, ChunkConfig{Size: 300, Overlap: 2})
	require.Len(t, chunks, 3)

	assert.Equal(t, "alpha beta gamma delta", chunks[0])
	assert.Equal(t, "gamma delta epsilon zeta eta", chunks[1])
	assert.Equal(t, "zeta eta theta iota", chunks[2])
}

func TestChunkPages_ShortPageKeepsFullOverlap(t *testing.T) {
	// A page shorter than Overlap must not shrink the shared tail: the
	// prefix comes from the previous chunk, not the previous page.
	pages := []string{"a b c", "d", "e f"}
	chunks := ChunkPages(pages, ChunkConfig{Size: 300, Overlap: 2})
	require.Len(t, chunks, 3)

	assert.Equal(t, "a b c", chunks[0])
	assert.Equal(t, "b c d", chunks[1])
	assert.Equal(t, "c d e f", chunks[2])
}

func TestChunkPages_SkipsBlankPages(t *testing.T) {
	pages := []string{"one two", "   ", "three"}
	chunks := ChunkPages(pages, ChunkConfig{Size: 300, Overlap: 1})
	require.Len(t, chunks, 2)
	assert.Equal(t, "one two", chunks[0])
	assert.Equal(t, "two three", chunks[1])
}

func TestChunkPages_Empty(t *testing.T) {
	assert.Nil(t, ChunkPages(nil, DefaultChunkConfig()))
	assert.Nil(t, ChunkPages([]string{"", "  "}, DefaultChunkConfig()))
}
