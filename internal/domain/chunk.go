package domain

// ChunkMetadata is the fixed metadata record carried by every stored chunk.
// SourceID and ChunkIndex are always set; the scope fields depend on whether
// the owning source is a page (WorldID, ConceptID) or a specialist source
// (AgentID). The store has no ordered-list type, so ChunkIndex is the only
// way to reassemble a source's text in order.
type ChunkMetadata struct {
	SourceID   string
	ChunkIndex int
	WorldID    int64
	ConceptID  int64
	AgentID    int64
	Title      string
}

// DocumentChunk is a bounded slice of a source's text sized for embedding.
type DocumentChunk struct {
	Text string
	Meta ChunkMetadata
}
