package domain

import "time"

// Agent is a per-world assistant answering questions against the world's
// vector collection. LastIndexedAt is stamped after a successful rebuild.
type Agent struct {
	ID            int64
	WorldID       int64
	Name          string
	LastIndexedAt *time.Time
	CreatedAt     time.Time
}

// SourceKind identifies how a specialist source's text is obtained.
type SourceKind string

const (
	SourceKindText SourceKind = "text"
	SourceKindFile SourceKind = "file"
	SourceKindLink SourceKind = "link"
)

// SpecialistSource is one document in a specialist agent's private set:
// inline text, an uploaded file (stored as an object key), or a remote link.
type SpecialistSource struct {
	ID        int64
	AgentID   int64
	Kind      SourceKind
	Name      string
	Content   string // inline text, kind=text
	ObjectKey string // storage key, kind=file
	URL       string // remote address, kind=link
	CreatedAt time.Time
}

// IsValidSourceKind checks if a SourceKind is valid
func IsValidSourceKind(k SourceKind) bool {
	switch k {
	case SourceKindText, SourceKindFile, SourceKindLink:
		return true
	}
	return false
}
