package domain

import (
	"fmt"
	"time"
)

// World is a scoped collection of pages maintained by a group of writers.
type World struct {
	ID          int64
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Concept is a page template within a world (e.g. "Clan", "City").
type Concept struct {
	ID          int64
	WorldID     int64
	Name        string
	Description string
}

// Page is a rich-text wiki page belonging to a world and a concept.
// Content and AutogeneratedContent are HTML fragments; both participate
// independently in crosslink maintenance.
type Page struct {
	ID                   int64
	WorldID              int64
	ConceptID            int64
	Name                 string
	Content              string
	AutogeneratedContent string

	// AllowCrosslinks gates the crosslink pass for this page entirely.
	// AllowCrossworld widens the candidate set to every world.
	// IgnoreCrosslink removes this page from other pages' candidate sets.
	AllowCrosslinks bool
	AllowCrossworld bool
	IgnoreCrosslink bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CharacteristicKind distinguishes plain values from structured page references.
type CharacteristicKind string

const (
	CharacteristicKindText    CharacteristicKind = "text"
	CharacteristicKindList    CharacteristicKind = "list"
	CharacteristicKindPageRef CharacteristicKind = "page_ref"
)

// Characteristic is a named attribute declared on a concept.
// For page_ref kinds, TargetConceptID optionally narrows which concept's
// pages the values may reference.
type Characteristic struct {
	ID              int64
	WorldID         int64
	ConceptID       int64
	Name            string
	Kind            CharacteristicKind
	TargetConceptID *int64
}

// PageCharacteristicValue holds the values of one characteristic on one page.
// Values are always stored and compared as strings, including page ids.
type PageCharacteristicValue struct {
	ID               int64
	PageID           int64
	CharacteristicID int64
	Values           []string
}

// ValidatePage validates a Page instance
func ValidatePage(p *Page) error {
	if p == nil {
		return fmt.Errorf("page cannot be nil")
	}
	if p.Name == "" {
		return fmt.Errorf("page Name is required")
	}
	if p.WorldID == 0 {
		return fmt.Errorf("page WorldID is required")
	}
	if p.ConceptID == 0 {
		return fmt.Errorf("page ConceptID is required")
	}
	return nil
}

// IsValidCharacteristicKind checks if a CharacteristicKind is valid
func IsValidCharacteristicKind(k CharacteristicKind) bool {
	switch k {
	case CharacteristicKindText, CharacteristicKindList, CharacteristicKindPageRef:
		return true
	}
	return false
}
