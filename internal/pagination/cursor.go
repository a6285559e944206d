package pagination

import (
	"encoding/base64"
	"errors"
	"strconv"
	"strings"
)

// Listings scan rows in id order, so a cursor is just the last id the
// client saw, base64-wrapped to keep it opaque on the wire.

// PageResult represents a paginated result set
type PageResult[T any] struct {
	Items   []T    `json:"items"`
	Cursor  string `json:"cursor,omitempty"`
	HasMore bool   `json:"has_more"`
}

var (
	ErrInvalidCursor = errors.New("invalid cursor format")
)

// EncodeCursor creates an opaque cursor from the last row id
func EncodeCursor(lastID int64) string {
	if lastID <= 0 {
		return ""
	}
	return base64.StdEncoding.EncodeToString([]byte("id:" + strconv.FormatInt(lastID, 10)))
}

// DecodeCursor returns the id a listing should resume after. An empty
// cursor decodes to 0, the start of the scan.
func DecodeCursor(cursor string) (int64, error) {
	if cursor == "" {
		return 0, nil
	}

	decoded, err := base64.StdEncoding.DecodeString(cursor)
	if err != nil {
		return 0, ErrInvalidCursor
	}

	raw, ok := strings.CutPrefix(string(decoded), "id:")
	if !ok {
		return 0, ErrInvalidCursor
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidCursor
	}
	return id, nil
}

// NextCursor creates a cursor for the next page based on the last item.
// Returns empty string when the current page was not full, meaning there
// are no more items.
func NextCursor[T any](items []T, limit int, getID func(T) int64) string {
	if len(items) == 0 || len(items) < limit {
		return ""
	}
	return EncodeCursor(getID(items[len(items)-1]))
}
