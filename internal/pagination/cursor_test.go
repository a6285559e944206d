package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursor_RoundTrip(t *testing.T) {
	encoded := EncodeCursor(42)
	require.NotEmpty(t, encoded)

	id, err := DecodeCursor(encoded)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestEncodeCursor_NonPositiveID(t *testing.T) {
	assert.Empty(t, EncodeCursor(0))
	assert.Empty(t, EncodeCursor(-7))
}

func TestDecodeCursor_Empty(t *testing.T) {
	id, err := DecodeCursor("")
	require.NoError(t, err)
	assert.Zero(t, id)
}

func TestDecodeCursor_Invalid(t *testing.T) {
	cases := map[string]string{
		"not base64":  "!!not-base64",
		"missing tag": "NDI=",     // "42"
		"non-numeric": "aWQ6YWJj", // "id:abc"
		"zero id":     "aWQ6MA==", // "id:0"
		"negative id": "aWQ6LTM=", // "id:-3"
	}
	for name, raw := range cases {
		_, err := DecodeCursor(raw)
		assert.ErrorIs(t, err, ErrInvalidCursor, name)
	}
}

func TestNextCursor(t *testing.T) {
	type item struct{ ID int64 }
	getID := func(i item) int64 { return i.ID }

	full := []item{{1}, {2}}
	next := NextCursor(full, 2, getID)
	require.NotEmpty(t, next)
	id, err := DecodeCursor(next)
	require.NoError(t, err)
	assert.Equal(t, int64(2), id)

	partial := []item{{1}}
	assert.Empty(t, NextCursor(partial, 2, getID))

	assert.Empty(t, NextCursor(nil, 2, getID))
}
