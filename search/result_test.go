package search

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultSet(t *testing.T) {
	rs := newResultSet([]Page{{Index: 4, Text: "d"}, {Index: 0, Text: "a"}, {Index: 2, Text: "c"}})

	assert.Equal(t, 3, rs.Len())
	assert.Equal(t, []int{0, 2, 4}, rs.Indices())

	text, ok := rs.Get(2)
	assert.True(t, ok)
	assert.Equal(t, "c", text)

	_, ok = rs.Get(3)
	assert.False(t, ok)
	assert.False(t, rs.Contains(5))

	pages := rs.Pages()
	pages[0].Text = "changed"
	first, _ := rs.Get(0)
	assert.Equal(t, "a", first, "Pages returns a copy")

	data, err := json.Marshal(rs)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"page":0,"text":"a"},{"page":2,"text":"c"},{"page":4,"text":"d"}]`, string(data))
}

func TestEmptyResultSet(t *testing.T) {
	var rs *ResultSet
	assert.Zero(t, rs.Len())
	assert.Empty(t, rs.Indices())
	assert.Empty(t, rs.Pages())
	assert.False(t, rs.Contains(0))

	data, err := json.Marshal(&ResultSet{})
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}
