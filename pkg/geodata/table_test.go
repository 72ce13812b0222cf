package geodata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTable_Validation(t *testing.T) {
	_, err := NewTable([]string{"a", "a"}, nil)
	assert.Error(t, err)

	_, err = NewTable([]string{"a"}, []Row{{"b": 1}})
	assert.Error(t, err)
}

func TestTable_Accessors(t *testing.T) {
	tbl, err := NewTable([]string{"name", "pop"}, []Row{
		{"name": "alpha", "pop": 10},
		{"name": "beta", "pop": nil},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, tbl.Len())
	assert.Equal(t, []string{"name", "pop"}, tbl.Columns())
	assert.True(t, tbl.HasColumn("pop"))
	assert.False(t, tbl.HasColumn("area"))
	assert.Equal(t, "alpha", tbl.Value(0, "name"))

	v, ok := tbl.Float(0, "pop")
	assert.True(t, ok)
	assert.Equal(t, 10.0, v)

	_, ok = tbl.Float(1, "pop")
	assert.False(t, ok)
}

func TestTable_RowIsCopy(t *testing.T) {
	tbl, err := NewTable([]string{"a"}, []Row{{"a": 1}})
	require.NoError(t, err)

	row := tbl.Row(0)
	row["a"] = 99
	assert.Equal(t, 1, tbl.Value(0, "a"))
}

func TestTable_WithoutColumn(t *testing.T) {
	tbl, err := NewTable([]string{"a", "b"}, []Row{{"a": 1, "b": 2}})
	require.NoError(t, err)

	trimmed := tbl.WithoutColumn("b")
	assert.Equal(t, []string{"a"}, trimmed.Columns())
	assert.False(t, trimmed.HasColumn("b"))
	// Original untouched.
	assert.True(t, tbl.HasColumn("b"))

	same := tbl.WithoutColumn("missing")
	assert.Equal(t, tbl.Columns(), same.Columns())
}

func TestKeyString_NumericEquivalence(t *testing.T) {
	a, ok := keyString(int64(5))
	require.True(t, ok)
	b, ok := keyString(5)
	require.True(t, ok)
	assert.Equal(t, a, b)

	c, ok := keyString(5.0)
	require.True(t, ok)
	assert.Equal(t, a, c)

	_, ok = keyString(nil)
	assert.False(t, ok)
}
