package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecord_GetSetClone(t *testing.T) {
	r := Record{"full_name": "octo/repo"}
	assert.Equal(t, "octo/repo", r.Get("full_name"))
	assert.Equal(t, "", r.Get("missing"))

	r.Set("owner_location", "Paris")
	assert.Equal(t, "Paris", r.Get("owner_location"))

	c := r.Clone()
	c.Set("owner_location", "Berlin")
	assert.Equal(t, "Paris", r.Get("owner_location"))
	assert.Equal(t, "Berlin", c.Get("owner_location"))
}

func TestTable_AppendRegistersColumns(t *testing.T) {
	tab := NewTable("full_name", "owner_location")
	tab.Append(Record{"full_name": "a/b", "stars": "12"})

	assert.Equal(t, []string{"full_name", "owner_location", "stars"}, tab.Columns)
	assert.Equal(t, 1, tab.Len())
}

func TestTable_EnsureColumnsPreservesOrder(t *testing.T) {
	tab := NewTable("a", "b")
	tab.EnsureColumns("b", "c", "a", "d")
	assert.Equal(t, []string{"a", "b", "c", "d"}, tab.Columns)

	tab.EnsureColumns(GeoColumns()...)
	assert.True(t, tab.HasColumn(ColGeoStatus))
	assert.False(t, tab.HasColumn("owner_elevation"))
}

func TestGeoColumns(t *testing.T) {
	cols := GeoColumns()
	assert.Len(t, cols, 9)
	assert.Equal(t, ColGeoNormalized, cols[0])
	assert.Equal(t, ColGeoStatus, cols[8])

	assert.Equal(t, []string{ColLocationClean, ColLocationCleanHint}, CleanColumns())
}
