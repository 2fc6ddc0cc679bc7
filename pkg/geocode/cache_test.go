package geocode

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "google:paris, france", Key("google", "Paris, France"))
	assert.Equal(t, "nominatim:berlin", Key("nominatim", "  Berlin "))
}

func TestOpenCache_Missing(t *testing.T) {
	c := OpenCache(filepath.Join(t.TempDir(), "absent.json"))
	assert.Equal(t, 0, c.Len())
}

func TestOpenCache_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o644))

	c := OpenCache(path)
	assert.Equal(t, 0, c.Len())

	// A corrupt file must still be writable through.
	c.Put("google:x", Result{Provider: "google", Status: StatusOK})
	require.NoError(t, c.Flush())
	assert.Equal(t, 1, OpenCache(path).Len())
}

func TestCache_FlushAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")

	c := OpenCache(path)
	c.Put(Key("google", "Paris, France"), Result{
		NormalizedAddress: "Paris, France",
		City:              "Paris",
		Region:            "Île-de-France",
		Country:           "France",
		CountryCode:       "FR",
		Lat:               "48.8566",
		Lon:               "2.3522",
		Provider:          "google",
		Status:            StatusOK,
	})
	require.NoError(t, c.Flush())

	// The persisted JSON uses the enriched column names.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"owner_geocode_status": "OK"`)
	assert.Contains(t, string(data), `"owner_city": "Paris"`)

	reloaded := OpenCache(path)
	got, ok := reloaded.Get(Key("google", "paris, france"))
	require.True(t, ok)
	assert.Equal(t, "FR", got.CountryCode)
	assert.Equal(t, "48.8566", got.Lat)
	assert.Equal(t, StatusOK, got.Status)
}

func TestCache_FlushNoopWhenClean(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")

	c := OpenCache(path)
	require.NoError(t, c.Flush())
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "clean cache must not create a file")

	c.Put("k", Result{Status: StatusOK})
	require.NoError(t, c.Flush())
	info1, err := os.Stat(path)
	require.NoError(t, err)

	require.NoError(t, c.Flush())
	info2, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, info1.ModTime(), info2.ModTime(), "second flush must not rewrite")
}

func TestCache_Delete(t *testing.T) {
	c := tempCache(t)
	c.Put("a", Result{Status: StatusOK})

	assert.True(t, c.Delete("a"))
	assert.False(t, c.Delete("a"))
	assert.Equal(t, 0, c.Len())
}

func TestCache_ClearStatus(t *testing.T) {
	c := tempCache(t)
	c.Put("a", Result{Status: StatusError})
	c.Put("b", Result{Status: StatusOK})
	c.Put("c", Result{Status: StatusError})

	assert.Equal(t, 2, c.ClearStatus(StatusError))
	assert.Equal(t, 0, c.ClearStatus(StatusError))
	assert.Equal(t, 1, c.Len())
	_, ok := c.Get("b")
	assert.True(t, ok)
}

func TestCache_KeysAndStatusCounts(t *testing.T) {
	c := tempCache(t)
	c.Put("b", Result{Status: StatusOK})
	c.Put("a", Result{Status: StatusOK})
	c.Put("c", Result{Status: StatusNoMatch})

	assert.Equal(t, []string{"a", "b", "c"}, c.Keys())
	assert.Equal(t, map[Status]int{StatusOK: 2, StatusNoMatch: 1}, c.StatusCounts())
}
