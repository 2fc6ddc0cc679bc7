package geocode

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		name  string
		in    string
		clean string
		hint  Hint
	}{
		{"empty", "", "", HintEmpty},
		{"whitespace only", "   ", "", HintEmpty},
		{"sentinel", "Worldwide", "worldwide", HintSkip},
		{"sentinel trimmed", "  Earth ", "earth", HintSkip},
		{"remote variant collapses to sentinel", "  Remote Only ", "remote", HintSkip},
		{"fully remote", "Fully Remote", "remote", HintSkip},
		{"alias abbreviation", "sf", "San Francisco, CA, USA", HintMapped},
		{"alias uppercased", "NYC", "New York, NY, USA", HintMapped},
		{"alias numeric department", "75", "Paris, France", HintMapped},
		{"plain free text", "Boise, Idaho", "Boise, Idaho", HintCleaned},
		{"inner whitespace collapsed", "Lisbon,   Portugal ", "Lisbon, Portugal", HintCleaned},
		{"bloc qualifier stripped then aliased", "Paris, EU", "Paris, France", HintMapped},
		{"zero width characters stripped", "Tokyo\u200b, Japan", "Tokyo, Japan", HintCleaned},
		{"punctuation residue trimmed", "Oslo, Norway ;", "Oslo, Norway", HintCleaned},
		{"interleaved space and punct tail trimmed", "Boise , -,", "Boise", HintCleaned},
		{"interleaved tail then aliased", "Paris , -,", "Paris, France", HintMapped},
		{"bloc only becomes sentinel", "European Union", "european union", HintSkip},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Normalize(tc.in)
			assert.Equal(t, tc.clean, got.Clean)
			assert.Equal(t, tc.hint, got.Hint)
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"sf", "NYC", "Boise, Idaho", "  Remote Only ", "Paris, EU",
		"Lisbon,   Portugal", "Tokyo\u200b, Japan", "berlin", "la",
	}
	for _, in := range inputs {
		first := Normalize(in)
		second := Normalize(first.Clean)
		assert.Equal(t, first.Clean, second.Clean, "input %q", in)
	}
}

// Every alias expansion must itself normalize to the same string, otherwise
// repeated normalization would drift.
func TestAliases_ClosedUnderNormalize(t *testing.T) {
	for key, value := range aliases {
		got := Normalize(value)
		assert.Equal(t, value, got.Clean, "alias %q -> %q is not stable", key, value)
	}
}

func TestIsSentinel(t *testing.T) {
	assert.True(t, IsSentinel("Remote"))
	assert.True(t, IsSentinel("  GLOBAL "))
	assert.True(t, IsSentinel(""))
	assert.False(t, IsSentinel("Lyon"))
	assert.False(t, IsSentinel("remote, Paris"))
}

func TestLoadAliases(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aliases.yaml")
	require.NoError(t, os.WriteFile(path, []byte("CDMX: \"Mexico City, Mexico\"\nblr: Bengaluru, India\n"), 0o644))

	require.NoError(t, LoadAliases(path))
	t.Cleanup(func() {
		delete(aliases, "cdmx")
		delete(aliases, "blr")
	})

	got := Normalize("CDMX")
	assert.Equal(t, "Mexico City, Mexico", got.Clean)
	assert.Equal(t, HintMapped, got.Hint)

	got = Normalize("blr")
	assert.Equal(t, "Bengaluru, India", got.Clean)
}

func TestLoadAliases_Missing(t *testing.T) {
	err := LoadAliases(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read alias file")
}

func TestLoadAliases_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("[not a map"), 0o644))

	err := LoadAliases(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse alias file")
}
