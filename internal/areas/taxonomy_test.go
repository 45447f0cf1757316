package areas

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTaxonomy(t *testing.T) {
	r, err := Default()
	require.NoError(t, err)

	assert.Equal(t, "Emoções: Gestão, sentimentos, equilíbrio.", r.Default().Label())
	assert.Len(t, r.List(), 8)

	a, ok := r.Get("Carreira")
	require.True(t, ok)
	assert.Equal(t, "Carreira", a.Name)
}

func TestResolve(t *testing.T) {
	r, err := Default()
	require.NoError(t, err)

	assert.Equal(t, r.Default().Label(), r.Resolve(""))
	assert.Equal(t, "Lazer: Hobbies, diversão, tempo livre.", r.Resolve("Lazer"))
	assert.Equal(t, "Espiritualidade", r.Resolve("Espiritualidade"))
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte("areas:\n  - name: A\n    colour: blue\n"))
	assert.Error(t, err)
}

func TestParseValidation(t *testing.T) {
	_, err := Parse([]byte("areas: []\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("areas:\n  - description: no name\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("areas:\n  - name: A\n  - name: A\n"))
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "areas.yaml")
	require.NoError(t, os.WriteFile(path, []byte("areas:\n  - name: Sono\n"), 0o644))

	r, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Sono", r.Default().Label())

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
