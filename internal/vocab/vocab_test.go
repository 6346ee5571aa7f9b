package vocab

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDoc = `
predicates:
  - person
  - parent_of
actions:
  - inherit_title
`

func TestParse_IndexesBothSections(t *testing.T) {
	v, err := Parse([]byte(sampleDoc))
	require.NoError(t, err)

	assert.True(t, v.HasPredicate("person"))
	assert.True(t, v.HasPredicate("parent_of"))
	assert.False(t, v.HasPredicate("inherit_title"))
	assert.True(t, v.HasAction("inherit_title"))
	assert.False(t, v.HasAction("person"))
}

func TestParse_EmptyDocument(t *testing.T) {
	v, err := Parse([]byte(""))
	require.NoError(t, err)
	assert.False(t, v.HasPredicate("anything"))
	assert.False(t, v.HasAction("anything"))
}

func TestParse_MalformedYAML(t *testing.T) {
	_, err := Parse([]byte("predicates: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse vocabulary")
}

func TestLoad_ReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocab.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleDoc), 0o644))

	v, err := Load(path)
	require.NoError(t, err)
	assert.True(t, v.HasPredicate("person"))
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read vocabulary file")
}
