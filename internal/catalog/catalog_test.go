package catalog_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/rv-search/backend/internal/catalog"
	"github.com/pkordes/rv-search/backend/internal/domain"
)

// TestDefault_IDsAreSortKeys keeps the embedded catalog in step with the sort
// keys the search endpoint accepts.
func TestDefault_IDsAreSortKeys(t *testing.T) {
	fs, err := catalog.Default()

	require.NoError(t, err)
	require.NotEmpty(t, fs)
	for _, f := range fs {
		assert.True(t, domain.SortKey(f.ID).Valid(), "filter %q is not a sort key", f.ID)
	}

	f, ok := fs.Lookup("price-low")
	require.True(t, ok)
	assert.Equal(t, "Price: Low to High", f.Label)
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filters.yaml")
	doc := "filters:\n  - id: rating\n    label: Best reviewed\n  - id: newest\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	fs, err := catalog.Load(path)

	require.NoError(t, err)
	assert.Equal(t, domain.FilterSet{
		{ID: "rating", Label: "Best reviewed"},
		{ID: "newest", Label: "newest"},
	}, fs)
}

func TestLoad_EmptyPathUsesDefault(t *testing.T) {
	fs, err := catalog.Load("")

	require.NoError(t, err)
	_, ok := fs.Lookup("recommended")
	assert.True(t, ok)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := catalog.Load(filepath.Join(t.TempDir(), "nope.yaml"))

	assert.Error(t, err)
}

func TestParse_Rejects(t *testing.T) {
	tests := map[string]string{
		"duplicate id": "filters:\n  - id: a\n  - id: a\n",
		"blank id":     "filters:\n  - label: Nameless\n",
		"bad yaml":     "filters: [",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := catalog.Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}
