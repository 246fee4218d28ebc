package collection

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prismsearch/prism/internal/hybrid"
	"github.com/prismsearch/prism/internal/ingest"
	"github.com/prismsearch/prism/internal/perr"
)

func TestManager_AddGetRemove(t *testing.T) {
	m := NewManager(nil, nil, nil)
	require.NoError(t, m.AddCollection(testSchema("docs")))

	schema, err := m.GetSchema("docs")
	require.NoError(t, err)
	assert.Equal(t, "docs", schema.Name)

	assert.Equal(t, []string{"docs"}, m.ListCollections())

	require.NoError(t, m.RemoveCollection("docs"))
	_, err = m.GetSchema("docs")
	assert.True(t, perr.KindOf(err) == perr.KindCollectionNotFound)
}

func TestManager_AddCollectionRejectsDuplicate(t *testing.T) {
	m := NewManager(nil, nil, nil)
	require.NoError(t, m.AddCollection(testSchema("docs")))
	err := m.AddCollection(testSchema("docs"))
	assert.Error(t, err)
}

func TestManager_ExpandCollectionPatterns(t *testing.T) {
	m := NewManager(nil, nil, nil)
	require.NoError(t, m.AddCollection(testSchema("docs-en")))
	require.NoError(t, m.AddCollection(testSchema("docs-fr")))
	require.NoError(t, m.AddCollection(testSchema("logs")))

	names, err := m.ExpandCollectionPatterns([]string{"docs-*"})
	require.NoError(t, err)
	assert.Equal(t, []string{"docs-en", "docs-fr"}, names)

	_, err = m.ExpandCollectionPatterns([]string{"nothing-*"})
	assert.True(t, perr.KindOf(err) == perr.KindCollectionNotFound)
}

func TestManager_MultiSearch(t *testing.T) {
	m := NewManager(nil, nil, nil)
	require.NoError(t, m.AddCollection(testSchema("docs-en")))
	require.NoError(t, m.AddCollection(testSchema("docs-fr")))

	require.NoError(t, m.Index(context.Background(), "docs-en", []ingest.Document{
		{ID: "1", Fields: map[string]any{"title": "hello", "embedding": []float32{1, 0, 0, 0}}},
	}))

	results, err := m.MultiSearch(context.Background(), []string{"docs-*"}, "hello", nil, 5, nil, hybrid.Hints{})
	require.NoError(t, err)
	require.Len(t, results, 2)
}

func TestManager_LintSchemas(t *testing.T) {
	m := NewManager(nil, nil, nil)
	require.NoError(t, m.AddCollection(testSchema("docs")))
	issues := m.LintSchemas()
	assert.Empty(t, issues)
}

func TestManager_DetachRefusesEmpty(t *testing.T) {
	m := NewManager(nil, nil, nil)
	require.NoError(t, m.AddCollection(testSchema("docs")))
	_, err := m.Detach(context.Background(), "docs", nil, false)
	assert.Error(t, err)
}

func TestManager_DetachAttachRoundTrip(t *testing.T) {
	m := NewManager(nil, nil, nil)
	schema := testSchema("docs")
	require.NoError(t, m.AddCollection(schema))
	require.NoError(t, m.Index(context.Background(), "docs", []ingest.Document{
		{ID: "1", Fields: map[string]any{"title": "hello", "embedding": []float32{1, 0, 0, 0}}},
	}))

	manifest, err := m.Detach(context.Background(), "docs", nil, false)
	require.NoError(t, err)
	assert.Equal(t, "docs", manifest.Collection)
	assert.Equal(t, uint64(1), manifest.DocumentCount)
	assert.Equal(t, []string{"text", "vector", "graph"}, manifest.Backends)

	_, err = m.GetSchema("docs")
	assert.True(t, perr.KindOf(err) == perr.KindCollectionNotFound)

	require.NoError(t, m.Attach(schema, manifest, true))
	assert.Equal(t, []string{"docs"}, m.ListCollections())
}

func TestManager_AttachRejectsMissingSchemaYAML(t *testing.T) {
	m := NewManager(nil, nil, nil)
	err := m.Attach(testSchema("docs"), Manifest{Collection: "docs"}, false)
	assert.Error(t, err)
}

func TestManager_AttachRejectsCollision(t *testing.T) {
	m := NewManager(nil, nil, nil)
	schema := testSchema("docs")
	require.NoError(t, m.AddCollection(schema))
	err := m.Attach(schema, Manifest{Collection: "docs"}, true)
	assert.Error(t, err)
}
