package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipeline_Run(t *testing.T) {
	p := &Pipeline{Processors: []Processor{
		HTMLStrip("body"),
		Lowercase("body"),
		Set("indexed", true),
		Remove("tmp"),
		Rename("body", "content"),
	}}

	in := Document{ID: "d1", Fields: map[string]any{
		"body": "<b>HELLO</b> World",
		"tmp":  "scratch",
	}}

	out, err := p.Run(in)
	require.NoError(t, err)
	assert.Equal(t, "hello world", out.Fields["content"])
	assert.Equal(t, true, out.Fields["indexed"])
	_, hasTmp := out.Fields["tmp"]
	assert.False(t, hasTmp)
	_, hasBody := out.Fields["body"]
	assert.False(t, hasBody)

	// the input document's own Fields map must be untouched (pure
	// Document -> Document transform, spec §4.6).
	assert.Equal(t, "<b>HELLO</b> World", in.Fields["body"])
}

func TestLowercase_MissingField(t *testing.T) {
	_, err := Lowercase("missing").Process(Document{Fields: map[string]any{}})
	require.Error(t, err)
}

func TestRename_MissingField(t *testing.T) {
	_, err := Rename("missing", "to").Process(Document{Fields: map[string]any{}})
	require.Error(t, err)
}

func TestRemove_NoOpWhenAbsent(t *testing.T) {
	out, err := Remove("missing").Process(Document{Fields: map[string]any{}})
	require.NoError(t, err)
	assert.Empty(t, out.Fields)
}

func TestSet_NowExpansion(t *testing.T) {
	out, err := Set("ts", "{{_now}}").Process(Document{Fields: map[string]any{}})
	require.NoError(t, err)
	assert.NotEmpty(t, out.Fields["ts"])
}

func TestRegistry_UnknownPipeline(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Get("nope")
	require.Error(t, err)
}
