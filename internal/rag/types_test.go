package rag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSnapshotRejectsMisalignedSequences(t *testing.T) {
	_, err := NewSnapshot(
		[]string{"a", "b"},
		[][]float64{{1}, {2}},
		[]string{"A"},
		[]string{"u1", "u2"},
		"",
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "misaligned")
}

func TestNewSnapshotRejectsInconsistentDimensions(t *testing.T) {
	_, err := NewSnapshot(
		[]string{"a", "b"},
		[][]float64{{1, 0}, {1}},
		[]string{"A", "B"},
		[]string{"u1", "u2"},
		"",
	)
	require.Error(t, err)

	_, err = NewSnapshot([]string{"a"}, [][]float64{{}}, []string{"A"}, []string{"u1"}, "")
	require.Error(t, err)
}

func TestNewSnapshotRejectsBadTimestamp(t *testing.T) {
	_, err := NewSnapshot(nil, nil, nil, nil, "yesterday")
	require.Error(t, err)
}

func TestSnapshotCopiesInput(t *testing.T) {
	vec := []float64{1, 2}
	texts := []string{"a"}
	snap, err := NewSnapshot(texts, [][]float64{vec}, []string{"A"}, []string{"u"}, "2024-01-02 03:04:05")
	require.NoError(t, err)

	vec[0] = 99
	texts[0] = "changed"
	assert.Equal(t, []float64{1, 2}, snap.embeddings[0])
	assert.Equal(t, "a", snap.Passage(0).Text)
}

func TestSnapshotFromDocuments(t *testing.T) {
	docs := []Document{
		{Category: "Onboarding", Title: "Willkommen", URL: "https://example.com/1", Content: "Hallo"},
		{Category: "FAQ", Title: "Fragen", URL: "https://example.com/2", Content: "Antworten"},
	}
	snap, err := newSnapshotFromDocuments(docs, [][]float64{{1, 0}, {0, 1}}, "2024-01-02 03:04:05")
	require.NoError(t, err)

	require.Equal(t, 2, snap.Len())
	assert.Equal(t, 2, snap.Dimensions())
	assert.Equal(t, "2024-01-02 03:04:05", snap.CreatedAt())
	assert.Equal(t, Passage{Index: 1, Title: "Fragen", URL: "https://example.com/2", Text: "Fragen\n\nAntworten"}, snap.Passage(1))
}

func TestSnapshotEqual(t *testing.T) {
	a := mustSnapshot(t, []float64{1, 0}, []float64{0, 1})
	b := mustSnapshot(t, []float64{1, 0}, []float64{0, 1})
	c := mustSnapshot(t, []float64{1, 0}, []float64{0, 0.5})

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(nil))

	var nilSnap *Snapshot
	assert.True(t, nilSnap.Equal(nil))
	assert.Zero(t, nilSnap.Len())
}
