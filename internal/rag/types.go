package rag

import (
	"fmt"
	"time"
)

// TimestampLayout is the human-readable "as of" format recorded with every snapshot.
const TimestampLayout = "2006-01-02 15:04:05"

// Document is a single article from the corpus.
type Document struct {
	Category string `json:"category"`
	Title    string `json:"title"`
	URL      string `json:"url"`
	Content  string `json:"content"`
}

// CorpusText returns the text that is embedded for the document.
func (d Document) CorpusText() string {
	return d.Title + "\n\n" + d.Content
}

// Passage is one corpus entry as seen by a reader of a Snapshot.
type Passage struct {
	Index int
	Title string
	URL   string
	Text  string
}

// Snapshot is an immutable set of embedded corpus entries. Position i of every
// sequence refers to the same source document; the fields are only reachable
// through NewSnapshot and the read accessors below.
type Snapshot struct {
	texts      []string
	embeddings [][]float64
	titles     []string
	urls       []string
	createdAt  string
}

// NewSnapshot validates the four parallel sequences and bundles them with the
// creation timestamp.
func NewSnapshot(texts []string, embeddings [][]float64, titles, urls []string, createdAt string) (*Snapshot, error) {
	n := len(texts)
	if len(embeddings) != n || len(titles) != n || len(urls) != n {
		return nil, fmt.Errorf("snapshot sequences are misaligned: texts=%d embeddings=%d titles=%d urls=%d",
			n, len(embeddings), len(titles), len(urls))
	}
	if createdAt != "" {
		if _, err := time.Parse(TimestampLayout, createdAt); err != nil {
			return nil, fmt.Errorf("snapshot timestamp %q: %w", createdAt, err)
		}
	}
	dims := 0
	for i, vec := range embeddings {
		if len(vec) == 0 {
			return nil, fmt.Errorf("snapshot embedding %d is empty", i)
		}
		if i == 0 {
			dims = len(vec)
			continue
		}
		if len(vec) != dims {
			return nil, fmt.Errorf("snapshot embedding %d has %d dimensions, expected %d", i, len(vec), dims)
		}
	}

	return &Snapshot{
		texts:      cloneStrings(texts),
		embeddings: cloneVectors(embeddings),
		titles:     cloneStrings(titles),
		urls:       cloneStrings(urls),
		createdAt:  createdAt,
	}, nil
}

// newSnapshotFromDocuments pairs each document with the vector produced for its corpus text.
func newSnapshotFromDocuments(docs []Document, vectors [][]float64, createdAt string) (*Snapshot, error) {
	texts := make([]string, len(docs))
	titles := make([]string, len(docs))
	urls := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.CorpusText()
		titles[i] = doc.Title
		urls[i] = doc.URL
	}
	return NewSnapshot(texts, vectors, titles, urls, createdAt)
}

// Len returns the number of entries in the snapshot.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.texts)
}

// CreatedAt returns the "as of" timestamp in TimestampLayout.
func (s *Snapshot) CreatedAt() string {
	return s.createdAt
}

// Dimensions returns the embedding dimensionality, or zero for an empty snapshot.
func (s *Snapshot) Dimensions() int {
	if s.Len() == 0 {
		return 0
	}
	return len(s.embeddings[0])
}

// Passage returns entry i.
func (s *Snapshot) Passage(i int) Passage {
	return Passage{Index: i, Title: s.titles[i], URL: s.urls[i], Text: s.texts[i]}
}

// Equal reports whether two snapshots hold identical entries and timestamps.
func (s *Snapshot) Equal(other *Snapshot) bool {
	if s == nil || other == nil {
		return s == other
	}
	if s.Len() != other.Len() || s.createdAt != other.createdAt {
		return false
	}
	for i := range s.texts {
		if s.texts[i] != other.texts[i] || s.titles[i] != other.titles[i] || s.urls[i] != other.urls[i] {
			return false
		}
		if len(s.embeddings[i]) != len(other.embeddings[i]) {
			return false
		}
		for j := range s.embeddings[i] {
			if s.embeddings[i][j] != other.embeddings[i][j] {
				return false
			}
		}
	}
	return true
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneVectors(in [][]float64) [][]float64 {
	out := make([][]float64, len(in))
	for i, v := range in {
		out[i] = append([]float64(nil), v...)
	}
	return out
}
