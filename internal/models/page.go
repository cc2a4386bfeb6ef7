package models

import (
	"strconv"
	"time"
)

// Page is the stored snapshot of an embedded page: the markdown rendition of
// its extracted content plus bookkeeping. Chunks are stored separately keyed
// by (URL, Index).
type Page struct {
	URL        string    `json:"url"`
	Title      string    `json:"title"`
	Markdown   string    `json:"markdown"`
	ChunkCount int       `json:"chunk_count"`
	EmbeddedAt time.Time `json:"embedded_at"`
}

// PageChunk is one bounded slice of a page's extracted text together with its
// embedding vector. Indices for a URL are contiguous from 0 and immutable once
// written: a page is either absent from the store or fully embedded.
type PageChunk struct {
	URL       string    `json:"url" badgerhold:"index"`
	Index     int       `json:"index"`
	Text      string    `json:"text"`
	Vector    []float32 `json:"vector"`
	CreatedAt time.Time `json:"created_at"`
}

// ChunkKey builds the storage key for a (url, index) pair.
func ChunkKey(url string, index int) string {
	return url + "||" + strconv.Itoa(index)
}
