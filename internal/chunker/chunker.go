// Package chunker splits academic document text into chapter, unit,
// section and subsection chunks using fixed heading patterns.
package chunker

import (
	"errors"
	"strings"
)

// ErrNoStructure is returned when the text contains no chapter, unit,
// section or subsection markers.
var ErrNoStructure = errors.New("no structural markers found")

// Metadata describes the marker a chunk was cut from.
type Metadata struct {
	Kind     Kind   `json:"kind"`
	Position int    `json:"position"`
	Title    string `json:"title"`
}

// Span is a half-open byte range into the source text.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Chunk is the text between one marker and the next, tagged with its
// enclosing structure. Empty context fields mean no enclosing marker.
type Chunk struct {
	Chapter    string   `json:"chapter,omitempty"`
	Unit       string   `json:"unit,omitempty"`
	Section    string   `json:"section,omitempty"`
	Subsection string   `json:"subsection,omitempty"`
	Content    string   `json:"content"`
	Metadata   Metadata `json:"metadata"`
	Span       Span     `json:"span"` // Marker start to next marker start.
}

// Split cuts text at every detected marker. Chunks come back ordered by
// marker position; the last one runs to the end of the text.
func Split(text string) ([]Chunk, error) {
	markers := FindMarkers(text)
	if len(markers.All) == 0 {
		return nil, ErrNoStructure
	}

	chunks := make([]Chunk, 0, len(markers.All))
	for i, cur := range markers.All {
		end := len(text)
		if i+1 < len(markers.All) {
			end = markers.All[i+1].Start
		}
		chunks = append(chunks, newChunk(text, cur, end, markers))
	}
	return chunks, nil
}

func newChunk(text string, m Marker, end int, markers Markers) Chunk {
	c := Chunk{
		Content: content(text, m.End, end),
		Metadata: Metadata{
			Kind:     m.Kind,
			Position: m.Start,
			Title:    m.Title,
		},
		Span: Span{Start: m.Start, End: end},
	}
	c.Chapter = enclosing(markers, KindChapter, m)
	c.Unit = enclosing(markers, KindUnit, m)
	c.Section = enclosing(markers, KindSection, m)
	if m.Kind == KindSubsection {
		c.Subsection = m.Title
	}
	return c
}

// enclosing resolves the context of kind for marker m. A marker encloses
// itself for its own kind.
func enclosing(markers Markers, kind Kind, m Marker) string {
	if m.Kind == kind {
		return m.Title
	}
	title, _ := Nearest(markers.ByKind[kind], m.Start)
	return title
}

// content returns text[start:end] trimmed. Overlapping markers from
// different patterns can put start past end; that yields no content.
func content(text string, start, end int) string {
	if start >= end {
		return ""
	}
	return strings.TrimSpace(text[start:end])
}
