package chunker

import (
	"regexp"
	"sort"
	"strings"
)

// Kind identifies which structural pattern produced a marker.
type Kind string

const (
	KindChapter    Kind = "chapter"
	KindUnit       Kind = "unit"
	KindSection    Kind = "section"
	KindSubsection Kind = "subsection"
)

// Kinds lists marker kinds in outermost-first order. Merged markers that
// share a start offset keep this order.
var Kinds = []Kind{KindChapter, KindUnit, KindSection, KindSubsection}

var patterns = map[Kind]*regexp.Regexp{
	KindChapter:    regexp.MustCompile(`CHAPTER\s+\d+`),
	KindUnit:       regexp.MustCompile(`UNIT\s*-?\s*\d+:`),
	KindSection:    regexp.MustCompile(`(?m)^\d+\.\d+[ \t]+[A-Z][A-Za-z \t-]+\r?$`),
	KindSubsection: regexp.MustCompile(`(?m)^\d+\.\d+\.\d+[ \t]+[A-Z][A-Za-z \t-]+\r?$`),
}

// Marker is a detected structural boundary.
type Marker struct {
	Kind  Kind   `json:"kind"`
	Title string `json:"title"`
	Start int    `json:"start"` // Byte offset of the matched text.
	End   int    `json:"end"`   // Byte offset just past the matched text.
}

// Markers holds every marker found in a text, per kind and merged.
type Markers struct {
	ByKind map[Kind][]Marker
	All    []Marker // Sorted by Start.
}

// FindMarkers scans text once per pattern and merges the results by
// start offset.
func FindMarkers(text string) Markers {
	m := Markers{ByKind: make(map[Kind][]Marker, len(Kinds))}
	for _, kind := range Kinds {
		found := findAll(text, kind)
		m.ByKind[kind] = found
		m.All = append(m.All, found...)
	}
	sort.SliceStable(m.All, func(i, j int) bool {
		return m.All[i].Start < m.All[j].Start
	})
	return m
}

func findAll(text string, kind Kind) []Marker {
	locs := patterns[kind].FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return nil
	}
	out := make([]Marker, 0, len(locs))
	for _, loc := range locs {
		out = append(out, Marker{
			Kind:  kind,
			Title: strings.TrimSpace(text[loc[0]:loc[1]]),
			Start: loc[0],
			End:   loc[1],
		})
	}
	return out
}

// Nearest returns the title of the last marker in markers (ordered by
// Start) that begins strictly before pos.
func Nearest(markers []Marker, pos int) (string, bool) {
	for i := len(markers) - 1; i >= 0; i-- {
		if markers[i].Start < pos {
			return markers[i].Title, true
		}
	}
	return "", false
}
