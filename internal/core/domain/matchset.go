package domain

import "encoding/json"

// DocumentMatches holds the matching pages of one document.
type DocumentMatches struct {
	Document CandidateFile
	Pages    []int
}

// DocumentMatchSet maps documents to their matching page indices.
// Iteration order is insertion order, which is scan order.
// It is not safe for concurrent mutation.
type DocumentMatchSet struct {
	entries []DocumentMatches
	index   map[string]int
}

// NewDocumentMatchSet creates an empty match set.
func NewDocumentMatchSet() *DocumentMatchSet {
	return &DocumentMatchSet{index: make(map[string]int)}
}

// Add records a matching page. Pages of a document keep the order
// in which they were added.
func (s *DocumentMatchSet) Add(doc CandidateFile, pageIndex int) {
	if s.index == nil {
		s.index = make(map[string]int)
	}
	i, ok := s.index[doc.Path]
	if !ok {
		i = len(s.entries)
		s.index[doc.Path] = i
		s.entries = append(s.entries, DocumentMatches{Document: doc})
	}
	s.entries[i].Pages = append(s.entries[i].Pages, pageIndex)
}

// Pages returns the matching page indices of a document, or nil.
func (s *DocumentMatchSet) Pages(path string) []int {
	if s == nil {
		return nil
	}
	i, ok := s.index[path]
	if !ok {
		return nil
	}
	return append([]int(nil), s.entries[i].Pages...)
}

// Documents returns the matching documents in scan order.
func (s *DocumentMatchSet) Documents() []DocumentMatches {
	if s == nil {
		return nil
	}
	out := make([]DocumentMatches, len(s.entries))
	for i, e := range s.entries {
		out[i] = DocumentMatches{
			Document: e.Document,
			Pages:    append([]int(nil), e.Pages...),
		}
	}
	return out
}

// Len returns the number of documents with at least one match.
func (s *DocumentMatchSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// TotalMatches returns the number of matching pages across documents.
func (s *DocumentMatchSet) TotalMatches() int {
	if s == nil {
		return 0
	}
	n := 0
	for _, e := range s.entries {
		n += len(e.Pages)
	}
	return n
}

// PageMatches flattens the set into scan order.
func (s *DocumentMatchSet) PageMatches() []PageMatch {
	if s == nil {
		return nil
	}
	out := make([]PageMatch, 0, s.TotalMatches())
	for _, e := range s.entries {
		for _, p := range e.Pages {
			out = append(out, PageMatch{DocumentPath: e.Document.Path, PageIndex: p})
		}
	}
	return out
}

type documentMatchesJSON struct {
	Document string `json:"document"`
	Archive  string `json:"archive,omitempty"`
	Entry    string `json:"entry,omitempty"`
	Pages    []int  `json:"pages"`
}

// MarshalJSON encodes the set as an ordered array.
func (s *DocumentMatchSet) MarshalJSON() ([]byte, error) {
	out := make([]documentMatchesJSON, 0, s.Len())
	for _, e := range s.Documents() {
		out = append(out, documentMatchesJSON{
			Document: e.Document.Path,
			Archive:  e.Document.ArchivePath,
			Entry:    e.Document.EntryName,
			Pages:    e.Pages,
		})
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the ordered array form.
func (s *DocumentMatchSet) UnmarshalJSON(data []byte) error {
	var in []documentMatchesJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*s = DocumentMatchSet{index: make(map[string]int, len(in))}
	for _, e := range in {
		doc := CandidateFile{Path: e.Document, ArchivePath: e.Archive, EntryName: e.Entry}
		for _, p := range e.Pages {
			s.Add(doc, p)
		}
	}
	return nil
}
