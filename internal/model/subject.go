package model

import "fmt"

// IconclassBase is the canonical resolution base for Iconclass notations.
const IconclassBase = "https://iconclass.org"

// SchemeIconclass identifies the vocabulary scheme in output records.
const SchemeIconclass = "Iconclass"

// LabelMap holds labels keyed by language code ("de", "en").
type LabelMap map[string]string

// Get returns the label for lang, or the empty string.
func (m LabelMap) Get(lang string) string {
	if m == nil {
		return ""
	}
	return m[lang]
}

// Merge fills empty slots in m from other without overwriting existing
// labels, returning the (possibly newly allocated) map.
func (m LabelMap) Merge(other LabelMap) LabelMap {
	if len(other) == 0 {
		return m
	}
	if m == nil {
		m = make(LabelMap, len(other))
	}
	for lang, label := range other {
		if m[lang] == "" && label != "" {
			m[lang] = label
		}
	}
	return m
}

// Candidate is a proposed Iconclass notation before diversity filtering
// and selection.
type Candidate struct {
	Notation   string
	Labels     LabelMap
	Confidence float64

	// Validated is true once the vocabulary service confirmed the
	// notation resolves. Stays false for pass-through candidates when
	// the service is unreachable or validation is disabled.
	Validated bool
}

// SubjectEntry is one ranked subject classification in the output.
// Entries are ordered; the first is the most confident.
type SubjectEntry struct {
	ValueURI   string   `json:"valueURI"`
	Notation   string   `json:"notation"`
	PrefLabel  LabelMap `json:"prefLabel"`
	Confidence float64  `json:"confidence"`
	Scheme     string   `json:"scheme"`

	// Validated mirrors Candidate.Validated; not part of the wire format.
	Validated bool `json:"-"`
}

// NotationURI returns the canonical Iconclass URI for a notation.
func NotationURI(notation string) string {
	return fmt.Sprintf("%s/%s", IconclassBase, notation)
}

// AltText is the parsed result of one alt-text generation call.
type AltText struct {
	ObjectID string `json:"objectid"`
	AltText  string `json:"alt_text"`
	LongDesc string `json:"longdesc,omitempty"`
}

// EnhancedRecord is the per-object enrichment result handed to the
// JSON-LD formatter.
type EnhancedRecord struct {
	ObjectID string
	AltText  string
	LongDesc string
	Subjects []SubjectEntry
}
