package iconclass

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/culthera/enrich/internal/model"
)

// SystemPrompt is the system message for the candidate generation call.
const SystemPrompt = "Return only JSON. Use valid Iconclass notations."

// defaultConfidence is assumed when a candidate omits its confidence
// estimate.
const defaultConfidence = 0.7

// BuildPrompt constructs the candidate generation prompt from the
// object's metadata context, the extracted keywords and the preferred
// label language.
func BuildPrompt(obj model.Object, keywords []string, lang string) string {
	labelPreference := "Prefer German labels when possible."
	if lang == "en" {
		labelPreference = "Prefer English labels when possible."
	}

	return fmt.Sprintf(`You assign up to 10 **Iconclass** notations for this record.
Respond as JSON array of objects:
[{"notation":"…","label_de":"…","label_en":"…","confidence":0.0,"why":"…"}]
Use valid Iconclass codes (e.g., 25F, 31A, 52D1). Confidence is your own
estimate in [0,1] of how well the notation fits the record. %s

title: %s
description: %s
subject: %s
creator: %s
relation: %s
era/date: %s %s
language: %s
keywords: %s`,
		labelPreference,
		obj.Title,
		obj.Description,
		obj.Subject.Join(),
		obj.Creator.Join(),
		obj.Relation.Join(),
		obj.Coverage, obj.Date,
		obj.Language,
		strings.Join(keywords, ", "))
}

// rawCandidate mirrors one element of the model's JSON array response.
// The search API uses "label" and "score" instead of the per-language
// fields, so both shapes are accepted.
type rawCandidate struct {
	Notation   string   `json:"notation"`
	LabelDe    string   `json:"label_de"`
	LabelEn    string   `json:"label_en"`
	Label      string   `json:"label"`
	Confidence *float64 `json:"confidence"`
	Score      *float64 `json:"score"`
}

// ParseCandidates extracts candidates from a raw completion. The text is
// scanned for the outermost JSON array so surrounding prose does not break
// parsing. A malformed response yields an empty list, never an error:
// the facade decides how to react to zero candidates. Candidates with
// syntactically invalid notations are discarded here, and confidence
// values are clamped to [0,1].
func ParseCandidates(raw string, lang string) []model.Candidate {
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start == -1 || end <= start {
		return nil
	}

	var parsed []rawCandidate
	if err := json.Unmarshal([]byte(raw[start:end+1]), &parsed); err != nil {
		return nil
	}

	var candidates []model.Candidate
	for _, rc := range parsed {
		notation := strings.TrimSpace(rc.Notation)
		if notation == "" || !ValidNotation(notation) {
			continue
		}

		labels := make(model.LabelMap)
		if rc.LabelDe != "" {
			labels["de"] = rc.LabelDe
		}
		if rc.LabelEn != "" {
			labels["en"] = rc.LabelEn
		}
		if rc.Label != "" && labels[lang] == "" {
			labels[lang] = rc.Label
		}

		confidence := defaultConfidence
		if rc.Confidence != nil {
			confidence = *rc.Confidence
		} else if rc.Score != nil {
			confidence = *rc.Score
		}
		confidence = clamp01(confidence)

		candidates = append(candidates, model.Candidate{
			Notation:   notation,
			Labels:     labels,
			Confidence: confidence,
		})
	}

	return candidates
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
