package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/culthera/enrich/internal/model"
)

// jsonldContext is the shared @context of every emitted document.
func jsonldContext() map[string]interface{} {
	return map[string]interface{}{
		"dc":       "http://purl.org/dc/terms/",
		"dcmitype": "http://purl.org/dc/dcmitype/",
		"edm":      "http://www.europeana.eu/schemas/edm/",
		"foaf":     "http://xmlns.com/foaf/0.1/",
		"skos":     "http://www.w3.org/2004/02/skos/core#",
		"xsd":      "http://www.w3.org/2001/XMLSchema#",
	}
}

// FormatRecord renders one enhanced object as a JSON-LD ProvidedCHO node
// with Dublin Core terms.
func FormatRecord(rec model.EnhancedRecord) map[string]interface{} {
	node := map[string]interface{}{
		"@context":      jsonldContext(),
		"@type":         "edm:ProvidedCHO",
		"dc:identifier": rec.ObjectID,
	}

	if rec.AltText != "" {
		node["dc:description"] = map[string]interface{}{
			"@type":     "edm:AltText",
			"@value":    rec.AltText,
			"@language": "de",
		}
	}

	if rec.LongDesc != "" {
		node["edm:isNextInSequence"] = map[string]interface{}{
			"@type":     "edm:LongDescription",
			"@value":    rec.LongDesc,
			"@language": "de",
		}
	}

	if len(rec.Subjects) > 0 {
		subjects := make([]map[string]interface{}, 0, len(rec.Subjects))
		for _, subject := range rec.Subjects {
			prefLabels := make([]map[string]interface{}, 0, 2)
			for _, lang := range []string{"de", "en"} {
				if label := subject.PrefLabel.Get(lang); label != "" {
					prefLabels = append(prefLabels, map[string]interface{}{
						"@value":    label,
						"@language": lang,
					})
				}
			}

			subjects = append(subjects, map[string]interface{}{
				"@id":            subject.ValueURI,
				"skos:notation":  subject.Notation,
				"skos:prefLabel": prefLabels,
				"edm:confidence": subject.Confidence,
				"skos:inScheme": map[string]interface{}{
					"@id":            model.IconclassBase + "/",
					"skos:prefLabel": model.SchemeIconclass,
				},
			})
		}
		node["dc:subject"] = subjects
	}

	return node
}

// FormatDocument wraps all records in the DataSet envelope.
func FormatDocument(records []model.EnhancedRecord) map[string]interface{} {
	formatted := make([]map[string]interface{}, 0, len(records))
	for _, rec := range records {
		formatted = append(formatted, FormatRecord(rec))
	}

	return map[string]interface{}{
		"@context": jsonldContext(),
		"@type":    "edm:DataSet",
		"dc:created": map[string]interface{}{
			"@value": time.Now().Format(time.RFC3339),
			"@type":  "xsd:dateTime",
		},
		"dc:creator": map[string]interface{}{
			"@id":       "https://github.com/culthera/enrich",
			"foaf:name": "Enrich Metadata Enhancer",
		},
		"dc:description": "Enhanced Dublin Core metadata with AI-generated alt text " +
			"and Iconclass subject classification",
		"edm:providedCHO": formatted,
	}
}

// WriteDocument renders the JSON-LD document to path.
func WriteDocument(records []model.EnhancedRecord, path string) error {
	data, err := json.MarshalIndent(FormatDocument(records), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON-LD: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	return nil
}
