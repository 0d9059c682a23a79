package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/culthera/enrich/internal/model"
)

func sampleRecord() model.EnhancedRecord {
	return model.EnhancedRecord{
		ObjectID: "bild_00001",
		AltText:  "Kupferstich einer Stadtansicht von Basel.",
		LongDesc: "Die Ansicht zeigt die Stadt von Norden.",
		Subjects: []model.SubjectEntry{
			{
				ValueURI:   "https://iconclass.org/25F",
				Notation:   "25F",
				PrefLabel:  model.LabelMap{"de": "Tiere", "en": "animals"},
				Confidence: 0.86,
				Scheme:     model.SchemeIconclass,
				Validated:  true,
			},
		},
	}
}

func TestFormatRecord(t *testing.T) {
	node := FormatRecord(sampleRecord())

	if node["@type"] != "edm:ProvidedCHO" {
		t.Errorf("unexpected @type %v", node["@type"])
	}
	if node["dc:identifier"] != "bild_00001" {
		t.Errorf("unexpected identifier %v", node["dc:identifier"])
	}

	desc, ok := node["dc:description"].(map[string]interface{})
	if !ok {
		t.Fatal("dc:description missing")
	}
	if desc["@language"] != "de" || desc["@value"] != "Kupferstich einer Stadtansicht von Basel." {
		t.Errorf("unexpected description %v", desc)
	}

	subjects, ok := node["dc:subject"].([]map[string]interface{})
	if !ok || len(subjects) != 1 {
		t.Fatalf("dc:subject missing or wrong shape: %v", node["dc:subject"])
	}
	subject := subjects[0]
	if subject["@id"] != "https://iconclass.org/25F" {
		t.Errorf("unexpected subject id %v", subject["@id"])
	}
	if subject["skos:notation"] != "25F" {
		t.Errorf("unexpected notation %v", subject["skos:notation"])
	}
	if subject["edm:confidence"] != 0.86 {
		t.Errorf("unexpected confidence %v", subject["edm:confidence"])
	}
	labels, ok := subject["skos:prefLabel"].([]map[string]interface{})
	if !ok || len(labels) != 2 {
		t.Fatalf("expected two language-tagged labels, got %v", subject["skos:prefLabel"])
	}
	if labels[0]["@language"] != "de" || labels[1]["@language"] != "en" {
		t.Errorf("labels out of order: %v", labels)
	}
}

func TestFormatRecord_OmitsEmptyFields(t *testing.T) {
	node := FormatRecord(model.EnhancedRecord{ObjectID: "bild_00002"})

	for _, key := range []string{"dc:description", "edm:isNextInSequence", "dc:subject"} {
		if _, present := node[key]; present {
			t.Errorf("%s should be omitted for an empty record", key)
		}
	}
}

func TestFormatDocument(t *testing.T) {
	doc := FormatDocument([]model.EnhancedRecord{sampleRecord()})

	if doc["@type"] != "edm:DataSet" {
		t.Errorf("unexpected @type %v", doc["@type"])
	}

	ctx, ok := doc["@context"].(map[string]interface{})
	if !ok {
		t.Fatal("@context missing")
	}
	for _, prefix := range []string{"dc", "edm", "skos", "foaf", "xsd", "dcmitype"} {
		if ctx[prefix] == nil {
			t.Errorf("@context missing prefix %s", prefix)
		}
	}

	records, ok := doc["edm:providedCHO"].([]map[string]interface{})
	if !ok || len(records) != 1 {
		t.Fatalf("edm:providedCHO wrong shape: %v", doc["edm:providedCHO"])
	}

	created, ok := doc["dc:created"].(map[string]interface{})
	if !ok || created["@type"] != "xsd:dateTime" {
		t.Errorf("dc:created malformed: %v", doc["dc:created"])
	}
}

func TestWriteDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonld")
	if err := WriteDocument([]model.EnhancedRecord{sampleRecord()}, path); err != nil {
		t.Fatalf("WriteDocument() error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if !strings.Contains(string(data), "edm:DataSet") {
		t.Error("output missing the DataSet envelope")
	}
}
