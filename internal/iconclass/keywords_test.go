package iconclass

import (
	"reflect"
	"testing"

	"github.com/culthera/enrich/internal/model"
)

func TestExtractKeywords(t *testing.T) {
	obj := model.Object{
		Title:       "Basel Stadtansicht",
		Description: "Eine historische Karte von Basel",
		Subject:     model.FlexStrings{"Karte", "Übersicht"},
	}

	got := ExtractKeywords(obj)
	want := []string{"basel", "eine", "historische", "karte", "stadtansicht", "von", "übersicht"}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractKeywords() = %v, want %v", got, want)
	}
}

func TestExtractKeywords_Deterministic(t *testing.T) {
	obj := model.Object{Title: "Zunft zu Schmieden", Description: "Wappen der Zunft"}

	first := ExtractKeywords(obj)
	second := ExtractKeywords(obj)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("expected identical results, got %v and %v", first, second)
	}
}

func TestExtractKeywords_EmptyFields(t *testing.T) {
	if got := ExtractKeywords(model.Object{}); len(got) != 0 {
		t.Errorf("expected no keywords for empty object, got %v", got)
	}

	got := ExtractKeywords(model.Object{Description: "Karte von Basel"})
	want := []string{"basel", "karte", "von"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractKeywords() = %v, want %v", got, want)
	}
}

func TestExtractKeywords_ShortWordsDropped(t *testing.T) {
	got := ExtractKeywords(model.Object{Title: "Öl am St Alban-Tor"})
	for _, term := range got {
		if len([]rune(term)) <= 2 {
			t.Errorf("short term %q should have been dropped", term)
		}
	}
}

func TestExtractKeywords_Cap(t *testing.T) {
	long := ""
	for _, word := range []string{
		"alpha", "bravo", "charlie", "delta", "echo", "foxtrot", "golf",
		"hotel", "india", "juliett", "kilo", "lima", "mike", "november",
		"oscar", "papa", "quebec", "romeo", "sierra", "tango", "uniform",
		"victor", "whiskey", "xray", "yankee", "zulu",
	} {
		long += word + " "
	}

	got := ExtractKeywords(model.Object{Description: long})
	if len(got) != maxKeywords {
		t.Errorf("expected %d keywords, got %d", maxKeywords, len(got))
	}
}
