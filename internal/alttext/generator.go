// Package alttext generates WCAG-compliant German alternative text for
// object images via a vision-capable LLM.
package alttext

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/culthera/enrich/internal/llm"
	"github.com/culthera/enrich/internal/model"
)

// systemPrompt for the alt-text completion.
const systemPrompt = "Du bist ein Experte für Alternativtexte."

// altTextMaxTokens bounds the alt-text completion.
const altTextMaxTokens = 2000

// Generator produces alt text for metadata objects.
type Generator struct {
	provider llm.Provider
	fetcher  *ImageFetcher
}

// NewGenerator creates an alt-text generator.
func NewGenerator(provider llm.Provider, fetcher *ImageFetcher) *Generator {
	return &Generator{
		provider: provider,
		fetcher:  fetcher,
	}
}

// BuildPrompt constructs the German WCAG alt-text prompt from the
// object's metadata.
func BuildPrompt(obj model.Object) string {
	return fmt.Sprintf(`Du bist ein Spezialist für barrierefreie Alternativtexte (WCAG).
Das folgende Bild stammt aus einer stadtgeschichtlichen Forschungssammlung
und hat diese Metadaten:

Titel: %s
Beschreibung: %s
Thema: %s
Zeitraum: %s
Schöpfer: %s
Datum: %s
Teil von: %s
Verweise: %s
Sprache: %s

Analysiere das Bild (siehe separate Bildübertragung) zusammen mit den Metadaten.

1. Identifiziere: Bildtyp – *Informativ*, **Komplex (Diagramm/Karte)** oder
   *Bild von Text*.
2. Erstelle:
   • Bei *Informativ*: 1–2 Sätze, keine Wiederholung der Metadaten, Fokus
     auf Relevanz.
   • Bei *Komplex* (Diagramm/Karte): Alt-Text mit Typ + Kernaussage, ggf.
     Langbeschreibung.
   • Bei *Bild von Text*: Text als Alt-Text (bei Kurztext) oder Hinweis +
     exakter OCR-Text.
Allgemein: Keine Formate wie „Bild von…", keine Emojis, Alt-Text auf Deutsch,
maximal 120 Zeichen (informativ/Text), maximal 200 Zeichen (komplex).

Antworte **nur** als JSON wie im Beispiel:
{
  "objectid": "%s",
  "alt_text": "…",
  "longdesc": "…"
}`,
		obj.Title,
		obj.Description,
		obj.Subject.Join(),
		obj.Coverage,
		obj.Creator.Join(),
		obj.Date,
		obj.IsPartOf.Join(),
		obj.Relation.Join(),
		obj.Language,
		obj.ObjectID)
}

// Generate downloads the object's thumbnail and runs one vision
// completion. Unlike subject classification, a failure here is reported
// to the caller: an object without alt text is a real defect the
// enhancer must record.
func (g *Generator) Generate(ctx context.Context, obj model.Object) (*model.AltText, error) {
	if g.provider == nil {
		return nil, fmt.Errorf("no LLM provider configured")
	}
	if obj.Thumbnail == "" {
		return nil, fmt.Errorf("object has no thumbnail")
	}

	imageJPEG, err := g.fetcher.Fetch(ctx, obj.Thumbnail)
	if err != nil {
		return nil, fmt.Errorf("fetch thumbnail: %w", err)
	}

	resp, err := g.provider.Complete(ctx, llm.CompletionRequest{
		System:    systemPrompt,
		Prompt:    BuildPrompt(obj),
		ImageJPEG: imageJPEG,
		MaxTokens: altTextMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("completion failed: %w", err)
	}

	return ParseResponse(resp)
}

// ParseResponse parses the strict JSON alt-text contract. Empty content
// is diagnosed via the finish reason so truncation and content filtering
// are distinguishable in logs.
func ParseResponse(resp *llm.CompletionResponse) (*model.AltText, error) {
	content := strings.TrimSpace(resp.Content)
	if content == "" {
		switch resp.FinishReason {
		case "length", "max_tokens":
			return nil, fmt.Errorf("response cut off at the token limit")
		case "content_filter":
			return nil, fmt.Errorf("response blocked by the provider's content filter")
		default:
			return nil, fmt.Errorf("empty response (finish reason %q)", resp.FinishReason)
		}
	}

	// Tolerate a fenced code block around the JSON object.
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end <= start {
		return nil, fmt.Errorf("response is not a JSON object: %s", content)
	}

	var result model.AltText
	if err := json.Unmarshal([]byte(content[start:end+1]), &result); err != nil {
		return nil, fmt.Errorf("parse JSON response: %w", err)
	}

	if result.AltText == "" {
		return nil, fmt.Errorf("response missing alt_text field")
	}

	return &result, nil
}
