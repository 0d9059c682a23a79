package alttext

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/culthera/enrich/internal/llm"
	"github.com/culthera/enrich/internal/model"
)

type scriptedProvider struct {
	content      string
	finishReason string
	err          error
	lastRequest  llm.CompletionRequest
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	p.lastRequest = req
	if p.err != nil {
		return nil, p.err
	}
	return &llm.CompletionResponse{Content: p.content, FinishReason: p.finishReason}, nil
}

func (p *scriptedProvider) IsAvailable(ctx context.Context) bool { return p.err == nil }

func TestBuildPrompt(t *testing.T) {
	obj := model.Object{
		ObjectID:    "bild_00042",
		Title:       "Rheinbrücke",
		Description: "Ansicht der alten Rheinbrücke",
		Subject:     model.FlexStrings{"Brücke", "Rhein"},
		Coverage:    "1850-1900",
	}

	prompt := BuildPrompt(obj)
	for _, want := range []string{
		"WCAG",
		"Rheinbrücke",
		"Ansicht der alten Rheinbrücke",
		"Brücke, Rhein",
		"bild_00042",
		"alt_text",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestParseResponse(t *testing.T) {
	resp := &llm.CompletionResponse{Content: `Hier ist das Ergebnis:
{
  "objectid": "bild_00042",
  "alt_text": "Stahlbrücke über den Rhein mit zwei Bögen.",
  "longdesc": "Die Brücke verbindet Gross- und Kleinbasel."
}`}

	got, err := ParseResponse(resp)
	if err != nil {
		t.Fatalf("ParseResponse() error: %v", err)
	}
	if got.ObjectID != "bild_00042" {
		t.Errorf("unexpected objectid %q", got.ObjectID)
	}
	if got.AltText != "Stahlbrücke über den Rhein mit zwei Bögen." {
		t.Errorf("unexpected alt_text %q", got.AltText)
	}
	if got.LongDesc == "" {
		t.Errorf("longdesc should be preserved")
	}
}

func TestParseResponse_FencedJSON(t *testing.T) {
	resp := &llm.CompletionResponse{Content: "```json\n{\"alt_text\": \"Karte der Stadt.\"}\n```"}

	got, err := ParseResponse(resp)
	if err != nil {
		t.Fatalf("ParseResponse() error: %v", err)
	}
	if got.AltText != "Karte der Stadt." {
		t.Errorf("unexpected alt_text %q", got.AltText)
	}
}

func TestParseResponse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		resp    *llm.CompletionResponse
		wantSub string
	}{
		{
			"empty with length finish",
			&llm.CompletionResponse{Content: "", FinishReason: "length"},
			"token limit",
		},
		{
			"empty with max_tokens finish",
			&llm.CompletionResponse{Content: "", FinishReason: "max_tokens"},
			"token limit",
		},
		{
			"empty with content filter",
			&llm.CompletionResponse{Content: "", FinishReason: "content_filter"},
			"content filter",
		},
		{
			"empty unexplained",
			&llm.CompletionResponse{Content: "   ", FinishReason: "stop"},
			"empty response",
		},
		{
			"no JSON object",
			&llm.CompletionResponse{Content: "Ich kann das Bild nicht beschreiben."},
			"not a JSON object",
		},
		{
			"broken JSON",
			&llm.CompletionResponse{Content: `{"alt_text": "Karte`},
			"not a JSON object",
		},
		{
			"missing alt_text",
			&llm.CompletionResponse{Content: `{"objectid": "x", "longdesc": "nur lang"}`},
			"missing alt_text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseResponse(tt.resp)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error %q does not mention %q", err, tt.wantSub)
			}
		})
	}
}

func TestGenerate_RequiresProviderAndThumbnail(t *testing.T) {
	g := NewGenerator(nil, nil)
	if _, err := g.Generate(context.Background(), model.Object{Thumbnail: "https://example.org/x.jpg"}); err == nil {
		t.Error("expected error without provider")
	}

	g = NewGenerator(&scriptedProvider{}, nil)
	if _, err := g.Generate(context.Background(), model.Object{}); err == nil {
		t.Error("expected error without thumbnail")
	}
}

func TestGenerate_ProviderErrorPropagates(t *testing.T) {
	provider := &scriptedProvider{err: errors.New("rate limited")}
	fetcher, server := newStubFetcher(t, tinyJPEG(t))
	defer server.Close()

	g := NewGenerator(provider, fetcher)
	_, err := g.Generate(context.Background(), model.Object{Thumbnail: server.URL + "/thumb.jpg"})
	if err == nil || !strings.Contains(err.Error(), "rate limited") {
		t.Errorf("expected provider error to propagate, got %v", err)
	}
}

func TestGenerate_SendsImage(t *testing.T) {
	provider := &scriptedProvider{content: `{"alt_text": "Eine Karte."}`}
	fetcher, server := newStubFetcher(t, tinyJPEG(t))
	defer server.Close()

	g := NewGenerator(provider, fetcher)
	got, err := g.Generate(context.Background(), model.Object{
		ObjectID:  "obj-9",
		Thumbnail: server.URL + "/thumb.jpg",
	})
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if got.AltText != "Eine Karte." {
		t.Errorf("unexpected alt text %q", got.AltText)
	}
	if len(provider.lastRequest.ImageJPEG) == 0 {
		t.Error("completion request should carry the image bytes")
	}
	if provider.lastRequest.System != systemPrompt {
		t.Errorf("unexpected system prompt %q", provider.lastRequest.System)
	}
}
