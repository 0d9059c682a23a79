// Package pipeline orchestrates the per-object enrichment: alt text,
// subject classification and JSON-LD output.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/culthera/enrich/internal/alttext"
	"github.com/culthera/enrich/internal/iconclass"
	"github.com/culthera/enrich/internal/llm"
	"github.com/culthera/enrich/internal/model"
	"github.com/culthera/enrich/internal/vocab"
)

// Enhancer runs the enrichment stages for single objects.
type Enhancer struct {
	classifier *iconclass.Classifier
	altText    *alttext.Generator
	config     *model.Config
}

// NewEnhancer wires providers, the vocabulary client and the classifier
// from configuration.
func NewEnhancer(cfg *model.Config) (*Enhancer, error) {
	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		return nil, fmt.Errorf("initialize LLM provider: %w", err)
	}

	vocabClient := vocab.NewClient(vocab.Options{
		BaseURL:       cfg.Iconclass.BaseURL,
		SearchURL:     cfg.Iconclass.SearchURL,
		RatePerSecond: cfg.Concurrency.LookupRate,
		Burst:         cfg.Concurrency.LookupBurst,
		UserAgent:     cfg.HTTP.UserAgent,
		HTTPProxy:     cfg.LLM.HTTPProxy,
		HTTPSProxy:    cfg.LLM.HTTPSProxy,
		NoProxy:       cfg.LLM.NoProxy,
	})

	classifier := iconclass.NewClassifier(cfg.Iconclass, provider, vocabClient, vocabClient, nil)

	var generator *alttext.Generator
	if provider != nil {
		fetcher := alttext.NewImageFetcher(cfg.HTTP.Timeout, cfg.HTTP.UserAgent, cfg.HTTP.MaxBodyBytes)
		generator = alttext.NewGenerator(provider, fetcher)
	}

	return &Enhancer{
		classifier: classifier,
		altText:    generator,
		config:     cfg,
	}, nil
}

// EnhanceObject enriches one object. Alt-text failure fails the object
// (the original record is unusable without it when a provider is
// configured); classification failure only costs the subjects.
func (e *Enhancer) EnhanceObject(ctx context.Context, obj model.Object) (*model.EnhancedRecord, error) {
	record := &model.EnhancedRecord{ObjectID: obj.ID()}

	if e.altText != nil && obj.Thumbnail != "" {
		result, err := e.altText.Generate(ctx, obj)
		if err != nil {
			return nil, fmt.Errorf("alt text for %s: %w", obj.ID(), err)
		}
		record.AltText = result.AltText
		record.LongDesc = result.LongDesc
	}

	if e.config.Iconclass.Enable {
		subjects := e.classifier.ClassifyObject(ctx, obj)
		if len(subjects) == 0 && e.config.Output.Verbose {
			fmt.Fprintf(os.Stderr, "No subjects for object %s\n", obj.ID())
		}
		record.Subjects = subjects
	}

	return record, nil
}

// OutputFilename derives a timestamped .jsonld output name from the
// feed source when the user does not supply one.
func OutputFilename(source string) string {
	base := "metadata"
	if isURL(source) {
		trimmed := strings.TrimRight(source, "/")
		if last := path.Base(trimmed); last != "" && last != "." && last != "/" {
			base = strings.TrimSuffix(last, path.Ext(last))
		}
	} else {
		name := filepath.Base(source)
		base = strings.TrimSuffix(name, filepath.Ext(name))
	}

	timestamp := time.Now().Format("20060102_150405")
	return fmt.Sprintf("%s_enhanced_%s.jsonld", base, timestamp)
}
