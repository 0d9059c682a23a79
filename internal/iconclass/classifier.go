package iconclass

import (
	"context"
	"fmt"
	"math"
	"os"

	"github.com/culthera/enrich/internal/llm"
	"github.com/culthera/enrich/internal/model"
)

// candidateMaxTokens bounds the classification completion.
const candidateMaxTokens = 600

// candidateTemperature keeps candidate generation focused.
const candidateTemperature = 0.2

// Validator confirms candidate notations against the vocabulary service.
type Validator interface {
	Lookup(ctx context.Context, notation string) model.LookupResult
}

// Searcher finds candidate notations for a search term. Used to seed the
// candidate pool when a search endpoint is configured.
type Searcher interface {
	Search(ctx context.Context, term, lang string) ([]model.Candidate, error)
}

// Classifier turns a metadata object into a ranked list of Iconclass
// subject entries. It is stateless across calls: each ClassifyObject
// invocation is independent and safe to run concurrently with others.
type Classifier struct {
	cfg       model.IconclassConfig
	provider  llm.Provider
	validator Validator
	searcher  Searcher
	logf      func(format string, args ...interface{})
}

// NewClassifier creates a classifier. provider may be nil (LLM disabled),
// validator is ignored unless cfg.Validate is set, searcher is ignored
// unless cfg.SearchURL is set, and logf defaults to stderr.
func NewClassifier(cfg model.IconclassConfig, provider llm.Provider, validator Validator, searcher Searcher, logf func(format string, args ...interface{})) *Classifier {
	if logf == nil {
		logf = func(format string, args ...interface{}) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		}
	}
	return &Classifier{
		cfg:       cfg,
		provider:  provider,
		validator: validator,
		searcher:  searcher,
		logf:      logf,
	}
}

// ClassifyObject runs the full pipeline: keywords, candidate generation,
// optional validation, diversity filtering and top-K selection. It never
// returns an error: every failure mode degrades to fewer or zero subjects
// and is logged with the object identifier, stage and cause.
func (c *Classifier) ClassifyObject(ctx context.Context, obj model.Object) []model.SubjectEntry {
	if !c.cfg.Enable {
		return nil
	}

	keywords := ExtractKeywords(obj)

	pool := c.searchCandidates(ctx, obj, keywords)
	pool = mergeCandidates(pool, c.generateCandidates(ctx, obj, keywords))
	if len(pool) == 0 {
		return []model.SubjectEntry{}
	}

	if c.cfg.Validate && c.validator != nil {
		pool = c.validateCandidates(ctx, obj, pool)
	}

	pool = Diversify(pool, c.maxPerDivision())
	pool = Select(pool, c.topK())

	entries := make([]model.SubjectEntry, 0, len(pool))
	for _, cand := range pool {
		entries = append(entries, model.SubjectEntry{
			ValueURI:   model.NotationURI(cand.Notation),
			Notation:   cand.Notation,
			PrefLabel:  cand.Labels,
			Confidence: math.Round(cand.Confidence*100) / 100,
			Scheme:     model.SchemeIconclass,
			Validated:  cand.Validated,
		})
	}
	return entries
}

// generateCandidates performs the single LLM round-trip and parses the
// structured response. LLM failures degrade to an empty list.
func (c *Classifier) generateCandidates(ctx context.Context, obj model.Object, keywords []string) []model.Candidate {
	if c.provider == nil {
		return nil
	}

	prompt := BuildPrompt(obj, keywords, c.cfg.Language)
	resp, err := c.provider.Complete(ctx, llm.CompletionRequest{
		System:      SystemPrompt,
		Prompt:      prompt,
		MaxTokens:   candidateMaxTokens,
		Temperature: candidateTemperature,
	})
	if err != nil {
		c.logf("Warning: object %s: candidate generation failed: %v", obj.ID(), err)
		return nil
	}

	candidates := ParseCandidates(resp.Content, c.cfg.Language)
	if len(candidates) == 0 {
		c.logf("Warning: object %s: no usable candidates in LLM response (finish reason %q)", obj.ID(), resp.FinishReason)
	}
	return candidates
}

// searchCandidates seeds the pool from the configured search endpoint.
// Search failures only cost the affected term.
func (c *Classifier) searchCandidates(ctx context.Context, obj model.Object, keywords []string) []model.Candidate {
	if c.searcher == nil || c.cfg.SearchURL == "" {
		return nil
	}

	var pool []model.Candidate
	for _, term := range keywords {
		hits, err := c.searcher.Search(ctx, term, c.cfg.Language)
		if err != nil {
			c.logf("Warning: object %s: search for %q failed: %v", obj.ID(), term, err)
			continue
		}
		valid := hits[:0]
		for _, hit := range hits {
			if ValidNotation(hit.Notation) {
				valid = append(valid, hit)
			}
		}
		pool = mergeCandidates(pool, valid)
	}
	return pool
}

// validateCandidates drops notations the vocabulary service rejects and
// marks confirmed ones. An unreachable service passes candidates through
// unvalidated so the pipeline keeps functioning.
func (c *Classifier) validateCandidates(ctx context.Context, obj model.Object, pool []model.Candidate) []model.Candidate {
	validated := make([]model.Candidate, 0, len(pool))
	for _, cand := range pool {
		result := c.validator.Lookup(ctx, cand.Notation)
		switch result.Status {
		case model.LookupNotFound:
			c.logf("Warning: object %s: dropping unresolvable notation %s", obj.ID(), cand.Notation)
			continue
		case model.LookupResolvable:
			cand.Validated = true
			cand.Labels = cand.Labels.Merge(result.Labels)
		case model.LookupUnavailable:
			c.logf("Warning: object %s: vocabulary lookup unavailable for %s, passing through unvalidated", obj.ID(), cand.Notation)
		}
		validated = append(validated, cand)
	}
	return validated
}

func (c *Classifier) topK() int {
	switch {
	case c.cfg.TopK < 1:
		return 1
	case c.cfg.TopK > 10:
		return 10
	default:
		return c.cfg.TopK
	}
}

func (c *Classifier) maxPerDivision() int {
	if c.cfg.MaxPerDivision < 1 {
		return 2
	}
	return c.cfg.MaxPerDivision
}

// mergeCandidates unions two candidate lists, deduplicating by notation.
// The first occurrence keeps its position; the higher confidence wins and
// label maps are merged.
func mergeCandidates(base, extra []model.Candidate) []model.Candidate {
	if len(extra) == 0 {
		return base
	}

	index := make(map[string]int, len(base))
	for i, c := range base {
		index[c.Notation] = i
	}

	for _, c := range extra {
		if i, ok := index[c.Notation]; ok {
			if c.Confidence > base[i].Confidence {
				base[i].Confidence = c.Confidence
			}
			base[i].Labels = base[i].Labels.Merge(c.Labels)
			continue
		}
		index[c.Notation] = len(base)
		base = append(base, c)
	}
	return base
}
