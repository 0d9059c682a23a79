package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/culthera/enrich/internal/iconclass"
	"github.com/culthera/enrich/internal/llm"
	"github.com/culthera/enrich/internal/model"
	"github.com/culthera/enrich/internal/pipeline"
	"github.com/culthera/enrich/internal/vocab"
)

// classifyCmd represents the classify command
var classifyCmd = &cobra.Command{
	Use:   "classify <source>",
	Short: "Classify feed objects with Iconclass subjects only",
	Long: `Classify runs only the Iconclass subject classification for every
object in the feed and prints the results as JSON to stdout. Useful for
tuning top-k, diversity and validation settings without paying for
alt-text vision calls.

Example:
  enrich classify metadata.json
  enrich classify metadata.json --top-k 3 --no-validate`,
	Args: cobra.ExactArgs(1),
	RunE: runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)

	classifyCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, anthropic, ollama)")
	classifyCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name (provider default when empty)")
	classifyCmd.Flags().IntVar(&topK, "top-k", 5, "maximum subjects per object (1-10)")
	classifyCmd.Flags().StringVar(&labelLang, "lang", "de", "preferred label language (de, en)")
	classifyCmd.Flags().BoolVar(&noValidate, "no-validate", false, "skip notation validation against iconclass.org")
	classifyCmd.Flags().StringVar(&searchURL, "search-url", "", "optional Iconclass term-search endpoint")
	classifyCmd.Flags().IntVar(&maxPerDivision, "max-per-division", 2, "max subjects sharing an Iconclass main division")
}

func runClassify(cmd *cobra.Command, args []string) error {
	source := args[0]
	ctx := context.Background()

	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	loader := pipeline.NewLoader(cfg.HTTP.Timeout, cfg.HTTP.UserAgent, cfg.HTTP.MaxBodyBytes)
	feed, err := loader.Load(ctx, source)
	if err != nil {
		return err
	}

	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		return fmt.Errorf("initialize LLM provider: %w", err)
	}

	vocabClient := vocab.NewClient(vocab.Options{
		BaseURL:       cfg.Iconclass.BaseURL,
		SearchURL:     cfg.Iconclass.SearchURL,
		RatePerSecond: cfg.Concurrency.LookupRate,
		Burst:         cfg.Concurrency.LookupBurst,
		UserAgent:     cfg.HTTP.UserAgent,
	})

	classifier := iconclass.NewClassifier(cfg.Iconclass, provider, vocabClient, vocabClient, nil)

	output := make(map[string][]model.SubjectEntry, len(feed.Objects))
	for _, obj := range feed.Objects {
		if verbose {
			fmt.Fprintf(os.Stderr, "Classifying %s...\n", obj.ID())
		}
		output[obj.ID()] = classifier.ClassifyObject(ctx, obj)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
