package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/culthera/enrich/internal/model"
	"github.com/culthera/enrich/internal/pipeline"
	"github.com/culthera/enrich/internal/worker"
)

var (
	outputPath     string
	timeout        time.Duration
	userAgent      string
	maxBytes       int64
	concurrency    int
	llmProvider    string
	llmModel       string
	noIconclass    bool
	topK           int
	labelLang      string
	noValidate     bool
	searchURL      string
	maxPerDivision int
)

// enhanceCmd represents the enhance command
var enhanceCmd = &cobra.Command{
	Use:   "enhance <source>",
	Short: "Enhance a metadata feed with alt text and Iconclass subjects",
	Long: `Enhance loads a Dublin Core metadata feed (local JSON file or URL),
generates WCAG-compliant German alt text for each object image and
classifies each object with Iconclass subject notations, then writes
the result as a JSON-LD document.

Example:
  enrich enhance metadata.json
  enrich enhance https://example.org/assets/data/metadata.json --output enhanced.jsonld
  enrich enhance metadata.json --top-k 3 --lang en --no-validate
  enrich enhance metadata.json --llm-provider ollama --llm-model llava`,
	Args: cobra.ExactArgs(1),
	RunE: runEnhance,
}

func init() {
	rootCmd.AddCommand(enhanceCmd)

	// Output flags
	enhanceCmd.Flags().StringVar(&outputPath, "output", "", "output JSON-LD path (default: derived from source)")

	// HTTP flags
	enhanceCmd.Flags().DurationVar(&timeout, "timeout", 60*time.Second, "timeout per HTTP request")
	enhanceCmd.Flags().StringVar(&userAgent, "ua", "Enrich/0.1 (+https://github.com/culthera/enrich)", "HTTP User-Agent")
	enhanceCmd.Flags().Int64Var(&maxBytes, "max-bytes", 20_000_000, "max response bytes to read")

	// Concurrency flags
	enhanceCmd.Flags().IntVar(&concurrency, "concurrency", 1, "number of objects enhanced in parallel")

	// LLM flags
	enhanceCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, anthropic, ollama)")
	enhanceCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name (provider default when empty)")

	// Iconclass flags
	enhanceCmd.Flags().BoolVar(&noIconclass, "no-iconclass", false, "disable Iconclass subject classification")
	enhanceCmd.Flags().IntVar(&topK, "top-k", 5, "maximum subjects per object (1-10)")
	enhanceCmd.Flags().StringVar(&labelLang, "lang", "de", "preferred label language (de, en)")
	enhanceCmd.Flags().BoolVar(&noValidate, "no-validate", false, "skip notation validation against iconclass.org")
	enhanceCmd.Flags().StringVar(&searchURL, "search-url", "", "optional Iconclass term-search endpoint")
	enhanceCmd.Flags().IntVar(&maxPerDivision, "max-per-division", 2, "max subjects sharing an Iconclass main division")
}

// buildConfig assembles the runtime configuration from flags and the
// environment.
func buildConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	cfg.HTTP.Timeout = timeout
	cfg.HTTP.UserAgent = userAgent
	cfg.HTTP.MaxBodyBytes = maxBytes
	cfg.Concurrency.Objects = concurrency
	cfg.Output.Verbose = verbose

	cfg.Iconclass.Enable = !noIconclass
	cfg.Iconclass.TopK = topK
	cfg.Iconclass.Language = labelLang
	cfg.Iconclass.Validate = !noValidate
	cfg.Iconclass.SearchURL = searchURL
	cfg.Iconclass.MaxPerDivision = maxPerDivision

	cfg.LLM.Provider = llmProvider
	cfg.LLM.Model = llmModel

	// Get API key from environment
	switch llmProvider {
	case "openai":
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.LLM.APIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "anthropic", "claude":
		cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		if cfg.LLM.APIKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
	case "ollama":
		// Ollama doesn't need an API key
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
			cfg.LLM.BaseURL = baseURL
		}
	}

	return cfg, nil
}

func runEnhance(cmd *cobra.Command, args []string) error {
	source := args[0]
	ctx := context.Background()

	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	output := outputPath
	if output == "" {
		output = pipeline.OutputFilename(source)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Source:  %s\n", source)
		fmt.Fprintf(os.Stderr, "Output:  %s\n", output)
		fmt.Fprintf(os.Stderr, "LLM:     %s/%s\n", cfg.LLM.Provider, cfg.LLM.Model)
		fmt.Fprintln(os.Stderr)
	}

	loader := pipeline.NewLoader(cfg.HTTP.Timeout, cfg.HTTP.UserAgent, cfg.HTTP.MaxBodyBytes)
	feed, err := loader.Load(ctx, source)
	if err != nil {
		return err
	}

	if len(feed.Objects) == 0 {
		return fmt.Errorf("no objects in %s", source)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Loaded %d objects\n", len(feed.Objects))
	}

	enhancer, err := pipeline.NewEnhancer(cfg)
	if err != nil {
		return err
	}

	processor := worker.NewBatchProcessor(enhancer, cfg.Concurrency.Objects)
	results := processor.ProcessObjects(ctx, feed.Objects)

	var records []model.EnhancedRecord
	failed := 0
	for _, result := range results {
		if result.Error != nil {
			failed++
			fmt.Fprintf(os.Stderr, "Warning: object %s: %v\n", result.ObjectID, result.Error)
			continue
		}
		records = append(records, *result.Record)
	}

	if err := pipeline.WriteDocument(records, output); err != nil {
		return err
	}

	fmt.Printf("✓ Enhanced %d/%d objects\n", len(records), len(feed.Objects))
	if failed > 0 {
		fmt.Printf("✗ %d objects failed (see warnings above)\n", failed)
	}
	fmt.Printf("✓ Wrote JSON-LD: %s\n", output)

	return nil
}
