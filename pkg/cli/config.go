package cli

import (
	"context"
	"errors"
	"os"

	"github.com/ikikae/inaka/pkg/adapter"
	"github.com/ikikae/inaka/pkg/rag"
	"github.com/ikikae/inaka/pkg/repository"
	"github.com/ikikae/inaka/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// config holds configuration values
type config struct {
	// Catalog
	spotsPath string
	dataDir   string

	// Index storage
	indexBucket string

	// LLM
	geminiAPIKey    string
	generativeModel string
	embeddingModel  string
	topK            int64

	// Misc
	configPath string
	logLevel   string
}

// fileConfig is the optional YAML config file. Flags and environment
// variables take precedence over it.
type fileConfig struct {
	Spots           string `yaml:"spots"`
	DataDir         string `yaml:"data_dir"`
	IndexBucket     string `yaml:"index_bucket"`
	GenerativeModel string `yaml:"generative_model"`
	EmbeddingModel  string `yaml:"embedding_model"`
	TopK            int64  `yaml:"top_k"`
}

// globalFlags returns common flags used across commands with destination config
func globalFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "spots",
			Aliases:     []string{"s"},
			Usage:       "Path to the tourist spot data file",
			Sources:     cli.EnvVars("INAKA_SPOTS"),
			Destination: &cfg.spotsPath,
		},
		&cli.StringFlag{
			Name:        "data-dir",
			Usage:       "Local directory holding the vector index",
			Sources:     cli.EnvVars("INAKA_DATA_DIR"),
			Destination: &cfg.dataDir,
		},
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to YAML config file",
			Sources:     cli.EnvVars("INAKA_CONFIG"),
			Destination: &cfg.configPath,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Sources:     cli.EnvVars("INAKA_LOG_LEVEL"),
			Destination: &cfg.logLevel,
		},
	}
}

// llmFlags returns flags for LLM-related configuration with destination config
func llmFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gemini-api-key",
			Usage:       "Gemini API key",
			Sources:     cli.EnvVars("GEMINI_API_KEY"),
			Destination: &cfg.geminiAPIKey,
		},
		&cli.StringFlag{
			Name:        "generative-model",
			Usage:       "Gemini model for answer generation",
			Sources:     cli.EnvVars("INAKA_GENERATIVE_MODEL"),
			Destination: &cfg.generativeModel,
		},
		&cli.StringFlag{
			Name:        "embedding-model",
			Usage:       "Gemini model for embeddings",
			Sources:     cli.EnvVars("INAKA_EMBEDDING_MODEL"),
			Destination: &cfg.embeddingModel,
		},
		&cli.StringFlag{
			Name:        "index-bucket",
			Usage:       "Cloud Storage bucket for the vector index (local directory when empty)",
			Sources:     cli.EnvVars("INAKA_INDEX_BUCKET"),
			Destination: &cfg.indexBucket,
		},
		&cli.IntFlag{
			Name:        "top-k",
			Aliases:     []string{"k"},
			Usage:       "Number of documents retrieved per question",
			Sources:     cli.EnvVars("INAKA_TOP_K"),
			Destination: &cfg.topK,
		},
	}
}

// setup merges the optional config file under flag values and attaches the
// logger to the context.
func (cfg *config) setup(ctx context.Context) (context.Context, error) {
	if cfg.configPath != "" {
		data, err := os.ReadFile(cfg.configPath)
		if err != nil {
			return ctx, goerr.Wrap(err, "failed to read config file", goerr.V("path", cfg.configPath))
		}
		var fc fileConfig
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return ctx, goerr.Wrap(err, "failed to parse config file", goerr.V("path", cfg.configPath))
		}

		if cfg.spotsPath == "" {
			cfg.spotsPath = fc.Spots
		}
		if cfg.dataDir == "" {
			cfg.dataDir = fc.DataDir
		}
		if cfg.indexBucket == "" {
			cfg.indexBucket = fc.IndexBucket
		}
		if cfg.generativeModel == "" {
			cfg.generativeModel = fc.GenerativeModel
		}
		if cfg.embeddingModel == "" {
			cfg.embeddingModel = fc.EmbeddingModel
		}
		if cfg.topK == 0 {
			cfg.topK = fc.TopK
		}
	}

	if cfg.spotsPath == "" {
		cfg.spotsPath = "tourist_spots.json"
	}
	if cfg.dataDir == "" {
		cfg.dataDir = "."
	}
	if cfg.topK == 0 {
		cfg.topK = rag.DefaultTopK
	}

	logger := logging.New(cfg.logLevel, os.Stderr)
	return logging.With(ctx, logger), nil
}

// newRepository creates a new repository instance
func (cfg *config) newRepository() (repository.Repository, error) {
	repo, err := repository.NewJSONFile(cfg.spotsPath)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create repository")
	}
	return repo, nil
}

// newGemini creates a new Gemini adapter instance
func (cfg *config) newGemini(ctx context.Context) (*adapter.GeminiClient, error) {
	if cfg.geminiAPIKey == "" {
		return nil, goerr.New("gemini-api-key is required (set GEMINI_API_KEY)")
	}

	var opts []adapter.GeminiOption
	if cfg.generativeModel != "" {
		opts = append(opts, adapter.WithGenerativeModel(cfg.generativeModel))
	}
	if cfg.embeddingModel != "" {
		opts = append(opts, adapter.WithEmbeddingModel(cfg.embeddingModel))
	}

	gemini, err := adapter.NewGemini(ctx, cfg.geminiAPIKey, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create gemini client")
	}
	return gemini, nil
}

// newStorage creates the index blob storage. A bucket name selects Cloud
// Storage; otherwise the local data directory is used.
func (cfg *config) newStorage(ctx context.Context) (adapter.Storage, error) {
	if cfg.indexBucket != "" {
		st, err := adapter.NewCloudStorage(ctx, cfg.indexBucket)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create cloud storage")
		}
		return st, nil
	}
	return adapter.NewFileStorage(cfg.dataDir), nil
}

// isNotFound reports whether err is a missing-record error.
func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrSpotNotFound)
}
