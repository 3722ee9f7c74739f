package cli

import (
	"context"
	"fmt"

	"github.com/ikikae/inaka/pkg/rag"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func searchCommand() *cli.Command {
	var cfg config

	flags := globalFlags(&cfg)
	flags = append(flags, llmFlags(&cfg)...)

	return &cli.Command{
		Name:      "search",
		Usage:     "Find spots by semantic similarity to a query",
		ArgsUsage: "<query>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			query := c.Args().First()
			if query == "" {
				return goerr.New("query is required")
			}

			ctx, err := cfg.setup(ctx)
			if err != nil {
				return err
			}

			repo, err := cfg.newRepository()
			if err != nil {
				return err
			}

			gemini, err := cfg.newGemini(ctx)
			if err != nil {
				return err
			}

			storage, err := cfg.newStorage(ctx)
			if err != nil {
				return err
			}

			spots, err := repo.ListSpots(ctx)
			if err != nil {
				return err
			}

			index, err := rag.Ensure(ctx, storage, gemini, spots)
			if err != nil {
				return goerr.Wrap(err, "failed to prepare vector index")
			}

			retriever := rag.NewRetriever(gemini, index)
			results, err := retriever.Retrieve(ctx, query, int(cfg.topK))
			if err != nil {
				return goerr.Wrap(err, "failed to search spots")
			}

			if len(results) == 0 {
				fmt.Fprintf(c.Root().Writer, "No matching spots found\n")
				return nil
			}

			fmt.Fprintf(c.Root().Writer, "Found %d matching spots:\n\n", len(results))
			for i, r := range results {
				fmt.Fprintf(c.Root().Writer, "%d. %s (score: %.4f)\n", i+1, r.Document.Metadata["name"], r.Score)
				fmt.Fprintf(c.Root().Writer, "   %s\n\n", r.Document.Content)
			}

			return nil
		},
	}
}
