package cli

import (
	"context"
	"fmt"

	"github.com/ikikae/inaka/pkg/rag"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func indexCommand() *cli.Command {
	var (
		cfg     config
		rebuild bool
	)

	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:        "rebuild",
			Aliases:     []string{"r"},
			Usage:       "Rebuild the index even if a usable one is persisted",
			Destination: &rebuild,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)

	return &cli.Command{
		Name:  "index",
		Usage: "Build or refresh the vector index over the spot catalog",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
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

			var index *rag.Index
			if rebuild {
				index, err = rag.Rebuild(ctx, storage, gemini, spots)
			} else {
				index, err = rag.Ensure(ctx, storage, gemini, spots)
			}
			if err != nil {
				return goerr.Wrap(err, "failed to build vector index")
			}

			fmt.Fprintf(c.Root().Writer, "Index ready: %d documents (model: %s)\n", index.Size(), index.EmbeddingModel())
			return nil
		},
	}
}
