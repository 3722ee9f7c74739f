package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/ikikae/inaka/pkg/model"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func showCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:      "show",
		Usage:     "Show a spot with its reviews",
		ArgsUsage: "<spot-id>",
		Flags:     globalFlags(&cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			id := c.Args().First()
			if id == "" {
				return goerr.New("spot-id is required")
			}

			ctx, err := cfg.setup(ctx)
			if err != nil {
				return err
			}

			repo, err := cfg.newRepository()
			if err != nil {
				return err
			}

			spot, err := repo.GetSpot(ctx, model.SpotID(id))
			if err != nil {
				if isNotFound(err) {
					return goerr.New("spot not found", goerr.V("id", id))
				}
				return err
			}

			w := c.Root().Writer
			fmt.Fprintf(w, "%s (%s)\n", spot.Name, spot.ID)
			if spot.Category != "" {
				fmt.Fprintf(w, "Category: %s\n", spot.Category)
			}
			if spot.ShortDescription != "" {
				fmt.Fprintf(w, "%s\n", spot.ShortDescription)
			}
			if len(spot.Highlights) > 0 {
				fmt.Fprintf(w, "Highlights: %s\n", strings.Join(spot.Highlights, ", "))
			}
			if len(spot.Coordinates) == 2 {
				fmt.Fprintf(w, "Coordinates: %.4f, %.4f\n", spot.Coordinates[0], spot.Coordinates[1])
			}

			fmt.Fprintln(w)
			if len(spot.Reviews) == 0 {
				fmt.Fprintf(w, "No reviews yet\n")
				return nil
			}

			fmt.Fprintf(w, "Reviews (%d):\n", len(spot.Reviews))
			for _, review := range spot.Reviews {
				fmt.Fprintf(w, "- [%s] %s\n", review.Timestamp, review.Content)
			}
			return nil
		},
	}
}
