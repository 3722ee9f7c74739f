package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

func listCommand() *cli.Command {
	var (
		cfg      config
		category string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "category",
			Usage:       "Only show spots in this category",
			Sources:     cli.EnvVars("INAKA_CATEGORY"),
			Destination: &category,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "list",
		Usage: "List tourist spots",
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

			spots, err := repo.ListSpots(ctx)
			if err != nil {
				return err
			}

			shown := 0
			for _, spot := range spots {
				if category != "" && spot.Category != category {
					continue
				}
				shown++

				fmt.Fprintf(c.Root().Writer, "%s  %s", spot.ID, spot.Name)
				if spot.Category != "" {
					fmt.Fprintf(c.Root().Writer, " [%s]", spot.Category)
				}
				fmt.Fprintln(c.Root().Writer)
				if spot.ShortDescription != "" {
					fmt.Fprintf(c.Root().Writer, "    %s\n", spot.ShortDescription)
				}
				if n := len(spot.Reviews); n > 0 {
					fmt.Fprintf(c.Root().Writer, "    %d review(s)\n", n)
				}
			}

			if shown == 0 {
				fmt.Fprintf(c.Root().Writer, "No spots found\n")
			}
			return nil
		},
	}
}
