package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/ikikae/inaka/pkg/model"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func reviewCommand() *cli.Command {
	var (
		cfg     config
		spotID  string
		message string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "spot-id",
			Aliases:     []string{"i"},
			Usage:       "Spot to review",
			Sources:     cli.EnvVars("INAKA_SPOT_ID"),
			Destination: &spotID,
			Required:    true,
		},
		&cli.StringFlag{
			Name:        "message",
			Aliases:     []string{"m"},
			Usage:       "Review text",
			Destination: &message,
			Required:    true,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "review",
		Usage: "Add a review to a spot",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if strings.TrimSpace(message) == "" {
				return goerr.New("review text is empty")
			}

			ctx, err := cfg.setup(ctx)
			if err != nil {
				return err
			}

			repo, err := cfg.newRepository()
			if err != nil {
				return err
			}

			review, err := repo.AddReview(ctx, model.SpotID(spotID), message)
			if err != nil {
				if isNotFound(err) {
					return goerr.New("spot not found", goerr.V("id", spotID))
				}
				return goerr.Wrap(err, "failed to save review")
			}

			fmt.Fprintf(c.Root().Writer, "Review saved for %s at %s\n", spotID, review.Timestamp)
			return nil
		},
	}
}
