package cli

import (
	"context"

	"github.com/urfave/cli/v3"
)

type Error struct {
	Code    int
	Message string
}

func Run(ctx context.Context, argv []string) *Error {
	cmd := &cli.Command{
		Name:  "inaka",
		Usage: "Rural Japan tourist catalog with a retrieval-augmented chat guide",
		Commands: []*cli.Command{
			chatCommand(),
			searchCommand(),
			indexCommand(),
			listCommand(),
			showCommand(),
			reviewCommand(),
		},
	}

	if err := cmd.Run(ctx, argv); err != nil {
		return &Error{
			Code:    1,
			Message: err.Error(),
		}
	}

	return nil
}
