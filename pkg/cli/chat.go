package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/briandowns/spinner"
	"github.com/chzyer/readline"
	"github.com/ikikae/inaka/pkg/rag"
	"github.com/ikikae/inaka/pkg/usecase/chat"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func chatCommand() *cli.Command {
	var cfg config

	flags := globalFlags(&cfg)
	flags = append(flags, llmFlags(&cfg)...)

	return &cli.Command{
		Name:  "chat",
		Usage: "Ask the AI guide about tourist spots",
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

			sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
			sp.Suffix = " Preparing AI guide..."
			sp.Start()
			index, err := rag.Ensure(ctx, storage, gemini, spots)
			sp.Stop()
			if err != nil {
				return goerr.Wrap(err, "failed to prepare vector index")
			}

			session := chat.New(chat.NewInput{
				Gemini:    gemini,
				Retriever: rag.NewRetriever(gemini, index),
				TopK:      int(cfg.topK),
			})

			rl, err := readline.New("> ")
			if err != nil {
				return goerr.Wrap(err, "failed to open terminal")
			}
			defer rl.Close()

			fmt.Fprintf(c.Root().Writer, "Chat session started. Type 'exit' to quit.\n")

			for {
				line, err := rl.Readline()
				if err == readline.ErrInterrupt {
					continue
				}
				if err == io.EOF {
					break
				}

				if line == "exit" {
					break
				}
				if line == "" {
					continue
				}

				for fragment, err := range session.Ask(ctx, line) {
					if err != nil {
						fmt.Fprintf(c.Root().Writer, "\nSorry, that went wrong: %v\nPlease ask again.\n", err)
						break
					}
					fmt.Fprint(c.Root().Writer, fragment)
				}
				fmt.Fprintln(c.Root().Writer)
			}

			fmt.Fprintf(c.Root().Writer, "\nChat session completed\n")
			return nil
		},
	}
}
