package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"sqs-output/internal/application/processor"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newPipeCommand(cfgPath *string) *cobra.Command {
	var (
		tag          string
		chunkRecords int
	)

	cmd := &cobra.Command{
		Use:   "pipe",
		Short: "Read newline-delimited JSON records from stdin and send them to SQS",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := bootstrap(ctx, *cfgPath)
			if err != nil {
				return err
			}

			// Flags override the buffer settings only when given explicitly
			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })
			if !changed["chunk-records"] {
				chunkRecords = a.cfg.Buffer.ChunkRecords
			}

			_, err = processor.NewLineProcessor(a.useCase, tag, chunkRecords).Process(ctx, os.Stdin)
			return err
		},
	}

	cmd.Flags().StringVar(&tag, "tag", "stdin", "tag attached to every record")
	cmd.Flags().IntVar(&chunkRecords, "chunk-records", 0, "records written per chunk (default: app.buffer.chunk-records)")
	return cmd
}
