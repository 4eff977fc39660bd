package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"sqs-output/configs"
	"sqs-output/internal/config"
	"sqs-output/internal/domain/gateway/queue"
	"sqs-output/internal/domain/usecase/forward"
	awsinfra "sqs-output/internal/infra/aws"
	"sqs-output/pkg/log"
	"sqs-output/pkg/msg"
	"sqs-output/pkg/resource"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var exampleUsage = strings.TrimSpace(`
  sqs-output serve --config configs/application.yml
  tail -f app.log | sqs-output pipe --tag app.access --chunk-records 500
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

// app holds what both commands share once the configuration is loaded
type app struct {
	cfg     *config.Config
	sender  queue.Sender
	useCase forward.UseCase
}

// bootstrap loads and validates the configuration, then wires the SQS output
func bootstrap(ctx context.Context, cfgPath string) (*app, error) {
	if configs.Env.MessagesPath != "" {
		if err := msg.Init(configs.Env.MessagesPath); err != nil {
			return nil, err
		}
	}

	if cfgPath == "" {
		cfgPath = resource.Path()
	}
	if err := resource.Load(cfgPath); err != nil {
		return nil, err
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log.Info(msg.GetMessage("app.config"), zap.Any("config", cfg.Masked()))

	awsCfg, err := awsinfra.LoadConfig(ctx, cfg.Output)
	if err != nil {
		return nil, err
	}

	sender := awsinfra.NewSQSSenderAdapter(awsinfra.NewSqsClient(awsCfg, cfg.Output.Endpoint), cfg.Output.ResolverConfig())
	return &app{
		cfg:     cfg,
		sender:  sender,
		useCase: forward.NewForwardUseCase(sender, cfg.Output.EntryOptions(), cfg.Output.Serializer()),
	}, nil
}

func main() {
	var cfgPath string

	root := &cobra.Command{
		Use:           "sqs-output",
		Short:         "Forward structured log records to an Amazon SQS queue in batches",
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", fmt.Sprintf("path to properties file (default: $PROPERTIES_FILE_PATH or %s)", resource.DefaultPath))

	root.AddCommand(newServeCommand(&cfgPath), newPipeCommand(&cfgPath))

	log.Info(msg.GetMessage("app.start"), zap.String("application", configs.Env.ApplicationName))
	if err := root.Execute(); err != nil {
		log.Error("sqs-output", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
	_ = log.Sync()
}
