package aws

import (
	"context"
	"fmt"

	"sqs-output/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

// LoadConfig builds the AWS configuration for the output.
// Static credentials are used when configured, otherwise the default
// credential chain applies (environment variables, shared files, IAM roles).
func LoadConfig(ctx context.Context, output config.OutputConfig) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(output.Region),
	}

	if output.AccessKeyID != "" && output.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(output.AccessKeyID, output.SecretAccessKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return cfg, nil
}
