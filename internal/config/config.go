package config

import (
	"fmt"
	"time"

	"sqs-output/pkg/record"
	"sqs-output/pkg/redis"
	"sqs-output/pkg/resource"
	"sqs-output/pkg/sqs"
)

const masked = "*****"

// maxDelaySeconds is the largest per-message delay SQS accepts
const maxDelaySeconds = 900

// OutputConfig holds the SQS output settings
type OutputConfig struct {
	QueueName       string `json:"queueName"`
	QueueURL        string `json:"queueUrl"`
	CreateQueue     bool   `json:"createQueue"`
	Region          string `json:"region"`
	Endpoint        string `json:"endpoint"`
	DelaySeconds    int    `json:"delaySeconds"`
	IncludeTag      bool   `json:"includeTag"`
	TagFieldName    string `json:"tagFieldName"`
	IncludeTime     bool   `json:"includeTime"`
	TimeFieldName   string `json:"timeFieldName"`
	MessageGroupID  string `json:"messageGroupId"`
	AccessKeyID     string `json:"accessKeyId"`
	SecretAccessKey string `json:"secretAccessKey"`
}

// BufferConfig holds the upstream chunk buffer settings
type BufferConfig struct {
	ChunkRecords  int           `json:"chunkRecords"`
	ChunkBytes    int           `json:"chunkBytes"`
	MaxChunks     int           `json:"maxChunks"`
	FlushInterval time.Duration `json:"flushInterval"`
	RetryLimit    int           `json:"retryLimit"`
}

// ServerConfig holds the HTTP ingestion server settings
type ServerConfig struct {
	Port        string `json:"port"`
	ContextPath string `json:"contextPath"`
}

// RedisSourceConfig holds the Redis list source settings
type RedisSourceConfig struct {
	Enabled   bool          `json:"enabled"`
	Host      string        `json:"host"`
	Port      int           `json:"port"`
	Password  string        `json:"password"`
	Database  int           `json:"database"`
	Key       string        `json:"key"`
	Tag       string        `json:"tag"`
	Interval  time.Duration `json:"interval"`
	BatchSize int           `json:"batchSize"`
}

// Config is the full application configuration
type Config struct {
	Output OutputConfig      `json:"output"`
	Buffer BufferConfig      `json:"buffer"`
	Server ServerConfig      `json:"server"`
	Redis  RedisSourceConfig `json:"redis"`
}

func setDefaults() {
	resource.SetDefault("app.output.sqs.create-queue", true)
	resource.SetDefault("app.output.sqs.region", "ap-northeast-1")
	resource.SetDefault("app.output.sqs.delay-seconds", 0)
	resource.SetDefault("app.output.sqs.include-tag", true)
	resource.SetDefault("app.output.sqs.tag-field-name", record.DefaultTagField)
	resource.SetDefault("app.output.sqs.include-time", true)
	resource.SetDefault("app.output.sqs.time-field-name", record.DefaultTimeField)

	resource.SetDefault("app.buffer.chunk-records", 1000)
	resource.SetDefault("app.buffer.chunk-bytes", 8*1024*1024)
	resource.SetDefault("app.buffer.max-chunks", 64)
	resource.SetDefault("app.buffer.flush-interval", "5s")
	resource.SetDefault("app.buffer.retry-limit", 3)

	resource.SetDefault("app.server.port", "8080")
	resource.SetDefault("app.server.context-path", "/sqs-output")

	resource.SetDefault("app.source.redis.enabled", false)
	resource.SetDefault("app.source.redis.host", "localhost")
	resource.SetDefault("app.source.redis.port", 6379)
	resource.SetDefault("app.source.redis.database", 0)
	resource.SetDefault("app.source.redis.interval", "1s")
	resource.SetDefault("app.source.redis.batch-size", 100)
}

// Load builds the configuration from the loaded properties
func Load() *Config {
	setDefaults()

	return &Config{
		Output: OutputConfig{
			QueueName:       resource.GetString("app.output.sqs.queue-name"),
			QueueURL:        resource.GetString("app.output.sqs.queue-url"),
			CreateQueue:     resource.GetBool("app.output.sqs.create-queue"),
			Region:          resource.GetString("app.output.sqs.region"),
			Endpoint:        resource.GetString("app.output.sqs.endpoint"),
			DelaySeconds:    resource.GetInt("app.output.sqs.delay-seconds"),
			IncludeTag:      resource.GetBool("app.output.sqs.include-tag"),
			TagFieldName:    resource.GetString("app.output.sqs.tag-field-name"),
			IncludeTime:     resource.GetBool("app.output.sqs.include-time"),
			TimeFieldName:   resource.GetString("app.output.sqs.time-field-name"),
			MessageGroupID:  resource.GetString("app.output.sqs.message-group-id"),
			AccessKeyID:     resource.GetString("app.output.sqs.access-key-id"),
			SecretAccessKey: resource.GetString("app.output.sqs.secret-access-key"),
		},
		Buffer: BufferConfig{
			ChunkRecords:  resource.GetInt("app.buffer.chunk-records"),
			ChunkBytes:    int(resource.GetSizeInBytes("app.buffer.chunk-bytes")),
			MaxChunks:     resource.GetInt("app.buffer.max-chunks"),
			FlushInterval: resource.GetDuration("app.buffer.flush-interval"),
			RetryLimit:    resource.GetInt("app.buffer.retry-limit"),
		},
		Server: ServerConfig{
			Port:        resource.GetString("app.server.port"),
			ContextPath: resource.GetString("app.server.context-path"),
		},
		Redis: RedisSourceConfig{
			Enabled:   resource.GetBool("app.source.redis.enabled"),
			Host:      resource.GetString("app.source.redis.host"),
			Port:      resource.GetInt("app.source.redis.port"),
			Password:  resource.GetString("app.source.redis.password"),
			Database:  resource.GetInt("app.source.redis.database"),
			Key:       resource.GetString("app.source.redis.key"),
			Tag:       resource.GetString("app.source.redis.tag"),
			Interval:  resource.GetDuration("app.source.redis.interval"),
			BatchSize: resource.GetInt("app.source.redis.batch-size"),
		},
	}
}

// Validate checks the configuration before any record is accepted
func (c *Config) Validate() error {
	if err := c.Output.Validate(); err != nil {
		return err
	}
	if c.Buffer.ChunkRecords < 1 {
		return &sqs.ConfigError{Field: "buffer.chunk-records", Reason: "must be greater than 0"}
	}
	if c.Buffer.ChunkBytes < 1 {
		return &sqs.ConfigError{Field: "buffer.chunk-bytes", Reason: "must be greater than 0"}
	}
	if c.Buffer.MaxChunks < 1 {
		return &sqs.ConfigError{Field: "buffer.max-chunks", Reason: "must be greater than 0"}
	}
	if c.Buffer.FlushInterval <= 0 {
		return &sqs.ConfigError{Field: "buffer.flush-interval", Reason: "must be positive"}
	}
	if c.Buffer.RetryLimit < 0 {
		return &sqs.ConfigError{Field: "buffer.retry-limit", Reason: "must be non-negative"}
	}
	if c.Redis.Enabled {
		if c.Redis.Key == "" {
			return &sqs.ConfigError{Field: "source.redis.key", Reason: "required when the redis source is enabled"}
		}
		if c.Redis.Interval <= 0 {
			return &sqs.ConfigError{Field: "source.redis.interval", Reason: "must be positive"}
		}
		if c.Redis.BatchSize < 1 {
			return &sqs.ConfigError{Field: "source.redis.batch-size", Reason: "must be greater than 0"}
		}
		if err := c.Redis.RedisConfig().Validate(); err != nil {
			return &sqs.ConfigError{Field: "source.redis", Reason: err.Error()}
		}
	}
	return nil
}

// Validate checks the SQS output settings
func (c *OutputConfig) Validate() error {
	if c.QueueName == "" && c.QueueURL == "" {
		return &sqs.ConfigError{Field: "queue-name", Reason: "queue-name or queue-url is required"}
	}
	if c.DelaySeconds < 0 || c.DelaySeconds > maxDelaySeconds {
		return &sqs.ConfigError{Field: "delay-seconds", Reason: fmt.Sprintf("must be between 0 and %d", maxDelaySeconds)}
	}
	if c.IncludeTag && c.TagFieldName == "" {
		return &sqs.ConfigError{Field: "tag-field-name", Reason: "required when include-tag is set"}
	}
	if (c.AccessKeyID == "") != (c.SecretAccessKey == "") {
		return &sqs.ConfigError{Field: "access-key-id", Reason: "access-key-id and secret-access-key must be set together"}
	}
	return sqs.ValidateGroupID(c.QueueName, c.QueueURL, c.MessageGroupID)
}

// ResolverConfig returns the queue lookup settings
func (c *OutputConfig) ResolverConfig() sqs.ResolverConfig {
	return sqs.ResolverConfig{
		QueueName:   c.QueueName,
		QueueURL:    c.QueueURL,
		CreateQueue: c.CreateQueue,
	}
}

// EntryOptions returns the values stamped on every entry sent to the queue
func (c *OutputConfig) EntryOptions() sqs.EntryOptions {
	return sqs.EntryOptions{
		IDPrefix:     c.TagFieldName,
		DelaySeconds: int32(c.DelaySeconds),
		GroupID:      c.MessageGroupID,
	}
}

// Serializer returns the record serializer for this output
func (c *OutputConfig) Serializer() record.Serializer {
	return record.Serializer{
		IncludeTag:  c.IncludeTag,
		TagField:    c.TagFieldName,
		IncludeTime: c.IncludeTime,
		TimeField:   c.TimeFieldName,
	}
}

// RedisConfig returns the client settings for the Redis list source
func (c *RedisSourceConfig) RedisConfig() *redis.Config {
	cfg := redis.NewRedisConfig()
	cfg.Host = c.Host
	cfg.Port = c.Port
	cfg.Password = c.Password
	cfg.Database = c.Database
	return cfg
}

// Masked returns a copy safe for logging, with secrets replaced
func (c Config) Masked() Config {
	if c.Output.AccessKeyID != "" {
		c.Output.AccessKeyID = masked
	}
	if c.Output.SecretAccessKey != "" {
		c.Output.SecretAccessKey = masked
	}
	if c.Redis.Password != "" {
		c.Redis.Password = masked
	}
	return c
}
