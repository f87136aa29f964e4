package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"
)

const (
	envVarsPrefix    = "/notesync/prod/"
	defaultSSMRegion = "us-east-2"
)

type Config struct {
	Port             string        `validate:"required,numeric"`
	Env              string        `validate:"required"`
	DatabasePath     string        `validate:"required"`
	SyncToken        string        `validate:"required"`
	BodyLimit        string        `validate:"required"`
	ConflictPolicy   string        `validate:"oneof=arrival newer"`
	RateLimitRPS     float64       `validate:"gte=0"`
	LogLevel         string        `validate:"oneof=debug info warn error off"`
	S3Bucket         string
	S3Region         string        `validate:"required_with=S3Bucket"`
	SnapshotInterval time.Duration `validate:"gt=0"`
}

// Load hydrates the environment (SSM in production, .env otherwise), reads
// the configuration out of it and validates the result.
func Load(ctx context.Context, validate *validator.Validate) (*Config, error) {
	if os.Getenv("GO_ENV") == "production" {
		if err := loadProdEnv(ctx); err != nil {
			return nil, err
		}
	} else if err := godotenv.Load(); err != nil {
		log.Warnf("no .env file loaded, using process environment: %v", err)
	}

	cfg, err := FromEnv()
	if err != nil {
		return nil, err
	}

	if err = validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// FromEnv reads the configuration out of the process environment, applying
// defaults for everything but SYNC_TOKEN.
func FromEnv() (*Config, error) {
	rps, err := strconv.ParseFloat(getEnv("RATE_LIMIT_RPS", "20"), 64)
	if err != nil {
		return nil, fmt.Errorf("RATE_LIMIT_RPS: %w", err)
	}

	interval, err := time.ParseDuration(getEnv("SNAPSHOT_INTERVAL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("SNAPSHOT_INTERVAL: %w", err)
	}

	return &Config{
		Port:             getEnv("PORT", "7070"),
		Env:              getEnv("GO_ENV", "development"),
		DatabasePath:     getEnv("DATABASE_PATH", "database.db"),
		SyncToken:        os.Getenv("SYNC_TOKEN"),
		BodyLimit:        getEnv("BODY_LIMIT", "30M"),
		ConflictPolicy:   getEnv("CONFLICT_POLICY", "arrival"),
		RateLimitRPS:     rps,
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		S3Bucket:         os.Getenv("S3_BUCKET_NAME"),
		S3Region:         os.Getenv("AWS_S3_REGION"),
		SnapshotInterval: interval,
	}, nil
}

// ParseLogLevel maps LOG_LEVEL onto gommon levels, unknown values mean info.
func ParseLogLevel(level string) log.Lvl {
	switch level {
	case "debug":
		return log.DEBUG
	case "warn":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	default:
		return log.INFO
	}
}

func loadProdEnv(ctx context.Context) error {
	region := getEnv("AWS_REGION", defaultSSMRegion)
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return fmt.Errorf("unable to load SDK config: %w", err)
	}

	client := ssm.NewFromConfig(cfg)
	paginator := ssm.NewGetParametersByPathPaginator(client, &ssm.GetParametersByPathInput{
		Path:           aws.String(envVarsPrefix),
		WithDecryption: aws.Bool(true),
		Recursive:      aws.Bool(true),
	})

	prefixLength := len(envVarsPrefix)
	loaded := 0
	for paginator.HasMorePages() {
		out, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("unable to load prod environment: %w", err)
		}

		// Export vars
		for _, param := range out.Parameters {
			name := aws.ToString(param.Name)
			if len(name) <= prefixLength {
				continue
			}

			if err := os.Setenv(name[prefixLength:], aws.ToString(param.Value)); err != nil {
				return fmt.Errorf("unable to set environment variable: %w", err)
			}
			loaded++
		}
	}

	log.Debugf("loaded %d prod environment variables", loaded)
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
