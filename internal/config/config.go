package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-feed-nosql/internal/pkg/validate"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string `validate:"required"`
	AppEnv  string

	AWSRegion      string `validate:"required"`
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string

	DynamoTables DynamoTables

	// Feed tuning.
	FeedPageSize      int `validate:"gte=1,lte=100"` // default entries per feed page
	FanoutConcurrency int `validate:"gte=1"`         // concurrent per-recipient writes
	FanoutRatePerSec  int `validate:"gte=0"`         // 0 disables the write throttle

	StoreCallTimeout time.Duration `validate:"gt=0"` // per-call DynamoDB timeout

	// Collaborator services. Empty URLs leave the corresponding resolver
	// unwired; the host then supplies its own implementation.
	FriendsServiceURL string
	PostsServiceURL   string
	CollabTimeout     time.Duration `validate:"gt=0"`

	SNSRegion   string
	SNSTopicARN string // empty disables feed event publishing

	AllowedOrigins []string // CORS allowed origins for the ops endpoints
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	UnseenFeed          string
	SeenFeed            string
	InteractionCounters string
	InteractionMeta     string
}

// Load reads all configuration from environment variables and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),
		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			UnseenFeed:          getEnv("DYNAMO_TABLE_UNSEEN_FEED", "unseen_feed"),
			SeenFeed:            getEnv("DYNAMO_TABLE_SEEN_FEED", "seen_feed"),
			InteractionCounters: getEnv("DYNAMO_TABLE_INTERACTION_COUNTERS", "interaction_counters"),
			InteractionMeta:     getEnv("DYNAMO_TABLE_INTERACTION_META", "interaction_meta"),
		},
		FeedPageSize:      getEnvInt("FEED_PAGE_SIZE", 10),
		FanoutConcurrency: getEnvInt("FANOUT_CONCURRENCY", 8),
		FanoutRatePerSec:  getEnvInt("FANOUT_RATE_PER_SEC", 0),
		StoreCallTimeout: time.Duration(getEnvInt("STORE_CALL_TIMEOUT_MS", 5000)) * time.Millisecond,
		FriendsServiceURL: getEnv("FRIENDS_SERVICE_URL", ""),
		PostsServiceURL:   getEnv("POSTS_SERVICE_URL", ""),
		CollabTimeout:     time.Duration(getEnvInt("COLLAB_TIMEOUT_MS", 3000)) * time.Millisecond,
		SNSRegion:   getEnv("SNS_REGION", "us-east-1"),
		SNSTopicARN: getEnv("SNS_FEED_TOPIC_ARN", ""),
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
