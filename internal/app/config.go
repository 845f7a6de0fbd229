package app

import (
	"strings"
	"time"

	"github.com/yungbote/nutrigraph-worker/internal/logger"
	"github.com/yungbote/nutrigraph-worker/internal/utils"
)

// Config is the full runtime configuration of the worker. It is loaded once
// in main and injected; nothing below cmd reads the environment directly.
type Config struct {
	BatchSize       int
	MaxAttempts     int
	PollInterval    time.Duration
	StaleProcessing time.Duration
	Concurrency     int

	// WatchedTables and WatchedAggregateTypes bound the claim filter; events
	// from other tables stay untouched for other consumers.
	WatchedTables         []string
	WatchedAggregateTypes []string
}

// DefaultWatchedTables is every relational table whose mutation can change a
// customer aggregate's projected shape.
var DefaultWatchedTables = []string{
	"households",
	"household_preferences",
	"household_budgets",
	"b2c_customers",
	"b2c_customer_health_profiles",
	"b2c_customer_health_conditions",
	"b2c_customer_allergens",
	"b2c_customer_dietary_preferences",
	"vendors",
	"b2b_customers",
	"b2b_customer_health_profiles",
	"b2b_customer_health_conditions",
	"b2b_customer_allergens",
	"b2b_customer_dietary_preferences",
}

var DefaultWatchedAggregateTypes = []string{
	"b2c_customer",
	"b2b_customer",
	"household",
}

func LoadConfig(log *logger.Logger) Config {
	batchSize := utils.GetEnvAsInt("OUTBOX_BATCH_SIZE", 50, log)
	maxAttempts := utils.GetEnvAsInt("OUTBOX_MAX_ATTEMPTS", 5, log)
	pollSeconds := utils.GetEnvAsInt("OUTBOX_POLL_INTERVAL_SECONDS", 5, log)
	staleMinutes := utils.GetEnvAsInt("OUTBOX_STALE_PROCESSING_MINUTES", 30, log)
	concurrency := utils.GetEnvAsInt("WORKER_CONCURRENCY", 1, log)
	if concurrency < 1 {
		concurrency = 1
	}

	return Config{
		BatchSize:             batchSize,
		MaxAttempts:           maxAttempts,
		PollInterval:          time.Duration(pollSeconds) * time.Second,
		StaleProcessing:       time.Duration(staleMinutes) * time.Minute,
		Concurrency:           concurrency,
		WatchedTables:         splitCSVEnv("OUTBOX_WATCHED_TABLES", DefaultWatchedTables, log),
		WatchedAggregateTypes: splitCSVEnv("OUTBOX_WATCHED_AGGREGATE_TYPES", DefaultWatchedAggregateTypes, log),
	}
}

func splitCSVEnv(key string, defaults []string, log *logger.Logger) []string {
	raw := utils.GetEnv(key, "", log)
	if strings.TrimSpace(raw) == "" {
		return defaults
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaults
	}
	return out
}
