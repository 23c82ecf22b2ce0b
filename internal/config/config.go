package config

import (
	"os"
	"strconv"
	"strings"
)

// EnvFlagEnabled returns true when the environment variable exists and is not
// explicitly set to a falsey value ("0/false/no/off").
func EnvFlagEnabled(key string) bool {
	val, ok := os.LookupEnv(key)
	if !ok {
		return false
	}
	val = strings.TrimSpace(strings.ToLower(val))
	switch val {
	case "", "0", "false", "no", "off":
		return false
	default:
		return true
	}
}

func ParseBoolFlag(val string, defaultValue bool) bool {
	val = strings.TrimSpace(strings.ToLower(val))
	switch val {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return defaultValue
	}
}

// EnvFlagDefaultTrue returns true unless the env var is explicitly set to
// false/0/no/off.
func EnvFlagDefaultTrue(key string) bool {
	val, ok := os.LookupEnv(key)
	if !ok {
		return true
	}
	return ParseBoolFlag(val, true)
}

const maxGroupWorkersLimit = 100

// ResolveMaxGroupWorkers reads PIPEJOB_MAX_GROUP_WORKERS, the job-wide cap on
// per-group concurrency. It returns 0 for "no cap".
func ResolveMaxGroupWorkers() int {
	raw := strings.TrimSpace(os.Getenv("PIPEJOB_MAX_GROUP_WORKERS"))
	if raw == "" {
		return 0
	}

	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0
	}
	if value > maxGroupWorkersLimit {
		return maxGroupWorkersLimit
	}
	return value
}
