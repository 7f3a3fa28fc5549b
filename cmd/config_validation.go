package cmd

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	errors "github.com/Laisky/errors/v2"
	gconfig "github.com/Laisky/go-config/v2"

	"github.com/Laisky/word-association/internal/global"
)

// configGetter retrieves raw configuration values by dotted key path.
type configGetter func(key string) any

// validateStartupConfig validates startup configuration from the shared config source.
func validateStartupConfig() error {
	return validateStartupConfigWithGetter(func(key string) any {
		return gconfig.S.Get(key)
	})
}

// validateStartupConfigWithGetter validates startup configuration via a key-value getter.
// Every problem is collected so one run reports all of them.
func validateStartupConfigWithGetter(get configGetter) error {
	if get == nil {
		return errors.New("config getter is nil")
	}

	validationErrs := make([]string, 0)

	validateRedisConfig(get, &validationErrs)
	validateStoreConfig(get, &validationErrs)
	validateEngineConfig(get, &validationErrs)
	validateGameConfig(get, &validationErrs)
	validateThrottleConfig(get, &validationErrs)
	validateWebConfig(get, &validationErrs)

	if len(validationErrs) == 0 {
		return nil
	}

	return errors.Errorf("invalid configuration:\n - %s", strings.Join(validationErrs, "\n - "))
}

func validateRedisConfig(get configGetter, errs *[]string) {
	validateOptionalIntMin(get, "settings.db.redis.db", 0, errs)
	validateOptionalStringNonEmpty(get, "settings.db.redis.addr", errs)
}

// validateStoreConfig checks the association table backend and its dial info.
func validateStoreConfig(get configGetter, errs *[]string) {
	validateOptionalStringNonEmpty(get, "settings.lwow.db.sqlite.path", errs)
	validateOptionalIntMin(get, "settings.lwow.cache.ttl_seconds", 0, errs)

	backend, ok := validateOptionalEnum(get, "settings.lwow.db.backend",
		[]string{global.BackendSqlite, global.BackendPostgres}, errs)
	if !ok || backend != global.BackendPostgres {
		return
	}

	validateRequiredString(get, "settings.lwow.db.postgres.addr", errs)
	validateRequiredString(get, "settings.lwow.db.postgres.dbname", errs)
	validateOptionalIntMin(get, "settings.lwow.db.postgres.port", 1, errs)
}

func validateEngineConfig(get configGetter, errs *[]string) {
	validateOptionalFloatRange(get, "settings.lwow.engine.p_two_hop", 0, 1, errs)
}

// validateGameConfig checks round count, session lifetime and where sessions live.
func validateGameConfig(get configGetter, errs *[]string) {
	validateOptionalIntMin(get, "settings.lwow.game.rounds", 1, errs)
	validateOptionalIntMin(get, "settings.lwow.game.session_ttl_minutes", 1, errs)

	backend, ok := validateOptionalEnum(get, "settings.lwow.game.session_backend",
		[]string{global.SessionBackendSQL, global.SessionBackendRedis}, errs)
	if ok && backend == global.SessionBackendRedis {
		validateRequiredString(get, "settings.db.redis.addr", errs)
	}
}

// validateThrottleConfig checks rates are not negative and bursts cover their
// effective rates, defaults included.
func validateThrottleConfig(get configGetter, errs *[]string) {
	pairs := []struct {
		rateKey, burstKey string
		defaultRate       int
	}{
		{"settings.lwow.throttle.total_per_sec", "settings.lwow.throttle.total_burst", 0},
		{"settings.lwow.throttle.client_per_sec", "settings.lwow.throttle.client_burst", global.DefaultClientPerSec},
	}

	validateOptionalIntMin(get, "settings.lwow.throttle.max_clients", 1, errs)
	for _, pair := range pairs {
		validateOptionalIntMin(get, pair.rateKey, 0, errs)
		validateOptionalIntMin(get, pair.burstKey, 0, errs)

		burstRaw := get(pair.burstKey)
		if burstRaw == nil {
			continue
		}
		burst, err := parseStrictInt(burstRaw)
		if err != nil {
			continue
		}

		rate := pair.defaultRate
		if rateRaw := get(pair.rateKey); rateRaw != nil {
			if rate, err = parseStrictInt(rateRaw); err != nil {
				continue
			}
		}
		if burst < rate {
			appendValidationError(errs, "%s must be >= %s (%d)", pair.burstKey, pair.rateKey, rate)
		}
	}
}

func validateWebConfig(get configGetter, errs *[]string) {
	raw := get("settings.web.allowed_origins")
	if raw == nil {
		return
	}

	hosts, ok := raw.([]any)
	if !ok {
		if strs, isStrs := raw.([]string); isStrs {
			for _, s := range strs {
				hosts = append(hosts, s)
			}
		} else {
			appendValidationError(errs, "settings.web.allowed_origins must be a list of hosts")
			return
		}
	}

	for i, h := range hosts {
		host, err := parseStrictString(h)
		if err != nil || !isValidHost(host) {
			appendValidationError(errs, "settings.web.allowed_origins[%d] must be a valid host", i)
		}
	}
}

// validateOptionalEnum validates an optionally configured string key against allowed values.
// It returns the normalized value and whether a valid value was configured.
func validateOptionalEnum(get configGetter, key string, allowed []string, errs *[]string) (string, bool) {
	raw := get(key)
	if raw == nil {
		return "", false
	}

	value, parseErr := parseStrictString(raw)
	if parseErr != nil {
		appendValidationError(errs, "%s must be a string", key)
		return "", false
	}

	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, a := range allowed {
		if normalized == a {
			return normalized, true
		}
	}

	appendValidationError(errs, "%s must be one of [%s]", key, strings.Join(allowed, ", "))
	return "", false
}

// validateOptionalIntMin validates an optionally configured integer key with a minimum constraint.
func validateOptionalIntMin(get configGetter, key string, min int, errs *[]string) {
	raw := get(key)
	if raw == nil {
		return
	}

	value, parseErr := parseStrictInt(raw)
	if parseErr != nil {
		appendValidationError(errs, "%s must be an integer", key)
		return
	}

	if value < min {
		appendValidationError(errs, "%s must be >= %d", key, min)
	}
}

// validateOptionalFloatRange validates an optionally configured float key within [min, max].
func validateOptionalFloatRange(get configGetter, key string, min, max float64, errs *[]string) {
	raw := get(key)
	if raw == nil {
		return
	}

	value, parseErr := parseStrictFloat(raw)
	if parseErr != nil {
		appendValidationError(errs, "%s must be a float", key)
		return
	}

	if math.IsNaN(value) || value < min || value > max {
		appendValidationError(errs, "%s must be within [%g, %g]", key, min, max)
	}
}

// validateOptionalStringNonEmpty validates an optionally configured non-empty string key.
func validateOptionalStringNonEmpty(get configGetter, key string, errs *[]string) {
	raw := get(key)
	if raw == nil {
		return
	}

	value, parseErr := parseStrictString(raw)
	if parseErr != nil {
		appendValidationError(errs, "%s must be a string", key)
		return
	}

	if strings.TrimSpace(value) == "" {
		appendValidationError(errs, "%s must not be empty", key)
	}
}

func validateRequiredString(get configGetter, key string, errs *[]string) {
	if get(key) == nil {
		appendValidationError(errs, "%s is required", key)
		return
	}
	validateOptionalStringNonEmpty(get, key, errs)
}

// parseStrictInt parses a value as a strict integer.
// It accepts a raw value and returns the parsed int and an error when parsing fails.
func parseStrictInt(value any) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if math.Trunc(v) != v {
			return 0, errors.Errorf("%v is not an integer", v)
		}
		return int(v), nil
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return 0, errors.New("empty integer string")
		}
		parsed, err := strconv.Atoi(trimmed)
		if err != nil {
			return 0, errors.Wrap(err, "atoi")
		}
		return parsed, nil
	default:
		return 0, errors.Errorf("unsupported int type %T", value)
	}
}

// parseStrictFloat parses a value as a strict floating-point number.
func parseStrictFloat(value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return 0, errors.New("empty float string")
		}
		parsed, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return 0, errors.Wrap(err, "parse float")
		}
		return parsed, nil
	default:
		return 0, errors.Errorf("unsupported float type %T", value)
	}
}

func parseStrictString(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return "", errors.Errorf("unsupported string type %T", value)
	}
}

// isValidHost accepts a bare host, without scheme or path.
func isValidHost(host string) bool {
	trimmed := strings.TrimSpace(host)
	if trimmed == "" {
		return false
	}
	return !strings.Contains(trimmed, "://") && !strings.Contains(trimmed, "/")
}

func appendValidationError(errs *[]string, format string, args ...any) {
	if errs == nil {
		return
	}
	*errs = append(*errs, fmt.Sprintf(format, args...))
}
