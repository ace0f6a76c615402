package config

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

const (
	defaultAppEnv         = "local"
	defaultQueueDriver    = "memory"
	defaultRedisAddr      = "localhost:6379"
	defaultQueuePrefix    = "kashvi:events:queue"
	defaultAsyncWorkers   = 4
	defaultHTTPAddr       = ":9090"
	defaultMongoDB        = "kashvi"
	defaultMongoLogsTable = "event_logs"
)

var (
	loadOnce sync.Once
	loadErr  error

	mu     sync.RWMutex
	values = defaultValues()
)

// Load reads config/app.json and .env once. Missing files are not an error.
func Load() error {
	loadOnce.Do(func() {
		loadErr = loadFromFiles("config/app.json", ".env")
	})
	return loadErr
}

func defaultValues() map[string]string {
	return map[string]string{
		"APP_ENV":              defaultAppEnv,
		"QUEUE_DRIVER":         defaultQueueDriver,
		"QUEUE_PREFIX":         defaultQueuePrefix,
		"REDIS_ADDR":           defaultRedisAddr,
		"REDIS_PASSWORD":       "",
		"REDIS_DB":             "0",
		"ASYNC_WORKERS":        strconv.Itoa(defaultAsyncWorkers),
		"HTTP_ADDR":            defaultHTTPAddr,
		"LOG_MONGO_URI":        "",
		"LOG_MONGO_DB":         defaultMongoDB,
		"LOG_MONGO_COLLECTION": defaultMongoLogsTable,
	}
}

func AppEnv() string {
	_ = Load()
	return get("APP_ENV", defaultAppEnv)
}

// QueueDriver returns "memory" or "redis".
func QueueDriver() string {
	_ = Load()

	driver := strings.ToLower(get("QUEUE_DRIVER", defaultQueueDriver))
	switch driver {
	case "memory", "redis":
		return driver
	default:
		return defaultQueueDriver
	}
}

func QueuePrefix() string {
	_ = Load()
	return get("QUEUE_PREFIX", defaultQueuePrefix)
}

func RedisAddr() string {
	_ = Load()
	return get("REDIS_ADDR", defaultRedisAddr)
}

func RedisPassword() string {
	_ = Load()
	return get("REDIS_PASSWORD", "")
}

func RedisDB() int {
	_ = Load()
	return getInt("REDIS_DB", 0)
}

// AsyncWorkers is the size of the pool backing Dispatcher.Async.
func AsyncWorkers() int {
	_ = Load()
	n := getInt("ASYNC_WORKERS", defaultAsyncWorkers)
	if n < 1 {
		return defaultAsyncWorkers
	}
	return n
}

func HTTPAddr() string {
	_ = Load()
	return get("HTTP_ADDR", defaultHTTPAddr)
}

// ── Mongo log sink ───────────────────────────────────────────────────────────

func LogMongoURI() string        { _ = Load(); return get("LOG_MONGO_URI", "") }
func LogMongoDB() string         { _ = Load(); return get("LOG_MONGO_DB", defaultMongoDB) }
func LogMongoCollection() string { _ = Load(); return get("LOG_MONGO_COLLECTION", defaultMongoLogsTable) }

func loadFromFiles(configPath, envPath string) error {
	loaded := defaultValues()

	if err := mergeJSONConfig(configPath, loaded); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	}

	if err := mergeDotEnv(envPath, loaded); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	}

	// Process environment wins over both files.
	for key := range loaded {
		if v, ok := os.LookupEnv(key); ok {
			loaded[key] = strings.TrimSpace(v)
		}
	}

	mu.Lock()
	values = loaded
	mu.Unlock()

	return nil
}

func mergeJSONConfig(path string, out map[string]string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var raw map[string]interface{}
	if err := json.NewDecoder(file).Decode(&raw); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	for key, val := range raw {
		var s string
		switch v := val.(type) {
		case string:
			s = v
		case float64:
			s = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			s = strconv.FormatBool(v)
		default:
			continue
		}

		k := strings.ToUpper(strings.TrimSpace(key))
		if k == "" {
			continue
		}
		out[k] = strings.TrimSpace(s)
	}

	return nil
}

func mergeDotEnv(path string, out map[string]string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")

		idx := strings.IndexByte(line, '=')
		if idx <= 0 {
			continue
		}

		key := strings.ToUpper(strings.TrimSpace(line[:idx]))
		value := strings.TrimSpace(line[idx+1:])
		value = strings.Trim(value, `"'`)
		if key == "" {
			continue
		}
		out[key] = value
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	return nil
}

func get(key, fallback string) string {
	mu.RLock()
	defer mu.RUnlock()

	if value := strings.TrimSpace(values[key]); value != "" {
		return value
	}

	return fallback
}

func getInt(key string, fallback int) int {
	n, err := strconv.Atoi(get(key, ""))
	if err != nil {
		return fallback
	}
	return n
}

// Get reads any config key by name with an optional fallback.
// Keys from .env and app.json are available after config.Load().
func Get(key, fallback string) string {
	_ = Load()
	return get(key, fallback)
}
