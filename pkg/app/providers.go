package app

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shashiranjanraj/kashvi-events/config"
	"github.com/shashiranjanraj/kashvi-events/pkg/event"
	"github.com/shashiranjanraj/kashvi-events/pkg/logger"
	"github.com/shashiranjanraj/kashvi-events/pkg/metrics"
	"github.com/shashiranjanraj/kashvi-events/pkg/queue"
)

// LogServiceProvider tees the logger into MongoDB when LOG_MONGO_URI is set.
type LogServiceProvider struct{}

func (LogServiceProvider) Register(a *Application) error {
	uri := config.LogMongoURI()
	if uri == "" {
		return nil
	}

	closeSink, err := logger.UseMongo(uri, config.LogMongoDB(), config.LogMongoCollection())
	if err != nil {
		// Stdout logging keeps working without the sink.
		logger.Warn("app: mongo log sink disabled", "error", err)
		return nil
	}
	a.OnShutdown(closeSink)
	return nil
}

// EventServiceProvider binds the dispatcher as the "events" singleton and
// makes it the package-level default.
//
// The dispatcher resolves string listeners through the application
// container, reports to metrics.Events and queues into Redis when
// QUEUE_DRIVER=redis.
type EventServiceProvider struct {
	// Observer overrides metrics.Events when set.
	Observer event.Observer
}

func (p EventServiceProvider) Register(a *Application) error {
	store, err := newQueueStore(a)
	if err != nil {
		return err
	}

	var observer event.Observer = metrics.Events
	if p.Observer != nil {
		observer = p.Observer
	}

	d := event.New(
		event.WithResolver(a.Container),
		event.WithStore(store),
		event.WithObserver(observer),
		event.WithLogger(logger.L),
		event.WithAsyncWorkers(config.AsyncWorkers()),
	)
	a.Container.Instance(EventsKey, d)
	a.OnShutdown(d.Close)
	event.SetDefault(d)
	return nil
}

func newQueueStore(a *Application) (queue.Store, error) {
	if config.QueueDriver() != "redis" {
		return queue.NewMemoryStore(), nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     config.RedisAddr(),
		Password: config.RedisPassword(),
		DB:       config.RedisDB(),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis queue store: %w", err)
	}

	a.OnShutdown(func() { _ = rdb.Close() })
	logger.Info("app: queue store", "driver", "redis", "addr", config.RedisAddr())
	return queue.NewRedisStore(rdb, config.QueuePrefix()), nil
}
