package main

import (
	"encoding/json"
	"fmt"

	"github.com/shashiranjanraj/kashvi-events/pkg/app"
	"github.com/shashiranjanraj/kashvi-events/pkg/event"
	"github.com/shashiranjanraj/kashvi-events/pkg/logger"
)

// echoListener returns its payload unchanged.
type echoListener struct{}

func (echoListener) Handle(args ...any) (any, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	return args, nil
}

// boot starts the application and registers the CLI listeners.
func boot() (*app.Application, error) {
	a := app.New().Register(app.LogServiceProvider{}, app.EventServiceProvider{})
	if err := a.Boot(); err != nil {
		return nil, err
	}

	a.Container.Bind("listeners.echo", func() interface{} { return echoListener{} })

	d := a.Events()
	if err := d.All(func(args ...any) {
		logger.WithEvent(args[0].(string)).Info("event fired", "payload", args[1])
	}); err != nil {
		a.Shutdown()
		return nil, err
	}
	return a, nil
}

// listenAll registers the identifiers in ids on name.
func listenAll(d *event.Dispatcher, name string, ids []string) error {
	for _, id := range ids {
		if err := d.Listen(name, id); err != nil {
			return err
		}
	}
	return nil
}

// parseValue decodes s as JSON, falling back to the raw string.
func parseValue(s string) any {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return s
	}
	return v
}

func parseValues(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = parseValue(s)
	}
	return out
}

func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	fmt.Println(string(b))
	return nil
}
