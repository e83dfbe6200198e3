// Package main is an illustrative driver for the event channel: a free
// function, strongly and weakly bound widgets, a tagged callable and a
// configurable dispatch policy, all fed from one channel.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	eventchannel "github.com/thierryseegers/event-channel"
	"github.com/thierryseegers/event-channel/dispatch"
	"github.com/thierryseegers/event-channel/shape"
)

// Config selects the channel's policies.
type Config struct {
	// Dispatch is one of "sequential", "parallel" or "pool".
	Dispatch string `yaml:"dispatch"`

	// Workers sizes the pool when Dispatch is "pool".
	Workers int `yaml:"workers"`

	// Idle is one of "keep_events" or "drop_events".
	Idle string `yaml:"idle"`
}

func defaultConfig() Config {
	return Config{Dispatch: "sequential", Workers: 4, Idle: "keep_events"}
}

func loadConfig(path string) (Config, error) {
	config := defaultConfig()
	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return config, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("parse config: %w", err)
	}
	return config, nil
}

type widget struct {
	name string
}

func (w *widget) printInt(n int) {
	fmt.Printf("%s: printInt: %d\n", w.name, n)
}

func (w *widget) printFloat(f float64) {
	fmt.Printf("%s: printFloat: %g\n", w.name, f)
}

func printInt(n int) {
	fmt.Println("printInt:", n)
}

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to YAML config")
	flag.Parse()

	config, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	opts := []eventchannel.Option{eventchannel.WithLogger(logger)}

	var pool *dispatch.Pool
	switch config.Dispatch {
	case "sequential":
		// Default policy.
	case "parallel":
		opts = append(opts, eventchannel.WithDispatchPolicy(dispatch.Parallel{}))
	case "pool":
		pool = dispatch.NewPool(config.Workers)
		opts = append(opts, eventchannel.WithDispatchPolicy(pool))
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown dispatch policy %q\n", config.Dispatch)
		return 1
	}

	if config.Idle == "drop_events" {
		opts = append(opts, eventchannel.WithIdlePolicy(eventchannel.DropEvents))
	}

	ec := eventchannel.New(opts...)

	// A free function.
	eventchannel.Subscribe(ec, printInt)

	ec.Publish(1)
	pause()

	// Two widgets: w1 strongly bound, w2 weakly bound.
	w1 := &widget{name: "w1"}
	w2 := &widget{name: "w2"}
	eventchannel.SubscribeMethod(ec, w1, (*widget).printInt)
	eventchannel.SubscribeWeak(ec, w2, (*widget).printFloat)

	// An int event and a float64 event: printInt, w1.printInt and
	// w2.printFloat all fire.
	ec.Publish(2)
	ec.Publish(33.3)
	pause()

	// Unsubscribe the second widget; only printInt and w1.printInt remain.
	eventchannel.UnsubscribeMethod(ec, w2, (*widget).printFloat)
	ec.Publish(4)
	ec.Publish(55.5)
	pause()

	// A callable with an explicit shape, addressed by its returned tag.
	tag := ec.SubscribeHandler(shape.Of(""), func(args []any) {
		fmt.Println("Simon says:", args[0].(string))
	})

	ec.Publish("Touch your nose!")
	pause()
	ec.Publish("Touch your chin!")
	pause()

	// After the tag is unsubscribed, the string event reaches no one.
	ec.Unsubscribe(tag)
	ec.Publish("Touch your tail!")
	pause()

	ec.Stop()
	if pool != nil {
		if err := pool.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}

	stats := ec.Stats()
	logger.Info("done",
		zap.Uint64("published", stats.EventsPublished),
		zap.Uint64("dispatched", stats.EventsDispatched),
		zap.Uint64("handlers_invoked", stats.HandlersInvoked))
	return 0
}

// pause lets in-flight dispatches drain so the demo's output groups by
// publish round.
func pause() {
	time.Sleep(250 * time.Millisecond)
}
