package filter

import (
	"context"
	"time"

	"github.com/xaionaro-go/typing"
)

// WakeupFunc is called (at most once per Run) when a root needs to be run
// again because of an asynchronous event. It may be called from any
// goroutine and must not call back into the filter graph.
type WakeupFunc func(ctx context.Context)

type Config struct {
	Name         string
	HighPriority bool
	ErrorHandler *Filter

	// The options below are applicable to roots only.

	MaxRunTime typing.Optional[time.Duration]
	WakeupFunc WakeupFunc
}

func defaultConfig() Config {
	return Config{}
}

type Option interface {
	apply(*Config)
}
type Options []Option

func (opts Options) apply(cfg *Config) {
	for _, opt := range opts {
		opt.apply(cfg)
	}
}

func (opts Options) config() Config {
	cfg := defaultConfig()
	opts.apply(&cfg)
	return cfg
}

type OptionName string

func (opt OptionName) apply(cfg *Config) {
	cfg.Name = string(opt)
}

type OptionHighPriority bool

func (opt OptionHighPriority) apply(cfg *Config) {
	cfg.HighPriority = bool(opt)
}

type OptionErrorHandlerValue struct {
	Handler *Filter
}

func (opt OptionErrorHandlerValue) apply(cfg *Config) {
	cfg.ErrorHandler = opt.Handler
}

func OptionErrorHandler(handler *Filter) OptionErrorHandlerValue {
	return OptionErrorHandlerValue{Handler: handler}
}

type OptionMaxRunTime time.Duration

func (opt OptionMaxRunTime) apply(cfg *Config) {
	cfg.MaxRunTime = typing.Opt(time.Duration(opt))
}

type OptionWakeupFunc WakeupFunc

func (opt OptionWakeupFunc) apply(cfg *Config) {
	cfg.WakeupFunc = WakeupFunc(opt)
}
