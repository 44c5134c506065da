package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/facebookincubator/go-belt"
	"github.com/facebookincubator/go-belt/tool/logger/implementation/logrus"
	"github.com/spf13/pflag"
	"github.com/xaionaro-go/observability"
	"github.com/xaionaro-go/pinflow/asyncqueue"
	"github.com/xaionaro-go/pinflow/filter"
	"github.com/xaionaro-go/pinflow/filter/delay"
	"github.com/xaionaro-go/pinflow/filter/gate"
	"github.com/xaionaro-go/pinflow/filter/isolate"
	"github.com/xaionaro-go/pinflow/frame"
	"github.com/xaionaro-go/pinflow/frame/condition"
	"github.com/xaionaro-go/pinflow/graphthread"
	"github.com/xaionaro-go/pinflow/logger"
)

func main() {
	loggerLevel := logger.LevelWarning
	pflag.Var(&loggerLevel, "log-level", "Log level")
	framesCount := pflag.Int("frames", 1000, "amount of frames to generate")
	frameSizeString := pflag.String("frame-size", "64KiB", "size of a generated frame")
	fps := pflag.Float64("fps", 30, "frame rate used for the generated timestamps")
	queueMaxBytesString := pflag.String("queue-max-bytes", "1MiB", "maximal size of the queue between the threads")
	queueMaxFrames := pflag.Int64("queue-max-frames", 8, "maximal amount of frames in the queue between the threads")
	queueMaxDuration := pflag.Duration("queue-max-duration", 0, "maximal timestamp span of the queue between the threads (0 means unlimited)")
	dropEvery := pflag.Int("drop-every", 0, "drop every N-th frame before the queue (0 means never)")
	failAt := pflag.Int("fail-at", 0, "simulate a filter failure on the given frame (0 means never)")
	maxRunTime := pflag.Duration("max-run-time", 0, "limit a single graph run by this duration (0 means unlimited)")
	pflag.Parse()

	l := logrus.Default().WithLevel(loggerLevel)
	ctx := logger.CtxWithLogger(context.Background(), l)
	ctx, cancelFn := context.WithCancel(ctx)
	defer cancelFn()
	logger.SetDefault(func() logger.Logger {
		return l
	})
	defer belt.Flush(ctx)

	frameSize, err := humanize.ParseBytes(*frameSizeString)
	if err != nil {
		l.Fatalf("unable to parse the frame size '%s': %v", *frameSizeString, err)
	}
	queueMaxBytes, err := humanize.ParseBytes(*queueMaxBytesString)
	if err != nil {
		l.Fatalf("unable to parse the queue size '%s': %v", *queueMaxBytesString, err)
	}
	if *fps <= 0 {
		l.Fatalf("the frame rate must be positive, but is %v", *fps)
	}

	var rootOpts []filter.Option
	if *maxRunTime > 0 {
		rootOpts = append(rootOpts, filter.OptionMaxRunTime(*maxRunTime))
	}

	queue := asyncqueue.New(ctx)
	defer queue.Close(ctx)
	queue.SetConfig(ctx, asyncqueue.Config{
		MaxBytes:    int64(queueMaxBytes),
		SampleUnit:  asyncqueue.SampleUnitFrame,
		MaxSamples:  *queueMaxFrames,
		MaxDuration: *queueMaxDuration,
	})
	l.Debugf("queue config: %s", queue.Config(ctx))

	decoder := graphthread.New(ctx, append(rootOpts, filter.OptionName("decoder"))...)
	src, err := filter.New(ctx, decoder.Root(), &source{
		total:     *framesCount,
		frameSize: int(frameSize),
		interval:  time.Duration(float64(time.Second) / *fps),
	})
	if err != nil {
		l.Fatal(err)
	}
	delayFilter, err := delay.New(ctx, decoder.Root())
	if err != nil {
		l.Fatal(err)
	}
	var gateFilter *filter.Filter
	if *dropEvery > 0 {
		count := 0
		gateFilter, err = gate.New(ctx, decoder.Root(), condition.And{
			condition.Kind(frame.KindVideo),
			condition.Function(func(ctx context.Context, f frame.Frame) bool {
				count++
				return count%*dropEvery != 0
			}),
		})
		if err != nil {
			l.Fatal(err)
		}
	}
	glitchFilter, err := isolate.New(ctx, decoder.Root(), func(ctx context.Context, parent *filter.Filter) (*filter.Filter, error) {
		return filter.New(ctx, parent, &glitcher{failAt: *failAt})
	})
	if err != nil {
		l.Fatal(err)
	}
	producer, err := queue.NewFilter(ctx, decoder.Root(), filter.DirectionIn)
	if err != nil {
		l.Fatal(err)
	}
	filter.ChainFilters(ctx, src.Output(0), producer.Input(0), delayFilter, gateFilter, glitchFilter)

	renderer := graphthread.New(ctx, append(rootOpts, filter.OptionName("renderer"))...)
	consumer, err := queue.NewFilter(ctx, renderer.Root(), filter.DirectionOut)
	if err != nil {
		l.Fatal(err)
	}
	dst := &sink{eof: make(chan struct{})}
	sinkFilter, err := filter.New(ctx, renderer.Root(), dst)
	if err != nil {
		l.Fatal(err)
	}
	filter.Connect(ctx, sinkFilter.Input(0), consumer.Output(0))

	startedAt := time.Now()
	queue.ResumeReading(ctx)
	decoder.Start(ctx)
	renderer.Start(ctx)

	observability.Go(ctx, func(ctx context.Context) {
		t := time.NewTicker(time.Second)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				fmt.Printf(
					"queue: %d frames, %s\n",
					queue.Count(ctx), humanize.IBytes(uint64(queue.Bytes(ctx))),
				)
			}
		}
	})

	<-dst.eof
	elapsed := time.Since(startedAt)

	stats := map[string]filter.Statistics{}
	var unhandled []*filter.ErrFailed
	err = decoder.Do(ctx, func(ctx context.Context, root *filter.Filter) {
		if l.Level() >= logger.LevelDebug {
			root.DumpStates(ctx)
		}
		stats["source"] = src.GetStatistics()
		stats["glitcher"] = glitchFilter.GetStatistics()
		if gateFilter != nil {
			stats["gate"] = gateFilter.GetStatistics()
		}
		unhandled = root.TakeUnhandledFailures(ctx)
		root.DestroyChildren(ctx)
	})
	if err != nil {
		l.Fatal(err)
	}
	err = renderer.Do(ctx, func(ctx context.Context, root *filter.Filter) {
		stats["sink"] = sinkFilter.GetStatistics()
		root.DestroyChildren(ctx)
	})
	if err != nil {
		l.Fatal(err)
	}
	renderer.Close(ctx)
	decoder.Close(ctx)

	for _, failure := range unhandled {
		l.Errorf("unhandled failure: %v", failure)
	}

	statsJSON, err := json.Marshal(stats)
	if err != nil {
		l.Fatal(err)
	}
	received := stats["sink"].Received
	fmt.Printf("%s\n", statsJSON)
	fmt.Printf(
		"passed %d frames (%s) in %v\n",
		received.Video.Count, humanize.IBytes(received.Video.Bytes), elapsed,
	)
	if len(unhandled) > 0 {
		belt.Flush(ctx)
		os.Exit(1)
	}
}
