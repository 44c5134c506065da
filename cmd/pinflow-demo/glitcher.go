package main

import (
	"context"
	"fmt"

	"github.com/xaionaro-go/pinflow/filter"
)

// glitcher forwards frames, but fails on the failAt-th one (counting from 1;
// zero means never).
type glitcher struct {
	in     *filter.OutPin
	out    *filter.InPin
	count  int
	failAt int
}

var _ filter.Abstract = (*glitcher)(nil)

func (g *glitcher) String() string {
	return "glitcher"
}

func (g *glitcher) Init(ctx context.Context, f *filter.Filter) error {
	g.in = f.AddInput(ctx, "in")
	g.out = f.AddOutput(ctx, "out")
	return nil
}

func (g *glitcher) Process(ctx context.Context, f *filter.Filter) error {
	if !filter.CanTransferData(ctx, g.out, g.in) {
		return nil
	}
	in := g.in.Read(ctx)
	if !in.IsSignaling() {
		g.count++
		if g.count == g.failAt {
			in.Unref()
			return fmt.Errorf("simulated failure on frame #%d", g.count)
		}
	}
	g.out.Write(ctx, in)
	return nil
}
