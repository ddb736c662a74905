package health

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const probeTimeout = 2 * time.Second

type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a plain function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// Checker probes named dependencies in parallel.
type Checker struct {
	probes map[string]Pinger
	log    *zap.Logger
}

func NewChecker(log *zap.Logger, probes map[string]Pinger) *Checker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Checker{probes: probes, log: log}
}

type Report struct {
	Healthy    bool              `json:"healthy"`
	Components map[string]string `json:"components"`
}

func (c *Checker) Check(ctx context.Context) Report {
	names := make([]string, 0, len(c.probes))
	for name := range c.probes {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make([]error, len(names))
	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			pctx, cancel := context.WithTimeout(gctx, probeTimeout)
			defer cancel()
			results[i] = c.probes[name].Ping(pctx)
			return nil
		})
	}
	_ = g.Wait()

	rep := Report{Healthy: true, Components: make(map[string]string, len(names))}
	for i, name := range names {
		if err := results[i]; err != nil {
			c.log.Warn("health probe failed", zap.String("component", name), zap.Error(err))
			rep.Healthy = false
			rep.Components[name] = "down"
			continue
		}
		rep.Components[name] = "up"
	}
	return rep
}
