//                           _       _
// __      _____  __ ___   ___  __ _| |_ ___
// \ \ /\ / / _ \/ _` \ \ / / |/ _` | __/ _ \
//  \ V  V /  __/ (_| |\ V /| | (_| | ||  __/
//   \_/\_/ \___|\__,_| \_/ |_|\__,_|\__\___|
//
//  Copyright © 2016 - 2026 Weaviate B.V. All rights reserved.
//
//  CONTACT: hello@weaviate.io
//

// Package optimizer compacts the edge pools of filled segments in the
// background.
package optimizer

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/weaviate/bipartite/adapters/repos/bipartite/edgepool"
	"github.com/weaviate/bipartite/adapters/repos/bipartite/segment"
	enterrors "github.com/weaviate/bipartite/entities/errors"
	"github.com/weaviate/bipartite/entities/graph"
	"github.com/weaviate/bipartite/usecases/monitoring"
)

const (
	DefaultWorkers   = 1
	DefaultQueueSize = 16
)

type Config struct {
	Workers   int
	QueueSize int
	Logger    logrus.FieldLogger
	// Metrics may be nil.
	Metrics *monitoring.GraphMetrics
}

func (c *Config) setDefaults() {
	if c.Workers == 0 {
		c.Workers = DefaultWorkers
	}
	if c.QueueSize == 0 {
		c.QueueSize = DefaultQueueSize
	}
	if c.Logger == nil {
		c.Logger = logrus.New()
	}
}

func (c Config) validate() error {
	if c.Workers < 0 {
		return errors.Wrapf(graph.ErrInvalidConfig, "workers must be positive, got %d", c.Workers)
	}
	if c.QueueSize < 0 {
		return errors.Wrapf(graph.ErrInvalidConfig, "queue size must be positive, got %d", c.QueueSize)
	}
	return nil
}

// Optimizer runs a fixed number of workers consuming a bounded queue of
// filled segments. Compaction is best effort: a job that fails leaves the
// mutable pools in place.
type Optimizer struct {
	logger  logrus.FieldLogger
	metrics *monitoring.GraphMetrics

	// queue is never closed, so Submit can send without a lock. Close
	// signals done and the workers drain what is left.
	queue  chan segment.Segment
	done   chan struct{}
	closed atomic.Bool

	workers *enterrors.ErrorGroupWrapper

	compact func(*edgepool.PowerLawDegreeEdgePool) (*edgepool.OptimizedEdgePool, error)
}

// New starts the workers. They run until Close.
func New(cfg Config) (*Optimizer, error) {
	cfg.setDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	o := &Optimizer{
		logger:  cfg.Logger,
		metrics: cfg.Metrics,
		queue:   make(chan segment.Segment, cfg.QueueSize),
		done:    make(chan struct{}),
		workers: enterrors.NewErrorGroupWrapper(cfg.Logger, "bipartite_optimizer"),
		compact: OptimizePowerLawPool,
	}

	for i := 0; i < cfg.Workers; i++ {
		worker := i
		o.workers.Go(func() error {
			for {
				select {
				case s := <-o.queue:
					o.run(s)
				case <-o.done:
					o.drain()
					return nil
				}
			}
		}, "worker", worker)
	}
	return o, nil
}

// Submit enqueues a filled segment without blocking. It returns false if
// the job was dropped because the queue is full or the optimizer is closed.
// A job that races with Close may stay in the queue unprocessed, which
// leaves the segment on its mutable pools.
func (o *Optimizer) Submit(s segment.Segment) bool {
	closed := o.closed.Load()
	if !closed {
		select {
		case o.queue <- s:
			return true
		default:
		}
	}

	o.logger.WithFields(logrus.Fields{
		"action":     "bipartite_optimizer_submit",
		"segment_id": s.ID(),
		"closed":     closed,
	}).Warn("dropped optimizer job, segment stays unoptimized")
	o.metrics.OptimizerJobDropped()
	return false
}

// Close stops accepting jobs, finishes the queued ones and waits for the
// workers to exit.
func (o *Optimizer) Close() error {
	if !o.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(o.done)
	return o.workers.Wait()
}

func (o *Optimizer) drain() {
	for {
		select {
		case s := <-o.queue:
			o.run(s)
		default:
			return
		}
	}
}

func (o *Optimizer) run(s segment.Segment) {
	before := time.Now()
	logger := o.logger.WithFields(logrus.Fields{
		"action":     "bipartite_optimize_segment",
		"segment_id": s.ID(),
		"num_edges":  s.NumEdges(),
	})

	if s.Evicted() {
		logger.Debug("segment was evicted before it was optimized")
		o.metrics.Optimization(monitoring.OptimizationSkipped)
		return
	}

	if err := o.OptimizeSegment(s); err != nil {
		logger.WithError(err).Error("segment optimization failed, keeping the mutable pools")
		o.metrics.Optimization(monitoring.OptimizationFailed)
		return
	}

	logger.WithField("took", time.Since(before)).Debug("optimized segment")
	o.metrics.Optimization(monitoring.OptimizationSucceeded)
}

// OptimizeSegment compacts the pools of s on the calling goroutine. A
// panic during compaction is returned as an error. Pools that are already
// optimized are left alone.
func (o *Optimizer) OptimizeSegment(s segment.Segment) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic occurred: %v", r)
		}
	}()

	if err := o.optimizePool(s.LeftPool(), s.SwapLeftPool); err != nil {
		return errors.Wrapf(err, "segment %d: left pool", s.ID())
	}
	if s.RightIndexed() {
		if err := o.optimizePool(s.RightPool(), s.SwapRightPool); err != nil {
			return errors.Wrapf(err, "segment %d: right pool", s.ID())
		}
	}
	return nil
}

func (o *Optimizer) optimizePool(current edgepool.EdgePool,
	swap func(old, replacement edgepool.EdgePool) bool,
) error {
	mutable, ok := current.(*edgepool.PowerLawDegreeEdgePool)
	if !ok {
		return nil
	}

	optimized, err := o.compact(mutable)
	if err != nil {
		return err
	}
	if optimized.NumEdges() != mutable.NumEdges() {
		return errors.Errorf("optimized pool holds %d edges, mutable pool %d",
			optimized.NumEdges(), mutable.NumEdges())
	}
	if !swap(mutable, optimized) {
		return errors.New("pool was replaced during optimization")
	}
	return nil
}
