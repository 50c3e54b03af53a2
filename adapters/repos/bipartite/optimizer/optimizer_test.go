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

package optimizer

import (
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weaviate/bipartite/adapters/repos/bipartite/edgepool"
	"github.com/weaviate/bipartite/adapters/repos/bipartite/segment"
	"github.com/weaviate/bipartite/entities/graph"
	"github.com/weaviate/bipartite/usecases/monitoring"
)

func filledSegment(t *testing.T, id int, rightIndexed bool) segment.Segment {
	cfg := segment.Config{
		ID:                     id,
		MaxNumEdges:            200,
		ExpectedNumLeftNodes:   8,
		ExpectedMaxLeftDegree:  8,
		LeftPowerLawExponent:   2.0,
		ExpectedNumRightNodes:  8,
		ExpectedMaxRightDegree: 8,
		RightPowerLawExponent:  2.0,
	}

	var s segment.Segment
	var err error
	if rightIndexed {
		s, err = segment.NewLeftRightIndexed(cfg)
	} else {
		s, err = segment.NewLeftIndexed(cfg)
	}
	require.Nil(t, err)

	for i := int64(0); i < 200; i++ {
		require.Nil(t, s.AddEdge(i%7, 1000+i%13, 0))
	}
	require.True(t, s.Filled())
	return s
}

func edgesOf(it *segment.EdgeIterator) []int64 {
	if it == nil {
		return nil
	}
	var out []int64
	for it.HasNext() {
		out = append(out, it.NextLong())
	}
	return out
}

func newTestOptimizer(t *testing.T, workers, queueSize int) (*Optimizer, *monitoring.GraphMetrics, *test.Hook) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	metrics, err := monitoring.NewGraphMetrics(prometheus.NewRegistry(), "test")
	require.Nil(t, err)

	o, err := New(Config{
		Workers:   workers,
		QueueSize: queueSize,
		Logger:    logger,
		Metrics:   metrics,
	})
	require.Nil(t, err)
	return o, metrics, hook
}

func TestOptimizerSwapsPools(t *testing.T) {
	o, metrics, _ := newTestOptimizer(t, 2, 4)

	left := filledSegment(t, 1, false)
	both := filledSegment(t, 2, true)

	expectedLeft := edgesOf(both.LeftNodeEdges(3))
	expectedRight := edgesOf(both.RightNodeEdges(1005))

	require.True(t, o.Submit(left))
	require.True(t, o.Submit(both))
	require.Nil(t, o.Close())

	assert.IsType(t, &edgepool.OptimizedEdgePool{}, left.LeftPool())
	assert.IsType(t, &edgepool.OptimizedEdgePool{}, both.LeftPool())
	assert.IsType(t, &edgepool.OptimizedEdgePool{}, both.RightPool())

	assert.Equal(t, expectedLeft, edgesOf(both.LeftNodeEdges(3)))
	assert.Equal(t, expectedRight, edgesOf(both.RightNodeEdges(1005)))
	assert.Equal(t, float64(2),
		testutil.ToFloat64(metrics.Optimizations.WithLabelValues(monitoring.OptimizationSucceeded)))

	t.Run("optimized pools are left alone", func(t *testing.T) {
		pool := left.LeftPool()
		o2, _, _ := newTestOptimizer(t, 1, 1)
		require.Nil(t, o2.OptimizeSegment(left))
		require.Nil(t, o2.Close())
		assert.Same(t, pool, left.LeftPool())
	})
}

// onCollected flags when the mutable pool becomes unreachable.
func onCollected(pool edgepool.EdgePool, collected *atomic.Bool) {
	mutable := pool.(*edgepool.PowerLawDegreeEdgePool)
	runtime.SetFinalizer(mutable, func(*edgepool.PowerLawDegreeEdgePool) {
		collected.Store(true)
	})
}

func TestOptimizedSegmentReleasesMutablePools(t *testing.T) {
	o, _, _ := newTestOptimizer(t, 1, 1)
	defer o.Close()

	s := filledSegment(t, 1, true)
	expected := edgesOf(s.LeftNodeEdges(3))

	var leftCollected, rightCollected atomic.Bool
	onCollected(s.LeftPool(), &leftCollected)
	onCollected(s.RightPool(), &rightCollected)

	require.Nil(t, o.OptimizeSegment(s))
	require.IsType(t, &edgepool.OptimizedEdgePool{}, s.LeftPool())
	require.IsType(t, &edgepool.OptimizedEdgePool{}, s.RightPool())

	assert.Eventually(t, func() bool {
		runtime.GC()
		return leftCollected.Load() && rightCollected.Load()
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, expected, edgesOf(s.LeftNodeEdges(3)))
}

func TestOptimizerSubmitRacesClose(t *testing.T) {
	o, _, _ := newTestOptimizer(t, 2, 4)
	s := filledSegment(t, 1, false)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				o.Submit(s)
			}
		}()
	}

	require.Nil(t, o.Close())
	wg.Wait()
	assert.False(t, o.Submit(s))
	// optimized or not, the segment answers the same
	assert.Equal(t, 29, s.LeftNodeDegree(1))
	assert.Len(t, edgesOf(s.LeftNodeEdges(1)), 29)
}

func TestOptimizerFailureKeepsMutablePool(t *testing.T) {
	for name, compact := range map[string]func(*edgepool.PowerLawDegreeEdgePool) (*edgepool.OptimizedEdgePool, error){
		"error": func(*edgepool.PowerLawDegreeEdgePool) (*edgepool.OptimizedEdgePool, error) {
			return nil, errors.New("out of luck")
		},
		"panic": func(*edgepool.PowerLawDegreeEdgePool) (*edgepool.OptimizedEdgePool, error) {
			panic("compaction blew up")
		},
		"lost edges": func(*edgepool.PowerLawDegreeEdgePool) (*edgepool.OptimizedEdgePool, error) {
			return edgepool.NewOptimizedEdgePool([]int32{0, 1}, []int32{0}, nil)
		},
	} {
		t.Run(name, func(t *testing.T) {
			o, metrics, hook := newTestOptimizer(t, 1, 1)
			o.compact = compact

			s := filledSegment(t, 1, false)
			before := s.LeftPool()
			expected := edgesOf(s.LeftNodeEdges(2))

			require.True(t, o.Submit(s))
			require.Nil(t, o.Close())

			assert.Same(t, before, s.LeftPool())
			assert.Equal(t, expected, edgesOf(s.LeftNodeEdges(2)))
			assert.Equal(t, float64(1),
				testutil.ToFloat64(metrics.Optimizations.WithLabelValues(monitoring.OptimizationFailed)))

			var errorLogged bool
			for _, entry := range hook.AllEntries() {
				if entry.Level == logrus.ErrorLevel {
					errorLogged = true
				}
			}
			assert.True(t, errorLogged)
		})
	}
}

func TestOptimizerSkipsEvictedSegments(t *testing.T) {
	o, metrics, _ := newTestOptimizer(t, 1, 1)

	s := filledSegment(t, 1, false)
	s.Evict()
	before := s.LeftPool()

	require.True(t, o.Submit(s))
	require.Nil(t, o.Close())

	assert.Same(t, before, s.LeftPool())
	assert.Equal(t, float64(1),
		testutil.ToFloat64(metrics.Optimizations.WithLabelValues(monitoring.OptimizationSkipped)))
}

func TestOptimizerDropsJobs(t *testing.T) {
	o, metrics, hook := newTestOptimizer(t, 1, 1)

	block := make(chan struct{})
	started := make(chan struct{}, 1)
	o.compact = func(p *edgepool.PowerLawDegreeEdgePool) (*edgepool.OptimizedEdgePool, error) {
		select {
		case started <- struct{}{}:
		default:
		}
		<-block
		return OptimizePowerLawPool(p)
	}

	require.True(t, o.Submit(filledSegment(t, 1, false)))
	<-started
	// the worker is busy, one job fits the queue
	require.True(t, o.Submit(filledSegment(t, 2, false)))
	assert.False(t, o.Submit(filledSegment(t, 3, false)))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.OptimizerJobsDropped))
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)

	close(block)
	require.Nil(t, o.Close())
	require.Nil(t, o.Close())

	assert.False(t, o.Submit(filledSegment(t, 4, false)), "closed optimizer")
	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.OptimizerJobsDropped))
}

func TestOptimizerInvalidConfig(t *testing.T) {
	_, err := New(Config{Workers: -1})
	assert.True(t, errors.Is(err, graph.ErrInvalidConfig))
}
