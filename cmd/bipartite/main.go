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

package main

import (
	"errors"
	"net/http"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/weaviate/bipartite/adapters/repos/bipartite/multisegment"
	enterrors "github.com/weaviate/bipartite/entities/errors"
	"github.com/weaviate/bipartite/usecases/config"
	"github.com/weaviate/bipartite/usecases/monitoring"
)

// Options represents Command line options
type Options struct {
	Config        string  `long:"config" description:"YAML graph config, BIPARTITE_* variables are applied on top"`
	Input         string  `long:"input" description:"edge file with one 'left right [type]' line per edge, - for stdin" default:"-"`
	Name          string  `long:"name" description:"graph name used as metrics label" default:"default"`
	MetricsListen string  `long:"metrics.listen" description:"address serving /metrics while replaying, empty to disable"`
	LogLevel      string  `long:"log-level" description:"logrus level" default:"info"`
	Query         []int64 `long:"query" description:"left node whose edges are printed after the replay, may be repeated"`
}

func main() {
	var opts Options
	log := logrus.WithFields(logrus.Fields{"app": "bipartite"}).Logger

	if _, err := flags.Parse(&opts); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		log.Fatal("failed to parse command line args: ", err)
	}

	level, err := logrus.ParseLevel(opts.LogLevel)
	if err != nil {
		log.Fatal("invalid log level: ", err)
	}
	log.SetLevel(level)

	cfg, err := loadConfig(opts.Config)
	if err != nil {
		log.Fatal(err)
	}

	var reg prometheus.Registerer = monitoring.NoopRegisterer{}
	registry := prometheus.NewRegistry()
	if opts.MetricsListen != "" {
		reg = registry
	}

	metrics, err := monitoring.NewGraphMetrics(reg, opts.Name)
	if err != nil {
		log.Fatal(err)
	}

	g, err := multisegment.New(cfg, multisegment.Options{Logger: log, Metrics: metrics})
	if err != nil {
		log.Fatal("failed to create graph: ", err)
	}
	reg.MustRegister(monitoring.NewGraphCollector(opts.Name, g))

	if opts.MetricsListen != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		enterrors.GoWrapper(func() {
			log.WithField("address", opts.MetricsListen).Info("serving metrics")
			if err := http.ListenAndServe(opts.MetricsListen, mux); err != nil {
				log.WithError(err).Error("metrics server stopped")
			}
		}, log)
	}

	in := os.Stdin
	if opts.Input != "-" {
		in, err = os.Open(opts.Input)
		if err != nil {
			log.Fatal("failed to open edge file: ", err)
		}
		defer in.Close()
	}

	n, err := replay(in, g)
	if err != nil {
		log.WithField("edges_added", n).Fatal(err)
	}
	if err := g.Close(); err != nil {
		log.WithError(err).Error("optimizer did not shut down cleanly")
	}

	stats := g.Stats()
	log.WithFields(logrus.Fields{
		"edges_added":    n,
		"segments":       stats.NumSegments,
		"live_segment":   stats.LiveSegmentID,
		"live_edges":     stats.LiveSegmentEdges,
		"non_live_edges": stats.NumEdgesInNonLiveSegments,
	}).Info("replay finished")

	for _, node := range opts.Query {
		if err := printEdges(os.Stdout, g, node); err != nil {
			log.Fatal(err)
		}
	}
}

func loadConfig(path string) (config.Graph, error) {
	cfg := config.Defaults()
	if path != "" {
		var err error
		if cfg, err = config.LoadFile(path); err != nil {
			return cfg, err
		}
	}
	if err := config.FromEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}
