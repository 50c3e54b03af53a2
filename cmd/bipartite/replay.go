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
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/weaviate/bipartite/entities/graph"
)

// replay adds one edge per line of r. Lines hold a left id, a right id and
// an optional edge type separated by whitespace. Empty lines and lines
// starting with # are skipped.
func replay(r io.Reader, g graph.DynamicGraph) (int, error) {
	scanner := bufio.NewScanner(r)
	added := 0
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		left, right, edgeType, err := parseEdge(line)
		if err != nil {
			return added, errors.Wrapf(err, "line %d", lineNo)
		}
		if err := g.AddEdge(left, right, edgeType); err != nil {
			return added, errors.Wrapf(err, "line %d", lineNo)
		}
		added++
	}
	if err := scanner.Err(); err != nil {
		return added, errors.Wrap(err, "read edges")
	}
	return added, nil
}

func parseEdge(line string) (int64, int64, uint8, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 || len(fields) > 3 {
		return 0, 0, 0, errors.Errorf("expected 'left right [type]', got %q", line)
	}

	left, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return 0, 0, 0, errors.Wrap(err, "parse left node")
	}
	right, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return 0, 0, 0, errors.Wrap(err, "parse right node")
	}

	var edgeType uint64
	if len(fields) == 3 {
		if edgeType, err = strconv.ParseUint(fields[2], 10, 8); err != nil {
			return 0, 0, 0, errors.Wrap(err, "parse edge type")
		}
	}
	return left, right, uint8(edgeType), nil
}

func printEdges(w io.Writer, g graph.LeftIndexedGraph, node int64) error {
	it := g.LeftNodeEdges(node)
	if it == nil {
		_, err := fmt.Fprintf(w, "%d\t-\n", node)
		return err
	}

	var b strings.Builder
	for first := true; it.HasNext(); first = false {
		if !first {
			b.WriteByte(' ')
		}
		right := it.NextLong()
		if edgeType := it.CurrentEdgeType(); edgeType != 0 {
			fmt.Fprintf(&b, "%d:%d", right, edgeType)
		} else {
			fmt.Fprintf(&b, "%d", right)
		}
	}
	_, err := fmt.Fprintf(w, "%d\t%s\n", node, b.String())
	return err
}
