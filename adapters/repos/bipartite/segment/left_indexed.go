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

package segment

import "github.com/pkg/errors"

// LeftIndexed only indexes the edges of left nodes. Right ids are mapped so
// destinations can be translated back, but right nodes have no adjacency.
type LeftIndexed struct {
	*core
}

func NewLeftIndexed(cfg Config) (*LeftIndexed, error) {
	c, err := newCore(cfg, false)
	if err != nil {
		return nil, errors.Wrapf(err, "left-indexed segment %d", cfg.ID)
	}
	return &LeftIndexed{core: c}, nil
}
