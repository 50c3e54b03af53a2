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

// LeftRightIndexed indexes both sides. Every edge is stored twice, once in
// the pool of its left node and once in the pool of its right node.
type LeftRightIndexed struct {
	*core
}

func NewLeftRightIndexed(cfg Config) (*LeftRightIndexed, error) {
	c, err := newCore(cfg, true)
	if err != nil {
		return nil, errors.Wrapf(err, "left-right-indexed segment %d", cfg.ID)
	}
	return &LeftRightIndexed{core: c}, nil
}
