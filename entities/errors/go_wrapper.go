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

// Package errors holds goroutine helpers that recover from panics, so a
// failing background job is logged instead of taking down the process.
package errors

import (
	"os"
	"runtime/debug"
	"strings"

	"github.com/sirupsen/logrus"
)

// DisableRecoveryEnv turns panic recovery off, e.g. to get a crash with a
// full trace while debugging.
const DisableRecoveryEnv = "DISABLE_RECOVERY_ON_PANIC"

func recoveryEnabled() bool {
	switch strings.ToLower(os.Getenv(DisableRecoveryEnv)) {
	case "on", "enabled", "1", "true":
		return false
	default:
		return true
	}
}

// GoWrapper runs f in a new goroutine and logs a panic instead of
// propagating it.
func GoWrapper(f func(), logger logrus.FieldLogger) {
	go func() {
		defer func() {
			if recoveryEnabled() {
				if r := recover(); r != nil {
					logger.Errorf("Recovered from panic: %v", r)
					debug.PrintStack()
				}
			}
		}()
		f()
	}()
}
