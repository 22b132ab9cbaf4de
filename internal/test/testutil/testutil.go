// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package testutil holds shared fixtures for vaultgov tests: a fake clock,
// private in-memory databases, a Ledger mock and channel helpers for
// asynchronous event delivery.
package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// DeliveryTimeout bounds how long tests wait for an asynchronous event
const DeliveryTimeout = time.Second

// WaitForCondition polls condition every 10ms until it holds or timeout
// expires
func WaitForCondition(
	t testing.TB,
	condition func() bool,
	timeout time.Duration,
	msg string,
) {
	t.Helper()
	require.Eventually(t, condition, timeout, 10*time.Millisecond, msg)
}

// RequireReceive returns the next value from ch. The test fails if ch is
// closed or nothing arrives within timeout
func RequireReceive[T any](
	t testing.TB,
	ch <-chan T,
	timeout time.Duration,
	msg string,
) T {
	t.Helper()
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case v, ok := <-ch:
		if !ok {
			t.Fatalf("channel closed: %s", msg)
		}
		return v
	case <-timer.C:
		t.Fatalf("timeout waiting for channel receive: %s", msg)
	}
	var zero T
	return zero
}

// RequireNoReceive fails the test if ch yields a value within wait. A closed
// channel counts as no value
func RequireNoReceive[T any](
	t testing.TB,
	ch <-chan T,
	wait time.Duration,
	msg string,
) {
	t.Helper()
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case v, ok := <-ch:
		if ok {
			t.Fatalf("unexpected value received on channel: %v: %s", v, msg)
		}
	case <-timer.C:
	}
}
