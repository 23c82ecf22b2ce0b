package executor

import "time"

// Test hooks. Each setter swaps a package seam and returns a restore func.

func SetEnqueueTimeout(d time.Duration) func() {
	prev := enqueueTimeout
	enqueueTimeout = d
	return func() { enqueueTimeout = prev }
}

func SetSettleDelay(d time.Duration) func() {
	prev := settleDelay
	settleDelay = d
	return func() { settleDelay = prev }
}

func SetPollInterval(d time.Duration) func() {
	prev := pollInterval
	pollInterval = d
	return func() { pollInterval = prev }
}

func SetTerminateFunc(fn func(spare []int, force bool)) func() {
	prev := terminateFn
	terminateFn = fn
	return func() { terminateFn = prev }
}
