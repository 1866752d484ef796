package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStepLimiterPaces(t *testing.T) {
	l := newStepLimiter(5 * time.Millisecond)
	start := time.Now()
	for range 4 {
		l.Wait()
	}
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestStepLimiterUnthrottled(t *testing.T) {
	l := newStepLimiter(0)
	start := time.Now()
	for range 1000 {
		l.Wait()
	}
	assert.Less(t, time.Since(start), time.Second)
	assert.True(t, l.next.IsZero())
}
