package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllow_Burst(t *testing.T) {
	rl := New(1, 3)

	passed := 0
	for range 5 {
		if rl.Allow("tts") {
			passed++
		}
	}
	assert.Equal(t, 3, passed)
}

func TestAllow_IndependentKeys(t *testing.T) {
	rl := New(1, 1)

	assert.True(t, rl.Allow("openai"))
	assert.True(t, rl.Allow("elevenlabs"))
	assert.False(t, rl.Allow("openai"))
}

func TestWait_ContextCancellation(t *testing.T) {
	rl := New(0.001, 1)
	require.True(t, rl.Allow("tts")) // drain the burst token

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := rl.Wait(ctx, "tts")
	assert.Error(t, err)
}
