package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializer_MaxWidthOne_IsStrictlySerial(t *testing.T) {
	s := NewSerializer(1)
	var running int32
	var maxObserved int32

	done := make(chan struct{}, 3)
	for i := 0; i < 3; i++ {
		go func() {
			_ = s.Run(context.Background(), func(ctx context.Context) error {
				n := atomic.AddInt32(&running, 1)
				for {
					old := atomic.LoadInt32(&maxObserved)
					if n <= old || atomic.CompareAndSwapInt32(&maxObserved, old, n) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				atomic.AddInt32(&running, -1)
				return nil
			})
			done <- struct{}{}
		}()
	}
	for i := 0; i < 3; i++ {
		<-done
	}

	assert.Equal(t, int32(1), maxObserved)
}

func TestSerializer_BoundedWidthAdmitsAtMostN(t *testing.T) {
	s := NewSerializer(2)
	var running int32
	var maxObserved int32

	done := make(chan struct{}, 6)
	for i := 0; i < 6; i++ {
		go func() {
			_ = s.Run(context.Background(), func(ctx context.Context) error {
				n := atomic.AddInt32(&running, 1)
				for {
					old := atomic.LoadInt32(&maxObserved)
					if n <= old || atomic.CompareAndSwapInt32(&maxObserved, old, n) {
						break
					}
				}
				time.Sleep(10 * time.Millisecond)
				atomic.AddInt32(&running, -1)
				return nil
			})
			done <- struct{}{}
		}()
	}
	for i := 0; i < 6; i++ {
		<-done
	}

	assert.LessOrEqual(t, maxObserved, int32(2))
	assert.Greater(t, maxObserved, int32(0))
}

func TestSerializer_RunRespectsCancellation(t *testing.T) {
	s := NewSerializer(1)
	ctx, cancel := context.WithCancel(context.Background())

	blockCh := make(chan struct{})
	go func() {
		_ = s.Run(context.Background(), func(ctx context.Context) error {
			<-blockCh
			return nil
		})
	}()
	time.Sleep(5 * time.Millisecond) // let the first Run take the only slot

	cancel()
	err := s.Run(ctx, func(ctx context.Context) error {
		t.Fatal("fn must not run once ctx is already cancelled and no slot is free")
		return nil
	})
	require.Error(t, err)
	close(blockCh)
}

func TestGlobal_IsSingletonWithWidthOne(t *testing.T) {
	assert.Equal(t, int64(1), Global().MaxWidth())
	assert.Same(t, Global(), Global())
}
