// Package jitter считает задержки повторов со случайной добавкой, чтобы клиенты не переподключались синхронно.
package jitter

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// DefaultJitter: добавка до 50% к задержке.
const DefaultJitter = 0.5

var (
	mu  sync.Mutex
	rng = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// Duration возвращает d плюс случайную добавку в диапазоне [0, d*factor).
func Duration(d time.Duration, factor float64) time.Duration {
	mu.Lock()
	f := rng.Float64()
	mu.Unlock()

	return d + time.Duration(f*factor*float64(d))
}

// DurationWithRand: то же с переданным генератором, для детерминированных тестов.
func DurationWithRand(d time.Duration, factor float64, r *rand.Rand) time.Duration {
	return d + time.Duration(r.Float64()*factor*float64(d))
}

// ExponentialBackoff: base*2^attempt, не больше max, плюс джиттер. attempt считается с нуля.
func ExponentialBackoff(base, max time.Duration, attempt int, factor float64) time.Duration {
	return Duration(capped(base, max, attempt), factor)
}

func capped(base, max time.Duration, attempt int) time.Duration {
	d := base
	for i := 0; i < attempt; i++ {
		if d >= max/2 {
			return max
		}
		d *= 2
	}
	if d > max {
		return max
	}

	return d
}

// Backoff: параметры повторов для долгоживущих циклов (переподключение, очистка).
type Backoff struct {
	Base   time.Duration
	Max    time.Duration
	Factor float64
}

func (b Backoff) Delay(attempt int) time.Duration {
	return ExponentialBackoff(b.Base, b.Max, attempt, b.Factor)
}

// Wait ждёт Delay(attempt). false: контекст отменён раньше.
func (b Backoff) Wait(ctx context.Context, attempt int) bool {
	t := time.NewTimer(b.Delay(attempt))
	defer t.Stop()

	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
