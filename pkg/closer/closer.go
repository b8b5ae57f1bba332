// Package closer закрывает ресурсы приложения в порядке, обратном регистрации.
package closer

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

const defaultForcedTimeout = 2 * time.Second

// Func: функция закрытия ресурса.
type Func func(ctx context.Context) error

type entry struct {
	name string
	fn   Func
}

// Closer закрывает зарегистрированные ресурсы один раз, LIFO.
type Closer struct {
	mu            sync.Mutex
	entries       []entry
	once          sync.Once
	forcedTimeout time.Duration
}

// NewCloser: forcedTimeout задаёт, сколько ждать ресурсы, не успевшие закрыться до отмены контекста Close.
func NewCloser(forcedTimeout time.Duration) *Closer {
	if forcedTimeout <= 0 {
		forcedTimeout = defaultForcedTimeout
	}

	return &Closer{forcedTimeout: forcedTimeout}
}

// Add регистрирует ресурс. name попадает в текст ошибки.
func (c *Closer) Add(name string, f Func) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, entry{name: name, fn: f})
}

// Close закрывает ресурсы по одному с конца. Если ctx истёк, оставшиеся закрываются
// параллельно с собственным таймаутом forcedTimeout. Повторные вызовы ничего не делают.
func (c *Closer) Close(ctx context.Context) error {
	var err error
	c.once.Do(func() {
		c.mu.Lock()
		entries := c.entries
		c.mu.Unlock()

		left, errs := c.closeInOrder(ctx, entries)
		if left > 0 {
			errs = append(errs, c.closeForced(entries[:left])...)
			err = fmt.Errorf("shutdown interrupted, %d/%d closed in order:\n%s",
				len(entries)-left, len(entries), strings.Join(errs, "\n"))
			return
		}

		if len(errs) > 0 {
			err = fmt.Errorf("shutdown finished with error(s):\n%s", strings.Join(errs, "\n"))
		}
	})

	return err
}

// closeInOrder возвращает число ресурсов, до которых не дошла очередь.
// Ресурс, на котором истёк ctx, тоже считается незакрытым.
func (c *Closer) closeInOrder(ctx context.Context, entries []entry) (int, []string) {
	var errs []string
	for i := len(entries) - 1; i >= 0; i-- {
		done := make(chan error, 1)
		go func(en entry) {
			done <- en.fn(ctx)
		}(entries[i])

		select {
		case err := <-done:
			if err != nil {
				errs = append(errs, fmt.Sprintf("[!] %s: %v", entries[i].name, err))
			}
		case <-ctx.Done():
			return i + 1, errs
		}
	}

	return 0, errs
}

func (c *Closer) closeForced(entries []entry) []string {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []string
	)

	ctx, cancel := context.WithTimeout(context.Background(), c.forcedTimeout)
	defer cancel()

	for _, en := range entries {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := en.fn(ctx); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Sprintf("[FORCED] %s: %v", en.name, err))
				mu.Unlock()
			}
		}()
	}

	wg.Wait()
	return errs
}
