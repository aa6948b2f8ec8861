package rate

import (
	"context"
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryLimiter: ventana fija en memoria de proceso. Para despliegues de una
// sola réplica o entornos sin Redis; los contadores no se comparten entre
// instancias.
type MemoryLimiter struct {
	cache  *gocache.Cache
	max    int64
	window time.Duration
}

func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		cache:  gocache.New(window, 2*window),
		max:    int64(max),
		window: window,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	now := time.Now().UTC()
	winStart := now.Truncate(l.window)
	winEnd := winStart.Add(l.window)
	cacheKey := fmt.Sprintf("%s:%d", strings.ReplaceAll(key, " ", "_"), winStart.Unix())

	// Add falla si la ventana ya existe; en ambos casos el increment opera
	// sobre el contador de esta ventana.
	_ = l.cache.Add(cacheKey, int64(0), winEnd.Sub(now))
	hits, err := l.cache.IncrementInt64(cacheKey, 1)
	if err != nil {
		// El contador expiró entre Add e Increment: reabrimos la ventana.
		l.cache.Set(cacheKey, int64(1), winEnd.Sub(now))
		hits = 1
	}

	allowed := hits <= l.max
	remaining := l.max - hits
	if remaining < 0 {
		remaining = 0
	}

	res := Result{
		Allowed:     allowed,
		Remaining:   remaining,
		CurrentHits: hits,
		WindowTTL:   winEnd.Sub(now),
	}
	if !allowed {
		res.RetryAfter = winEnd.Sub(now)
	}
	return res, nil
}
