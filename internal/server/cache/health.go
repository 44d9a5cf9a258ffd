package cache

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/logging"
)

// Pinger is anything with a health probe, such as RedisStore.
type Pinger interface {
	Health(ctx context.Context) error
}

// WatchHealth probes p every interval until ctx is done and logs when the
// store goes down or comes back. Authentication keeps working while the
// store is down, so an outage is only a warning. It returns nil on ctx done.
func WatchHealth(ctx context.Context, p Pinger, interval time.Duration, l logging.Logger) error {
	if l == nil {
		l = logging.Nop{}
	}
	l = l.With("module", "cache")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	healthy := true
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		pctx, cancel := context.WithTimeout(ctx, interval)
		err := p.Health(pctx)
		cancel()

		switch {
		case err != nil && healthy:
			healthy = false
			l.Warn(ctx, "identity cache unreachable", "error", err.Error())
		case err == nil && !healthy:
			healthy = true
			l.Info(ctx, "identity cache reachable again")
		}
	}
}
