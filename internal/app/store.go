package app

import (
	"context"

	"github.com/adanyl0v/taskflow/internal/config"
	"github.com/adanyl0v/taskflow/internal/store"
)

var (
	globalStore      *store.Store
	stopStoreJanitor context.CancelFunc
	storeJanitorDone chan struct{}
)

func MustInitStore() {
	cfg := config.Global().Session

	globalStore = store.New(cfg.IdleTTL, nil)

	var ctx context.Context
	ctx, stopStoreJanitor = context.WithCancel(context.Background())
	storeJanitorDone = make(chan struct{})
	go func() {
		defer close(storeJanitorDone)
		globalStore.RunJanitor(ctx, cfg.SweepInterval, func(removed int) {
			if removed == 0 {
				return
			}
			globalLogger.Debug().
				Int("removed", removed).
				Int("remaining", globalStore.Len()).
				Msg("swept idle sessions")
		})
	}()

	globalLogger.Info().
		Dur("idle_ttl", cfg.IdleTTL).
		Dur("sweep_interval", cfg.SweepInterval).
		Msg("initialized session store")
}

func CloseStore() {
	stopStoreJanitor()
	<-storeJanitorDone
	globalLogger.Info().
		Int("sessions", globalStore.Len()).
		Msg("closed session store")
}
