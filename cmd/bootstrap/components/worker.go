package components

import (
	"context"

	"chairtime/internal/pkg/clock"
	"chairtime/internal/pkg/config"
	"chairtime/internal/usecase/notify"
	"chairtime/internal/usecase/shared"
	"chairtime/internal/worker"

	"go.uber.org/fx"
)

var WorkerModule = fx.Module("worker",
	fx.Provide(
		NewSweeper,
	),
	fx.Invoke(runSweeper),
)

func NewSweeper(u shared.UnitOfWork, dispatcher notify.Dispatcher, clk clock.Clock, cfg config.Config) *worker.Sweeper {
	return worker.NewSweeper(u, dispatcher, clk, cfg.Booking.SweepInterval())
}

// runSweeper ties the sweeper loop to the fx lifecycle so shutdown waits
// for the current cycle to finish.
func runSweeper(lc fx.Lifecycle, sweeper *worker.Sweeper) {
	var cancel context.CancelFunc
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			runCtx, cancelFn := context.WithCancel(context.Background())
			cancel = cancelFn
			go func() {
				defer close(done)
				sweeper.Run(runCtx)
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			select {
			case <-done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	})
}
