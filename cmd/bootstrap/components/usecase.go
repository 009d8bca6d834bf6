package components

import (
	"chairtime/internal/infra/realtime"
	"chairtime/internal/integrations/userdir"
	"chairtime/internal/pkg/clock"
	"chairtime/internal/pkg/config"
	"chairtime/internal/usecase/commands"
	"chairtime/internal/usecase/notify"
	"chairtime/internal/usecase/queries"
	"chairtime/internal/usecase/shared"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseCommandsModule,
	usecaseQueriesModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	realtime.NewRedisPublisher,
	NewUserDirectory,
	notify.NewDispatcher,
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		NewBookingCommands,
		commands.NewApprovalUseCase,
		commands.NewChatUseCase,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		NewSlotQueries,
		queries.NewNotificationQueries,
		queries.NewChatQueries,
	),
)

func NewUserDirectory(cfg config.Config) notify.UserDirectory {
	return userdir.NewClient(cfg.UserDir)
}

func NewBookingCommands(u shared.UnitOfWork, dispatcher notify.Dispatcher, clk clock.Clock, cfg config.Config) commands.BookingCommands {
	return commands.NewBookingUseCase(u, dispatcher, clk, cfg.Booking.PendingTimeout())
}

func NewSlotQueries(store queries.SlotReadStore, clk clock.Clock, cfg config.Config) queries.SlotQueries {
	return queries.NewSlotQueries(store, clk, cfg.Booking.SlotGranularity())
}
