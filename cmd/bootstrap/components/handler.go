package components

import (
	"chairtime/internal/handler"
	"chairtime/internal/handler/api"
	"chairtime/internal/handler/middleware"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewBookingHandler,
		api.NewSlotHandler,
		api.NewChatHandler,
		api.NewNotificationHandler,
		middleware.NewAuthMiddleware,
	),
	fx.Invoke(handler.NewRouter),
)
