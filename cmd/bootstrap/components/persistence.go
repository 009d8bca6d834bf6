package components

import (
	"chairtime/internal/infra/db"
	"chairtime/internal/infra/readstore"
	"chairtime/internal/infra/uow"
	"chairtime/internal/usecase/notify"
	"chairtime/internal/usecase/queries"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	fx.Provide(
		NewDBTX,
		// Write side: transactional unit of work over the pool
		uow.NewPostgresUoW,
		// Read side: stores backing the query layer
		fx.Annotate(
			readstore.NewSlotReadStore,
			fx.As(new(queries.SlotReadStore)),
		),
		fx.Annotate(
			readstore.NewNotificationReadStore,
			fx.As(new(queries.NotificationReadStore)),
		),
		fx.Annotate(
			readstore.NewChatReadStore,
			fx.As(new(queries.ChatReadStore)),
		),
		fx.Annotate(
			readstore.NewBadgeReadStore,
			fx.As(new(notify.BadgeCounter)),
		),
	),
)

func NewDBTX(pool *pgxpool.Pool) db.DBTX {
	return pool
}
