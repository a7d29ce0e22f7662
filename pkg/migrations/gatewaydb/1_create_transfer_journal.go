package gatewaydb

import (
	"context"
	"log"

	mghelper "github.com/chainsafe/canton-ledger-gateway/pkg/pgutil/migrations"
	"github.com/chainsafe/canton-ledger-gateway/pkg/transferlog"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		log.Println("creating transfer_journal table...")
		if err := mghelper.CreateSchema(ctx, db, &transferlog.TransferDao{}); err != nil {
			return err
		}
		return mghelper.CreateModelIndexes(ctx, db, &transferlog.TransferDao{}, "sender", "receiver", "transaction_id")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping transfer_journal table...")
		return mghelper.DropTables(ctx, db, &transferlog.TransferDao{})
	})
}
