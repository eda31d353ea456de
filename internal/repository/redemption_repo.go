package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"civicity/couponhub/internal/model"
)

type RedemptionRepository interface {
	// Redeem transitions one instance from assigned to redeemed and appends
	// the ledger entry, both inside a single transaction. Returns won=false
	// when the instance was no longer in the assigned state at write time (a
	// concurrent redemption won the race); in that case no row is written.
	Redeem(ctx context.Context, instanceID uuid.UUID, redeemedAt time.Time, entry *model.Redemption) (won bool, err error)

	CountByInstance(ctx context.Context, instanceID uuid.UUID) (int64, error)
}
