package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"civicity/couponhub/internal/model"
	"civicity/couponhub/internal/repository"
	"civicity/couponhub/pkg/couponcode"
)

const (
	// Batch size bounds. Out-of-range requests are clamped, not rejected.
	MinBatchSize = 1
	MaxBatchSize = 500

	defaultCollisionRetries = 5
)

// IssuanceService provisions coupon instances: bounded batches of fresh codes
// and the hand-off of a single available instance to a user.
type IssuanceService interface {
	// IssueBatch creates up to requestedCount instances in the available
	// state and returns the number actually created.
	IssueBatch(ctx context.Context, couponID uuid.UUID, requestedCount int, actorID uuid.UUID) (int, error)

	// AssignInstance hands one available instance to a user.
	AssignInstance(ctx context.Context, couponID, instanceID, userID uuid.UUID) error
}

type issuanceService struct {
	catalog       CatalogService
	instanceRepo  repository.CouponInstanceRepository
	allowInactive bool
	maxRetries    int
	logger        *zap.Logger

	// generate is swappable for collision testing.
	generate func(prefix string) (string, error)
}

func NewIssuanceService(
	catalog CatalogService,
	instanceRepo repository.CouponInstanceRepository,
	allowInactive bool,
	maxCollisionRetries int,
	logger *zap.Logger,
) IssuanceService {
	if maxCollisionRetries <= 0 {
		maxCollisionRetries = defaultCollisionRetries
	}
	return &issuanceService{
		catalog:       catalog,
		instanceRepo:  instanceRepo,
		allowInactive: allowInactive,
		maxRetries:    maxCollisionRetries,
		logger:        logger,
		generate: func(prefix string) (string, error) {
			return couponcode.Generate(prefix, couponcode.DefaultBodyLength)
		},
	}
}

func (s *issuanceService) IssueBatch(ctx context.Context, couponID uuid.UUID, requestedCount int, actorID uuid.UUID) (int, error) {
	coupon, err := s.catalog.GetCoupon(ctx, couponID)
	if err != nil {
		return 0, err
	}
	if !s.allowInactive && !coupon.RedeemableAt(time.Now()) {
		return 0, ErrCouponInactive
	}

	count := clampBatchSize(requestedCount)

	created := 0
	// One initial insert plus bounded retries for rows lost to the
	// (coupon_id, code) uniqueness constraint.
	for attempt := 0; created < count && attempt <= s.maxRetries; attempt++ {
		need := count - created
		batch := make([]model.CouponInstance, 0, need)
		for i := 0; i < need; i++ {
			code, err := s.generate(coupon.CodePrefix)
			if err != nil {
				return created, fmt.Errorf("generate code: %w", err)
			}
			batch = append(batch, model.CouponInstance{
				CouponID: coupon.ID,
				Code:     code,
				Status:   model.InstanceStatusAvailable,
				IssuedBy: actorID,
			})
		}

		inserted, err := s.instanceRepo.CreateBatch(ctx, batch)
		if err != nil {
			return created, fmt.Errorf("insert instances: %w", err)
		}
		created += int(inserted)

		if inserted < int64(need) {
			s.logger.Debug("code collision, regenerating",
				zap.String("coupon_id", coupon.ID.String()),
				zap.Int64("lost", int64(need)-inserted),
				zap.Int("attempt", attempt+1))
		}
	}

	if created < count {
		return created, fmt.Errorf("issue batch of %d for coupon %s: %w", count, coupon.ID, ErrCodeSpaceExhausted)
	}

	s.logger.Info("coupon batch issued",
		zap.String("coupon_id", coupon.ID.String()),
		zap.String("issued_by", actorID.String()),
		zap.Int("generated", created))
	return created, nil
}

func (s *issuanceService) AssignInstance(ctx context.Context, couponID, instanceID, userID uuid.UUID) error {
	ok, err := s.instanceRepo.Assign(ctx, couponID, instanceID, userID)
	if err != nil {
		return fmt.Errorf("assign instance: %w", err)
	}
	if !ok {
		return ErrInstanceUnavailable
	}
	return nil
}

func clampBatchSize(n int) int {
	if n < MinBatchSize {
		return MinBatchSize
	}
	if n > MaxBatchSize {
		return MaxBatchSize
	}
	return n
}
