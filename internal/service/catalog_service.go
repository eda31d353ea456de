package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"civicity/couponhub/internal/model"
	"civicity/couponhub/internal/repository"
	"civicity/couponhub/pkg/couponcode"
)

var codePrefixPattern = regexp.MustCompile(`^[A-Z0-9]{2,16}$`)

type CreateCouponInput struct {
	MerchantID uuid.UUID
	CodePrefix string
	StartsAt   *time.Time
	ExpiresAt  *time.Time
}

// CatalogService owns coupon definitions: the read view consumed by issuance
// and redemption, plus the operator lifecycle (create, deactivate).
type CatalogService interface {
	CreateCoupon(ctx context.Context, in CreateCouponInput) (*model.Coupon, error)
	GetCoupon(ctx context.Context, id uuid.UUID) (*model.Coupon, error)
	ListCoupons(ctx context.Context) ([]model.Coupon, error)
	DeactivateCoupon(ctx context.Context, id uuid.UUID) error
}

type catalogService struct {
	couponRepo repository.CouponRepository
	cache      repository.CatalogCache
	cacheTTL   time.Duration
	logger     *zap.Logger
}

func NewCatalogService(couponRepo repository.CouponRepository, cache repository.CatalogCache, cacheTTL time.Duration, logger *zap.Logger) CatalogService {
	return &catalogService{
		couponRepo: couponRepo,
		cache:      cache,
		cacheTTL:   cacheTTL,
		logger:     logger,
	}
}

func (s *catalogService) CreateCoupon(ctx context.Context, in CreateCouponInput) (*model.Coupon, error) {
	prefix := in.CodePrefix
	if prefix == "" {
		prefix = couponcode.DefaultPrefix
	}
	if !codePrefixPattern.MatchString(prefix) {
		return nil, ErrInvalidCodePrefix
	}

	coupon := &model.Coupon{
		MerchantID: in.MerchantID,
		CodePrefix: prefix,
		Active:     true,
		StartsAt:   in.StartsAt,
		ExpiresAt:  in.ExpiresAt,
	}
	if err := s.couponRepo.Create(ctx, coupon); err != nil {
		return nil, fmt.Errorf("create coupon: %w", err)
	}
	return coupon, nil
}

func (s *catalogService) GetCoupon(ctx context.Context, id uuid.UUID) (*model.Coupon, error) {
	key := cacheKey(id)

	if raw, err := s.cache.Get(ctx, key); err != nil {
		s.logger.Warn("coupon cache read failed", zap.String("coupon_id", id.String()), zap.Error(err))
	} else if raw != nil {
		var coupon model.Coupon
		if err := json.Unmarshal(raw, &coupon); err == nil {
			return &coupon, nil
		}
		// Unreadable entry; fall through to the store and overwrite it.
	}

	coupon, err := s.couponRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCouponNotFound
		}
		return nil, fmt.Errorf("load coupon: %w", err)
	}

	if raw, err := json.Marshal(coupon); err == nil {
		if err := s.cache.Set(ctx, key, raw, s.cacheTTL); err != nil {
			s.logger.Warn("coupon cache write failed", zap.String("coupon_id", id.String()), zap.Error(err))
		}
	}
	return coupon, nil
}

func (s *catalogService) ListCoupons(ctx context.Context) ([]model.Coupon, error) {
	return s.couponRepo.List(ctx)
}

func (s *catalogService) DeactivateCoupon(ctx context.Context, id uuid.UUID) error {
	if err := s.couponRepo.Deactivate(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCouponNotFound
		}
		return fmt.Errorf("deactivate coupon: %w", err)
	}
	if err := s.cache.Delete(ctx, cacheKey(id)); err != nil {
		s.logger.Warn("coupon cache invalidation failed", zap.String("coupon_id", id.String()), zap.Error(err))
	}
	return nil
}

func cacheKey(id uuid.UUID) string {
	return "coupon:" + id.String()
}
