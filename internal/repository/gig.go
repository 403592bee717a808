package repository

import (
	"context"
	"errors"
	"time"

	"gigbuddy/internal/cache"
	"gigbuddy/internal/models"

	"gorm.io/gorm"
)

// GigFilter narrows gig listings.
type GigFilter struct {
	Genre        string
	Status       models.GigStatus
	UpcomingOnly bool
}

// GigRepository defines persistence operations for gigs.
type GigRepository interface {
	Create(ctx context.Context, gig *models.Gig) error
	GetByID(ctx context.Context, id uint) (*models.Gig, error)
	// OwnerID resolves only the owning user of a gig; used to run the
	// existence check before the ownership guard.
	OwnerID(ctx context.Context, id uint) (uint, error)
	List(ctx context.Context, filter GigFilter, limit, offset int) ([]models.Gig, error)
	GetByUserID(ctx context.Context, userID uint, limit, offset int) ([]models.Gig, error)
	Update(ctx context.Context, gig *models.Gig) error
	Delete(ctx context.Context, id uint) error
}

type gigRepository struct {
	db *gorm.DB
}

// NewGigRepository returns a new GigRepository implementation.
func NewGigRepository(db *gorm.DB) GigRepository {
	return &gigRepository{db: db}
}

func (r *gigRepository) Create(ctx context.Context, gig *models.Gig) error {
	if err := r.db.WithContext(ctx).Create(gig).Error; err != nil {
		if isForeignKeyError(err) {
			return models.NewReferenceError("Owning user does not exist")
		}
		return models.NewInternalError(err)
	}
	cache.Invalidate(ctx, cache.GigListKey())
	return nil
}

func (r *gigRepository) GetByID(ctx context.Context, id uint) (*models.Gig, error) {
	var gig models.Gig
	key := cache.GigKey(id)

	err := cache.Aside(ctx, key, &gig, cache.GigTTL, func() error {
		if err := r.db.WithContext(ctx).First(&gig, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Gig", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &gig, nil
}

func (r *gigRepository) OwnerID(ctx context.Context, id uint) (uint, error) {
	var gig models.Gig
	if err := r.db.WithContext(ctx).Select("id", "user_id").First(&gig, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, models.NewNotFoundError("Gig", id)
		}
		return 0, models.NewInternalError(err)
	}
	return gig.UserID, nil
}

func (r *gigRepository) List(ctx context.Context, filter GigFilter, limit, offset int) ([]models.Gig, error) {
	var gigs []models.Gig

	fetch := func() error {
		q := r.db.WithContext(ctx).Model(&models.Gig{})
		if filter.Genre != "" {
			q = q.Where("genre = ?", filter.Genre)
		}
		if filter.Status != "" {
			q = q.Where("status = ?", filter.Status)
		}
		if filter.UpcomingOnly {
			q = q.Where("event_time > ?", time.Now())
		}
		if err := q.Order("event_time ASC").Limit(limit).Offset(offset).Find(&gigs).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	}

	// Only the unfiltered first page is hot enough to cache.
	if filter == (GigFilter{}) && offset == 0 {
		if err := cache.Aside(ctx, cache.GigListKey(), &gigs, cache.GigListTTL, fetch); err != nil {
			return nil, err
		}
		return gigs, nil
	}

	if err := fetch(); err != nil {
		return nil, err
	}
	return gigs, nil
}

func (r *gigRepository) GetByUserID(ctx context.Context, userID uint, limit, offset int) ([]models.Gig, error) {
	var gigs []models.Gig
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("event_time ASC").
		Limit(limit).Offset(offset).
		Find(&gigs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return gigs, nil
}

func (r *gigRepository) Update(ctx context.Context, gig *models.Gig) error {
	if err := r.db.WithContext(ctx).Save(gig).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateGig(ctx, gig.ID)
	return nil
}

// Delete removes the gig and its membership rows in every collection in a
// single transaction: either all rows go or none do.
func (r *gigRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("gig_id = ?", id).Delete(&models.CollectionGig{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Gig{}, id).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateGig(ctx, id)
	return nil
}
