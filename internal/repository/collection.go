package repository

import (
	"context"
	"errors"

	"gigbuddy/internal/models"

	"gorm.io/gorm"
)

// CollectionRepository defines persistence operations for collections and
// their gig memberships.
type CollectionRepository interface {
	Create(ctx context.Context, collection *models.Collection) error
	GetByID(ctx context.Context, id uint) (*models.Collection, error)
	// OwnerID resolves only the owning user of a collection; used to run
	// the existence check before the ownership guard.
	OwnerID(ctx context.Context, id uint) (uint, error)
	ListPublic(ctx context.Context, limit, offset int) ([]models.Collection, error)
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Collection, error)
	Update(ctx context.Context, collection *models.Collection) error
	Delete(ctx context.Context, id uint) error
	AddGig(ctx context.Context, collectionID, gigID uint) error
	RemoveGig(ctx context.Context, collectionID, gigID uint) error
}

type collectionRepository struct {
	db *gorm.DB
}

// NewCollectionRepository returns a new CollectionRepository implementation.
func NewCollectionRepository(db *gorm.DB) CollectionRepository {
	return &collectionRepository{db: db}
}

func (r *collectionRepository) Create(ctx context.Context, collection *models.Collection) error {
	if err := r.db.WithContext(ctx).Create(collection).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("You already have a collection with this name")
		}
		if isForeignKeyError(err) {
			return models.NewReferenceError("Owning user does not exist")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *collectionRepository) GetByID(ctx context.Context, id uint) (*models.Collection, error) {
	var collection models.Collection
	if err := r.db.WithContext(ctx).
		Preload("Gigs").
		First(&collection, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Collection", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &collection, nil
}

func (r *collectionRepository) OwnerID(ctx context.Context, id uint) (uint, error) {
	var collection models.Collection
	if err := r.db.WithContext(ctx).Select("id", "user_id").First(&collection, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, models.NewNotFoundError("Collection", id)
		}
		return 0, models.NewInternalError(err)
	}
	return collection.UserID, nil
}

func (r *collectionRepository) ListPublic(ctx context.Context, limit, offset int) ([]models.Collection, error) {
	var collections []models.Collection
	if err := r.db.WithContext(ctx).
		Where("public = ?", true).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&collections).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return collections, nil
}

func (r *collectionRepository) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Collection, error) {
	var collections []models.Collection
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&collections).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return collections, nil
}

func (r *collectionRepository) Update(ctx context.Context, collection *models.Collection) error {
	if err := r.db.WithContext(ctx).Save(collection).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("You already have a collection with this name")
		}
		return models.NewInternalError(err)
	}
	return nil
}

// Delete removes the collection and all of its membership rows in a single
// transaction: either all rows go or none do.
func (r *collectionRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("collection_id = ?", id).Delete(&models.CollectionGig{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Collection{}, id).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// AddGig inserts a membership row. The composite primary key makes the
// operation idempotent-rejecting: a duplicate pair maps to a 409, never a
// second row.
func (r *collectionRepository) AddGig(ctx context.Context, collectionID, gigID uint) error {
	row := models.CollectionGig{CollectionID: collectionID, GigID: gigID}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Gig is already in this collection")
		}
		if isForeignKeyError(err) {
			return models.NewReferenceError("Referenced gig or collection does not exist")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *collectionRepository) RemoveGig(ctx context.Context, collectionID, gigID uint) error {
	res := r.db.WithContext(ctx).
		Where("collection_id = ? AND gig_id = ?", collectionID, gigID).
		Delete(&models.CollectionGig{})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Collection membership", gigID)
	}
	return nil
}
