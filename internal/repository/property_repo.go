package repository

import (
	"context"

	"proptrust/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PropertyRepository is the read-mostly lookup the ledger core needs when a
// trust account opens; property lifecycle management is the portal's concern.
type PropertyRepository interface {
	Create(ctx context.Context, p *model.Property) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Property, error)
	List(ctx context.Context, page, limit int) ([]model.Property, int64, error)
}

type propertyRepo struct{ db *gorm.DB }

func NewPropertyRepository(db *gorm.DB) PropertyRepository { return &propertyRepo{db: db} }

func (r *propertyRepo) Create(ctx context.Context, p *model.Property) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *propertyRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Property, error) {
	var p model.Property
	err := r.db.WithContext(ctx).First(&p, id).Error
	return &p, err
}

func (r *propertyRepo) List(ctx context.Context, page, limit int) ([]model.Property, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Property{}).Where("active = true")

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var props []model.Property
	err := q.Order("stand_number ASC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&props).Error
	return props, total, err
}
