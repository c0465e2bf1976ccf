package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/labform/internal/labform/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) Insert(ctx context.Context, form *domain.LabForm) error {
	return r.db.WithContext(ctx).Create(form).Error
}

func (r *repository) List(ctx context.Context, filter domain.ListFilter) ([]domain.LabForm, error) {
	items := []domain.LabForm{}
	stmt := r.db.WithContext(ctx).Model(&domain.LabForm{})

	if filter.CarNo != "" {
		stmt = stmt.Where("car_no = ?", filter.CarNo)
	}

	if err := stmt.Order("created_at DESC").Order("id DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) Delete(ctx context.Context, id snowflake.ID) (bool, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.LabForm{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
