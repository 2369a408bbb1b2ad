package services

import (
	"context"
	"fmt"
	"strings"

	"fund-portal/models"

	"gorm.io/gorm"
)

// GormLookupSource reads the name tables directly from the fund database replica.
type GormLookupSource struct {
	db *gorm.DB
}

func NewGormLookupSource(db *gorm.DB) *GormLookupSource {
	return &GormLookupSource{db: db}
}

func (s *GormLookupSource) LoadLookups(ctx context.Context) (models.Lookups, error) {
	lookups := models.Lookups{
		Categories:    map[int]string{},
		Subcategories: map[int]string{},
	}

	var categories []models.FundCategory
	if err := s.db.WithContext(ctx).Where("delete_at IS NULL").Find(&categories).Error; err != nil {
		return lookups, fmt.Errorf("failed to load fund categories: %w", err)
	}
	for _, category := range categories {
		if name := strings.TrimSpace(category.CategoryName); name != "" {
			lookups.Categories[category.CategoryID] = name
		}
	}

	var subcategories []models.FundSubcategory
	if err := s.db.WithContext(ctx).Where("delete_at IS NULL").Find(&subcategories).Error; err != nil {
		return lookups, fmt.Errorf("failed to load fund subcategories: %w", err)
	}
	for _, sub := range subcategories {
		if name := strings.TrimSpace(sub.SubcategoryName); name != "" {
			lookups.Subcategories[sub.SubcategoryID] = name
		}
	}
	return lookups, nil
}
