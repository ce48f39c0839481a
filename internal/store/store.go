// Package store is the persistence boundary for inventory records.
// "Not found" is a nil result, never an error; errors mean the write or
// the query itself failed.
package store

import (
	"errors"
	"fmt"

	"github.com/hikkoshi-box/hikkoshigo/internal/database"
	"github.com/hikkoshi-box/hikkoshigo/internal/models"
	"gorm.io/gorm"
)

// ProductStore is the record-store contract the suggestion pipeline
// depends on. Barcode uniqueness is enforced by the implementation.
type ProductStore interface {
	FindByBarcode(barcode string) (*models.Product, error)
	FindByID(id int64) (*models.Product, error)
	SearchByText(query string, limit int) ([]models.Product, error)
	Insert(p *models.Product) (int64, error)
	Update(p *models.Product) (int64, error)
	Delete(id int64) error
	List() ([]models.Product, error)
}

// GormStore implements ProductStore on top of the application database.
type GormStore struct {
	db *database.DB
}

// NewGormStore creates a ProductStore backed by db.
func NewGormStore(db *database.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) FindByBarcode(barcode string) (*models.Product, error) {
	var p models.Product
	err := s.db.Where("barcode = ?", barcode).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find by barcode: %w", err)
	}
	return &p, nil
}

func (s *GormStore) FindByID(id int64) (*models.Product, error) {
	var p models.Product
	err := s.db.First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find by id: %w", err)
	}
	return &p, nil
}

func (s *GormStore) SearchByText(query string, limit int) ([]models.Product, error) {
	var products []models.Product
	pattern := "%" + query + "%"
	err := s.db.
		Where("name ILIKE ? OR barcode ILIKE ? OR description ILIKE ?", pattern, pattern, pattern).
		Limit(limit).
		Order("updated_at DESC").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("search by text: %w", err)
	}
	return products, nil
}

func (s *GormStore) Insert(p *models.Product) (int64, error) {
	if err := s.db.Create(p).Error; err != nil {
		return 0, fmt.Errorf("insert product: %w", err)
	}
	return p.ID, nil
}

func (s *GormStore) Update(p *models.Product) (int64, error) {
	res := s.db.Save(p)
	if res.Error != nil {
		return 0, fmt.Errorf("update product: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (s *GormStore) Delete(id int64) error {
	if err := s.db.Delete(&models.Product{}, id).Error; err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

func (s *GormStore) List() ([]models.Product, error) {
	var products []models.Product
	if err := s.db.Order("created_at ASC").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}
