package store

import (
	"errors"
	"fmt"
	"time"

	"radar-screener/internal/models"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a product lookup matches no row.
var ErrNotFound = errors.New("product not found")

// ProductStore persists tracked products.
type ProductStore struct {
	db *gorm.DB
}

func NewProductStore(db *gorm.DB) *ProductStore {
	return &ProductStore{db: db}
}

func (s *ProductStore) Create(product *models.Product) error {
	if err := s.db.Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

func (s *ProductStore) BySlug(slug string) (*models.Product, error) {
	var product models.Product
	err := s.db.Where("slug = ?", slug).First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load product %s: %w", slug, err)
	}
	return &product, nil
}

// All returns every tracked product, newest first.
func (s *ProductStore) All() ([]models.Product, error) {
	var products []models.Product
	if err := s.db.Order("created_at DESC").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

func (s *ProductStore) UpdateThreshold(slug string, threshold float64) error {
	result := s.db.Model(&models.Product{}).Where("slug = ?", slug).Update("dip_threshold", threshold)
	if result.Error != nil {
		return fmt.Errorf("failed to update threshold for %s: %w", slug, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a product together with its price history and alerts.
func (s *ProductStore) Delete(slug string) error {
	product, err := s.BySlug(slug)
	if err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", product.ID).Delete(&models.PricePoint{}).Error; err != nil {
			return fmt.Errorf("failed to delete price history for %s: %w", slug, err)
		}
		if err := tx.Where("product_id = ?", product.ID).Delete(&models.Alert{}).Error; err != nil {
			return fmt.Errorf("failed to delete alerts for %s: %w", slug, err)
		}
		if err := tx.Delete(product).Error; err != nil {
			return fmt.Errorf("failed to delete product %s: %w", slug, err)
		}
		return nil
	})
}

// PriceStore is the append-only price time series.
type PriceStore struct {
	db *gorm.DB
}

func NewPriceStore(db *gorm.DB) *PriceStore {
	return &PriceStore{db: db}
}

func (s *PriceStore) Append(productID uint, price float64, at time.Time) error {
	point := models.PricePoint{ProductID: productID, Price: price, ScannedAt: at}
	if err := s.db.Create(&point).Error; err != nil {
		return fmt.Errorf("failed to append price point: %w", err)
	}
	return nil
}

// Window returns all price points for a product since the given time,
// ordered by scan time ascending.
func (s *PriceStore) Window(productID uint, since time.Time) ([]models.PricePoint, error) {
	var points []models.PricePoint
	err := s.db.Where("product_id = ? AND scanned_at >= ?", productID, since).
		Order("scanned_at ASC").
		Find(&points).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load price window: %w", err)
	}
	return points, nil
}

// Oldest returns the earliest recorded price for a product, or nil when
// no history exists.
func (s *PriceStore) Oldest(productID uint) (*models.PricePoint, error) {
	var point models.PricePoint
	err := s.db.Where("product_id = ?", productID).Order("scanned_at ASC").First(&point).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load oldest price: %w", err)
	}
	return &point, nil
}

// AlertStore is the append-only alert log.
type AlertStore struct {
	db *gorm.DB
}

func NewAlertStore(db *gorm.DB) *AlertStore {
	return &AlertStore{db: db}
}

func (s *AlertStore) Append(alert *models.Alert) error {
	if err := s.db.Create(alert).Error; err != nil {
		return fmt.Errorf("failed to append alert: %w", err)
	}
	return nil
}

// CountRecent returns how many alerts were triggered for a product since
// the given time. Non-zero means the anti-spam window is still active.
func (s *AlertStore) CountRecent(productID uint, since time.Time) (int64, error) {
	var count int64
	err := s.db.Model(&models.Alert{}).
		Where("product_id = ? AND triggered_at >= ?", productID, since).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count recent alerts: %w", err)
	}
	return count, nil
}

func (s *AlertStore) Recent(limit int) ([]models.Alert, error) {
	var alerts []models.Alert
	if err := s.db.Order("triggered_at DESC").Limit(limit).Find(&alerts).Error; err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	return alerts, nil
}
