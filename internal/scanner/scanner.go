package scanner

import (
	"context"
	"fmt"
	"log"
	"time"

	"radar-screener/internal/models"
)

const historyWindow = 30 * 24 * time.Hour

// PriceSource fetches the current lowest ask for a product slug. The
// implementation is expected to pace its own requests.
type PriceSource interface {
	FetchPrice(ctx context.Context, slug string) (float64, error)
}

// ProductStore lists the products to scan.
type ProductStore interface {
	All() ([]models.Product, error)
}

// PriceStore is the append-only price time series.
type PriceStore interface {
	Append(productID uint, price float64, at time.Time) error
	Window(productID uint, since time.Time) ([]models.PricePoint, error)
}

// AlertStore is the append-only alert log.
type AlertStore interface {
	Append(alert *models.Alert) error
	CountRecent(productID uint, since time.Time) (int64, error)
}

// Notifier delivers a raised alert. Best effort: a delivery failure is
// logged by the scanner and never fails the scan.
type Notifier interface {
	Notify(alert models.Alert) error
}

// ScanResult aggregates one full scan.
type ScanResult struct {
	Scanned   int `json:"scanned"`
	DipsFound int `json:"dips_found"`
}

// Scanner drives the per-product fetch/persist/detect/notify pipeline.
type Scanner struct {
	products ProductStore
	prices   PriceStore
	alerts   AlertStore
	source   PriceSource
	notifier Notifier

	defaultThreshold float64
	antiSpamWindow   time.Duration
	now              func() time.Time
}

func New(products ProductStore, prices PriceStore, alerts AlertStore, source PriceSource, notifier Notifier, defaultThreshold float64, antiSpamWindow time.Duration) *Scanner {
	return &Scanner{
		products:         products,
		prices:           prices,
		alerts:           alerts,
		source:           source,
		notifier:         notifier,
		defaultThreshold: defaultThreshold,
		antiSpamWindow:   antiSpamWindow,
		now:              time.Now,
	}
}

// ScanAll scans every tracked product sequentially. A fetch failure skips
// that product and the scan continues; a store failure aborts the scan.
// With zero tracked products no collaborator is contacted.
func (s *Scanner) ScanAll(ctx context.Context) (ScanResult, error) {
	products, err := s.products.All()
	if err != nil {
		return ScanResult{}, fmt.Errorf("scan aborted: %w", err)
	}
	if len(products) == 0 {
		log.Println("No products to scan")
		return ScanResult{}, nil
	}

	var result ScanResult
	for _, product := range products {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("scan interrupted after %d products: %w", result.Scanned, err)
		}

		updated, alerted, err := s.scanProduct(ctx, product)
		if err != nil {
			return result, fmt.Errorf("scan aborted at %s: %w", product.Slug, err)
		}
		if updated {
			result.Scanned++
		}
		if alerted {
			result.DipsFound++
		}
	}

	log.Printf("Scan complete: %d products scanned, %d dips found", result.Scanned, result.DipsFound)
	return result, nil
}

// scanProduct runs the pipeline for one product. The returned error is
// non-nil only for store failures; fetch and delivery failures are handled
// here and reported through the two booleans.
func (s *Scanner) scanProduct(ctx context.Context, product models.Product) (priceUpdated, alertSent bool, err error) {
	price, err := s.source.FetchPrice(ctx, product.Slug)
	if err != nil {
		log.Printf("Skipping %s: %v", product.Slug, err)
		return false, false, nil
	}

	now := s.now()
	if err := s.prices.Append(product.ID, price, now); err != nil {
		return false, false, err
	}

	history, err := s.prices.Window(product.ID, now.Add(-historyWindow))
	if err != nil {
		return true, false, err
	}

	result := Detect(history, price, s.threshold(product))
	if result.Insufficient || !result.Dip {
		return true, false, nil
	}

	recent, err := s.alerts.CountRecent(product.ID, now.Add(-s.antiSpamWindow))
	if err != nil {
		return true, false, err
	}
	if recent > 0 {
		log.Printf("Dip on %s suppressed, alert already sent within anti-spam window", product.Slug)
		return true, false, nil
	}

	alert := models.Alert{
		ProductID:      product.ID,
		ProductName:    product.Name,
		Slug:           product.Slug,
		AlertPrice:     price,
		ReferencePrice: result.ReferencePrice,
		DiscountPct:    result.DiscountPct,
		TriggeredAt:    now,
	}
	if err := s.alerts.Append(&alert); err != nil {
		return true, false, err
	}

	// The alert counts as raised once persisted; delivery is best effort.
	if err := s.notifier.Notify(alert); err != nil {
		log.Printf("Failed to deliver alert for %s: %v", product.Slug, err)
	}

	log.Printf("Dip alert for %s: price %.2f, median %.2f, discount %.1f%%",
		product.Slug, price, result.ReferencePrice, result.DiscountPct)
	return true, true, nil
}

// threshold resolves the dip threshold for a product: its own value when
// set, otherwise the process-wide default.
func (s *Scanner) threshold(product models.Product) float64 {
	if product.DipThreshold != nil && *product.DipThreshold > 0 {
		return *product.DipThreshold
	}
	return s.defaultThreshold
}
