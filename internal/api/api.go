package api

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"radar-screener/internal/models"
	"radar-screener/internal/scanner"
	"radar-screener/internal/services/notify"
	"radar-screener/internal/store"

	"github.com/gin-gonic/gin"
)

// slugPattern extracts the product slug from a StockX URL, with or without
// a two-letter locale prefix: stockx.com/fr/air-jordan-1 -> air-jordan-1.
var slugPattern = regexp.MustCompile(`stockx\.com/(?:[a-z]{2}/)?([a-zA-Z0-9-]+)(?:\?|$|/)`)

type APIHandler struct {
	products  *store.ProductStore
	prices    *store.PriceStore
	alerts    *store.AlertStore
	source    scanner.PriceSource
	scheduler *scanner.Scheduler
	telegram  *notify.Telegram
	hub       *notify.Hub

	defaultThreshold float64
}

func SetupRoutes(r *gin.RouterGroup, products *store.ProductStore, prices *store.PriceStore, alerts *store.AlertStore,
	source scanner.PriceSource, scheduler *scanner.Scheduler, telegram *notify.Telegram, hub *notify.Hub,
	defaultThreshold float64) *APIHandler {

	handler := &APIHandler{
		products:         products,
		prices:           prices,
		alerts:           alerts,
		source:           source,
		scheduler:        scheduler,
		telegram:         telegram,
		hub:              hub,
		defaultThreshold: defaultThreshold,
	}

	r.POST("/products", handler.CreateProduct)
	r.GET("/products", handler.ListProducts)
	r.PATCH("/products/:slug", handler.UpdateThreshold)
	r.DELETE("/products/:slug", handler.DeleteProduct)
	r.GET("/products/:slug/history", handler.GetHistory)

	r.GET("/alerts", handler.ListAlerts)
	r.POST("/scan", handler.TriggerScan)
	r.GET("/export", handler.Export)

	r.GET("/health", handler.Health)
	r.GET("/test-telegram", handler.TestTelegram)
	r.GET("/ws", handler.AlertFeed)

	return handler
}

type createProductRequest struct {
	URL       string   `json:"url"`
	Threshold *float64 `json:"threshold"`
}

// CreateProduct registers a StockX URL for tracking. The current price is
// fetched synchronously so the product starts with a reference snapshot
// and one price point.
func (h *APIHandler) CreateProduct(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.URL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid 'url' in body"})
		return
	}

	slug := slugFromURL(req.URL)
	if slug == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not extract product slug from URL"})
		return
	}

	if _, err := h.products.BySlug(slug); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": fmt.Sprintf("product with slug '%s' already exists", slug)})
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	threshold := h.defaultThreshold
	if req.Threshold != nil {
		threshold = *req.Threshold
		if threshold < 1 || threshold > 99 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid threshold (must be 1-99)"})
			return
		}
	}

	price, err := h.source.FetchPrice(c.Request.Context(), slug)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": fmt.Sprintf("could not fetch StockX price: %v", err)})
		return
	}

	product := models.Product{
		Slug:           slug,
		Name:           slugToName(slug),
		DipThreshold:   &threshold,
		ReferencePrice: &price,
	}
	if err := h.products.Create(&product); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := h.prices.Append(product.ID, price, time.Now()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, product)
}

type enrichedProduct struct {
	models.Product
	LastPrice        *float64 `json:"last_price"`
	DisplayReference *float64 `json:"display_reference_price"`
	DiscountPct      *float64 `json:"discount_pct"`
}

// ListProducts returns all products enriched with their latest price and a
// display discount against the registration snapshot (falling back to the
// oldest recorded price). The scan's own dip logic uses the rolling median
// instead; this discount is informational only.
func (h *APIHandler) ListProducts(c *gin.Context) {
	products, err := h.products.All()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	enriched := make([]enrichedProduct, 0, len(products))
	for _, product := range products {
		item, err := h.enrich(product)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		enriched = append(enriched, item)
	}
	c.JSON(http.StatusOK, enriched)
}

func (h *APIHandler) enrich(product models.Product) (enrichedProduct, error) {
	item := enrichedProduct{Product: product}

	window, err := h.prices.Window(product.ID, time.Now().Add(-30*24*time.Hour))
	if err != nil {
		return item, err
	}
	if len(window) > 0 {
		last := window[len(window)-1].Price
		item.LastPrice = &last
	}

	reference := product.ReferencePrice
	if reference == nil {
		oldest, err := h.prices.Oldest(product.ID)
		if err != nil {
			return item, err
		}
		if oldest != nil {
			reference = &oldest.Price
		}
	}
	item.DisplayReference = reference

	if item.LastPrice != nil && reference != nil && *reference > 0 {
		discount := (*reference - *item.LastPrice) / *reference * 100
		item.DiscountPct = &discount
	}
	return item, nil
}

type updateThresholdRequest struct {
	Threshold *float64 `json:"threshold"`
}

func (h *APIHandler) UpdateThreshold(c *gin.Context) {
	var req updateThresholdRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Threshold == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing 'threshold' in body"})
		return
	}
	if *req.Threshold < 1 || *req.Threshold > 99 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid threshold (must be 1-99)"})
		return
	}

	err := h.products.UpdateThreshold(c.Param("slug"), *req.Threshold)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("product '%s' not found", c.Param("slug"))})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *APIHandler) DeleteProduct(c *gin.Context) {
	err := h.products.Delete(c.Param("slug"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("product '%s' not found", c.Param("slug"))})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *APIHandler) GetHistory(c *gin.Context) {
	product, err := h.products.BySlug(c.Param("slug"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("product '%s' not found", c.Param("slug"))})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	window, err := h.prices.Window(product.ID, time.Now().Add(-30*24*time.Hour))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, window)
}

func (h *APIHandler) ListAlerts(c *gin.Context) {
	alerts, err := h.alerts.Recent(50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, alerts)
}

// TriggerScan runs a synchronous scan through the same entry point the
// scheduler uses. If a scan is already in flight the trigger is dropped.
func (h *APIHandler) TriggerScan(c *gin.Context) {
	result, ran, err := h.scheduler.Trigger(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !ran {
		c.JSON(http.StatusConflict, gin.H{"error": "scan already in progress"})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *APIHandler) Health(c *gin.Context) {
	var next *string
	if t := h.scheduler.NextRun(); !t.IsZero() {
		formatted := t.UTC().Format(time.RFC3339)
		next = &formatted
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "next_scan": next})
}

func (h *APIHandler) TestTelegram(c *gin.Context) {
	if err := h.telegram.SendTest(); err != nil {
		c.JSON(http.StatusOK, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "message": "test message sent"})
}

func (h *APIHandler) AlertFeed(c *gin.Context) {
	h.hub.HandleUpgrade(c.Writer, c.Request)
}

func slugFromURL(url string) string {
	match := slugPattern.FindStringSubmatch(url)
	if match == nil {
		return ""
	}
	return match[1]
}

// slugToName turns a slug into a display name, e.g.
// labubu-the-monsters-zimomo -> Labubu The Monsters Zimomo.
func slugToName(slug string) string {
	words := strings.Split(slug, "-")
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
