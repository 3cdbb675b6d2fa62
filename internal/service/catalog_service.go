package service

import (
	"context"
	"strings"

	"pos-service/internal/models"
	"pos-service/internal/util"

	"go.uber.org/zap"
)

// demoProducts is the baked-in catalog used when a document has no
// products yet.
var demoProducts = []models.Product{
	{ID: "p1", Name: "Hamburguesa", Price: 18000, Category: "Comidas", Active: true},
	{ID: "p2", Name: "Perro Caliente", Price: 12000, Category: "Comidas", Active: true},
	{ID: "p3", Name: "Salchipapa", Price: 15000, Category: "Comidas", Active: true},
	{ID: "p4", Name: "Picada Personal", Price: 22000, Category: "Comidas", Active: true},
	{ID: "p5", Name: "Limonada Natural", Price: 6000, Category: "Bebidas", Active: true},
	{ID: "p6", Name: "Gaseosa", Price: 5000, Category: "Bebidas", Active: true},
	{ID: "p7", Name: "Cerveza", Price: 7000, Category: "Bebidas", Active: true},
	{ID: "p8", Name: "Café", Price: 3000, Category: "Bebidas", Active: true},
}

// EnsureInitialized guarantees the document is complete. An absent
// document becomes a fresh one with the demo catalog and tableCount
// free tables. A present document gets any missing collection filled
// in. Returns the same pointer when nothing needed fixing, so callers
// can use identity to decide whether to persist. Idempotent.
func EnsureInitialized(doc *models.Document, tableCount int) *models.Document {
	if doc == nil {
		products := make([]models.Product, len(demoProducts))
		copy(products, demoProducts)

		return &models.Document{
			TableCount:     tableCount,
			Tables:         makeTables(1, tableCount),
			Orders:         map[string]*models.Order{},
			Sales:          []models.Sale{},
			Products:       products,
			Users:          []models.User{},
			Categories:     deriveCategories(products),
			KitchenTickets: []models.KitchenTicket{},
		}
	}

	changed := false
	next := *doc

	if len(next.Products) == 0 {
		next.Products = make([]models.Product, len(demoProducts))
		copy(next.Products, demoProducts)
		changed = true
	}
	if next.Orders == nil {
		next.Orders = map[string]*models.Order{}
		changed = true
	}
	if next.Sales == nil {
		next.Sales = []models.Sale{}
		changed = true
	}
	if next.Tables == nil {
		next.Tables = []models.Table{}
		changed = true
	}
	if next.Users == nil {
		next.Users = []models.User{}
		changed = true
	}
	if len(next.Categories) == 0 {
		next.Categories = deriveCategories(next.Products)
		changed = true
	}
	if next.KitchenTickets == nil {
		next.KitchenTickets = []models.KitchenTicket{}
		changed = true
	}

	if !changed {
		return doc
	}
	return &next
}

func makeTables(firstID, count int) []models.Table {
	tables := make([]models.Table, 0, count)
	for id := firstID; id < firstID+count; id++ {
		tables = append(tables, models.Table{
			ID:     id,
			Status: models.TableStatusFree,
		})
	}
	return tables
}

func deriveCategories(products []models.Product) []string {
	seen := map[string]bool{}
	var categories []string
	for _, p := range products {
		if p.Category == "" || seen[p.Category] {
			continue
		}
		seen[p.Category] = true
		categories = append(categories, p.Category)
	}
	if len(categories) == 0 {
		return []string{"Comidas", "Bebidas"}
	}
	return categories
}

// CatalogService manages the product catalog inside the document.
type CatalogService struct {
	store      DocumentStore
	tableCount int
	logger     *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(store DocumentStore, tableCount int) *CatalogService {
	return &CatalogService{
		store:      store,
		tableCount: tableCount,
		logger:     util.GetLogger(),
	}
}

// Products returns the catalog, optionally filtered to active items.
func (s *CatalogService) Products(ctx context.Context, onlyActive bool) ([]models.Product, error) {
	doc, err := loadDocument(ctx, s.store, s.tableCount)
	if err != nil {
		return nil, err
	}

	if !onlyActive {
		return doc.Products, nil
	}

	products := make([]models.Product, 0, len(doc.Products))
	for _, p := range doc.Products {
		if p.Active {
			products = append(products, p)
		}
	}
	return products, nil
}

// Categories returns the known product categories.
func (s *CatalogService) Categories(ctx context.Context) ([]string, error) {
	doc, err := loadDocument(ctx, s.store, s.tableCount)
	if err != nil {
		return nil, err
	}
	return doc.Categories, nil
}

// CreateProduct adds a product to the catalog.
func (s *CatalogService) CreateProduct(ctx context.Context, name, category string, price int64) (*models.Product, error) {
	name = strings.TrimSpace(name)
	category = strings.TrimSpace(category)
	if name == "" || category == "" {
		return nil, ErrMissingFields
	}
	if price <= 0 {
		return nil, ErrInvalidPrice
	}

	doc, err := loadDocument(ctx, s.store, s.tableCount)
	if err != nil {
		return nil, err
	}

	product := models.Product{
		ID:       newID("p"),
		Name:     name,
		Price:    price,
		Category: category,
		Active:   true,
	}
	doc.Products = append(doc.Products, product)
	doc.Categories = deriveCategories(doc.Products)

	if err := saveDocument(ctx, s.store, doc); err != nil {
		return nil, err
	}

	s.logger.Info("Product created",
		zap.String("product_id", product.ID),
		zap.String("name", product.Name))
	return &product, nil
}

// UpdateProduct edits name, category and price of an existing product.
// The product id is immutable.
func (s *CatalogService) UpdateProduct(ctx context.Context, productID, name, category string, price int64) (*models.Product, error) {
	name = strings.TrimSpace(name)
	category = strings.TrimSpace(category)
	if name == "" || category == "" {
		return nil, ErrMissingFields
	}
	if price <= 0 {
		return nil, ErrInvalidPrice
	}

	doc, err := loadDocument(ctx, s.store, s.tableCount)
	if err != nil {
		return nil, err
	}

	product := findProduct(doc, productID)
	if product == nil {
		return nil, ErrProductNotFound
	}

	product.Name = name
	product.Category = category
	product.Price = price
	doc.Categories = deriveCategories(doc.Products)

	if err := saveDocument(ctx, s.store, doc); err != nil {
		return nil, err
	}
	return product, nil
}

// ToggleActive flips the soft-delete flag. Inactive products are
// hidden from ordering but kept for historical report lookups.
func (s *CatalogService) ToggleActive(ctx context.Context, productID string) (*models.Product, error) {
	doc, err := loadDocument(ctx, s.store, s.tableCount)
	if err != nil {
		return nil, err
	}

	product := findProduct(doc, productID)
	if product == nil {
		return nil, ErrProductNotFound
	}

	product.Active = !product.Active

	if err := saveDocument(ctx, s.store, doc); err != nil {
		return nil, err
	}

	s.logger.Info("Product active flag toggled",
		zap.String("product_id", product.ID),
		zap.Bool("active", product.Active))
	return product, nil
}
