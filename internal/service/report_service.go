package service

import (
	"context"
	"math"
	"sort"
	"time"

	"pos-service/internal/models"
	"pos-service/internal/util"

	"go.uber.org/zap"
)

// Placeholder names used when a sale lacks attribution, matching the
// labels the cash register historically printed.
const (
	unknownWaiter   = "Sin mesero"
	unknownMethod   = "desconocido"
	unknownProduct  = "Producto"
	unknownCategory = "Sin categoría"
)

// RangePreset is a reporting window. Boundaries are computed in the
// viewer's local time zone.
type RangePreset struct {
	Key   string    `json:"key"`
	Label string    `json:"label"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// RangePresets returns the supported reporting windows relative to
// now: today, yesterday, rolling last 7 days (including today) and the
// current calendar month.
func RangePresets(now time.Time) map[string]RangePreset {
	loc := now.Location()

	startOfToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	endOfToday := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, int(999*time.Millisecond), loc)

	startOfYesterday := startOfToday.AddDate(0, 0, -1)
	endOfYesterday := startOfToday.Add(-time.Millisecond)

	startOf7Days := startOfToday.AddDate(0, 0, -6)

	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
	endOfMonth := startOfMonth.AddDate(0, 1, 0).Add(-time.Millisecond)

	return map[string]RangePreset{
		"hoy":  {Key: "hoy", Label: "Hoy", Start: startOfToday, End: endOfToday},
		"ayer": {Key: "ayer", Label: "Ayer", Start: startOfYesterday, End: endOfYesterday},
		"ult7": {Key: "ult7", Label: "Últimos 7 días", Start: startOf7Days, End: endOfToday},
		"mes":  {Key: "mes", Label: "Este mes", Start: startOfMonth, End: endOfMonth},
	}
}

// ReportKPIs are the headline numbers of a report.
type ReportKPIs struct {
	Total     int64 `json:"total"`
	Count     int   `json:"count"`
	AvgTicket int64 `json:"avg_ticket"`
}

// BreakdownEntry is one row of a grouped sum, sorted descending.
type BreakdownEntry struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

// Report is the aggregate view over the sales ledger for one window.
type Report struct {
	Preset      RangePreset      `json:"preset"`
	KPIs        ReportKPIs       `json:"kpis"`
	ByMethod    []BreakdownEntry `json:"by_method"`
	ByWaiter    []BreakdownEntry `json:"by_waiter"`
	ByCategory  []BreakdownEntry `json:"by_category"`
	TopProducts []BreakdownEntry `json:"top_products"`
	Sales       []models.Sale    `json:"sales"`
}

// SalesSummary is the manager dashboard rollup.
type SalesSummary struct {
	TotalAll        int64  `json:"total_all"`
	TotalToday      int64  `json:"total_today"`
	CashToday       int64  `json:"cash_today"`
	TransferToday   int64  `json:"transfer_today"`
	TopWaiterName   string `json:"top_waiter_name"`
	TopWaiterTotal  int64  `json:"top_waiter_total"`
	SalesCount      int    `json:"sales_count"`
	SalesTodayCount int    `json:"sales_today_count"`
}

// ReportService aggregates the append-only sales ledger. It only ever
// reads the document.
type ReportService struct {
	store      DocumentStore
	tableCount int
	topLimit   int
	logger     *zap.Logger
}

// NewReportService creates a new report service
func NewReportService(store DocumentStore, tableCount, topLimit int) *ReportService {
	if topLimit <= 0 {
		topLimit = 10
	}
	return &ReportService{
		store:      store,
		tableCount: tableCount,
		topLimit:   topLimit,
		logger:     util.GetLogger(),
	}
}

// Sales returns the full ledger, newest first.
func (s *ReportService) Sales(ctx context.Context) ([]models.Sale, error) {
	doc, err := loadDocument(ctx, s.store, s.tableCount)
	if err != nil {
		return nil, err
	}

	sales := make([]models.Sale, len(doc.Sales))
	copy(sales, doc.Sales)
	sort.SliceStable(sales, func(i, j int) bool {
		return saleTime(&sales[i]).After(saleTime(&sales[j]))
	})
	return sales, nil
}

// Summary computes the all-time and today rollup.
func (s *ReportService) Summary(ctx context.Context) (*SalesSummary, error) {
	doc, err := loadDocument(ctx, s.store, s.tableCount)
	if err != nil {
		return nil, err
	}
	return summarize(doc, time.Now()), nil
}

// BuildReport aggregates sales within the named preset window. An
// unknown preset key falls back to today.
func (s *ReportService) BuildReport(ctx context.Context, presetKey string) (*Report, error) {
	doc, err := loadDocument(ctx, s.store, s.tableCount)
	if err != nil {
		return nil, err
	}
	return buildReport(doc, presetKey, time.Now(), s.topLimit), nil
}

// saleTime is the timestamp a sale is filed under: paidAt when
// present, the order's creation time otherwise.
func saleTime(s *models.Sale) time.Time {
	if !s.PaidAt.IsZero() {
		return s.PaidAt
	}
	return s.CreatedAt
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func summarize(doc *models.Document, now time.Time) *SalesSummary {
	summary := &SalesSummary{SalesCount: len(doc.Sales)}
	byWaiter := map[string]int64{}

	for i := range doc.Sales {
		sale := &doc.Sales[i]
		summary.TotalAll += sale.Total

		if sameDay(saleTime(sale).In(now.Location()), now) {
			summary.TotalToday += sale.Total
			summary.SalesTodayCount++

			// Anything that is not a transfer is counted as cash.
			if sale.Method == models.MethodTransferencia {
				summary.TransferToday += sale.Total
			} else {
				summary.CashToday += sale.Total
			}
		}

		waiter := sale.WaiterName
		if waiter == "" {
			waiter = unknownWaiter
		}
		byWaiter[waiter] += sale.Total
	}

	summary.TopWaiterName = "—"
	for _, entry := range sortedEntries(byWaiter) {
		summary.TopWaiterName = entry.Name
		summary.TopWaiterTotal = entry.Value
		break
	}

	return summary
}

func buildReport(doc *models.Document, presetKey string, now time.Time, topLimit int) *Report {
	presets := RangePresets(now)
	preset, ok := presets[presetKey]
	if !ok {
		preset = presets["hoy"]
	}

	productByID := make(map[string]*models.Product, len(doc.Products))
	for i := range doc.Products {
		productByID[doc.Products[i].ID] = &doc.Products[i]
	}

	var sales []models.Sale
	for i := range doc.Sales {
		at := saleTime(&doc.Sales[i]).In(now.Location())
		if !at.Before(preset.Start) && !at.After(preset.End) {
			sales = append(sales, doc.Sales[i])
		}
	}

	var total int64
	byMethod := map[string]int64{}
	byWaiter := map[string]int64{}
	byCategory := map[string]int64{}
	byProduct := map[string]int64{}

	for i := range sales {
		sale := &sales[i]
		total += sale.Total

		method := sale.Method
		if method == "" {
			method = unknownMethod
		}
		byMethod[method] += sale.Total

		waiter := sale.WaiterName
		if waiter == "" {
			waiter = unknownWaiter
		}
		byWaiter[waiter] += sale.Total

		// Category and product breakdowns re-price lines from the live
		// catalog, same as the close-time total does.
		for _, it := range sale.Items {
			name := unknownProduct
			category := unknownCategory
			var price int64
			if p := productByID[it.ProductID]; p != nil {
				name = p.Name
				price = p.Price
				if p.Category != "" {
					category = p.Category
				}
			}
			lineTotal := price * int64(it.Qty)
			byProduct[name] += lineTotal
			byCategory[category] += lineTotal
		}
	}

	kpis := ReportKPIs{Total: total, Count: len(sales)}
	if kpis.Count > 0 {
		kpis.AvgTicket = int64(math.Round(float64(total) / float64(kpis.Count)))
	}

	topProducts := sortedEntries(byProduct)
	if len(topProducts) > topLimit {
		topProducts = topProducts[:topLimit]
	}

	if sales == nil {
		sales = []models.Sale{}
	}

	return &Report{
		Preset:      preset,
		KPIs:        kpis,
		ByMethod:    sortedEntries(byMethod),
		ByWaiter:    sortedEntries(byWaiter),
		ByCategory:  sortedEntries(byCategory),
		TopProducts: topProducts,
		Sales:       sales,
	}
}

func sortedEntries(groups map[string]int64) []BreakdownEntry {
	entries := make([]BreakdownEntry, 0, len(groups))
	for name, value := range groups {
		entries = append(entries, BreakdownEntry{Name: name, Value: value})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Value != entries[j].Value {
			return entries[i].Value > entries[j].Value
		}
		return entries[i].Name < entries[j].Name
	})
	return entries
}
