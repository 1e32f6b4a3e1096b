// =============================================================================
// File Processing Engine - Sales Aggregation Module
// =============================================================================
//
// This module folds SaleBatch records into per-file running totals and turns
// those totals into the FileAggregateSummary written to the report.
//
// KEYED ASSIGNMENT:
//   Each sale line REPLACES the totals stored under its sale id and its seller
//   name. Two lines for the same seller do not add up; the later line wins.
//   This matches the legacy report output and is covered by tests.
//
// ORDERING:
//   Go maps have no stable iteration order, so keys are also kept in
//   first-insertion order. Ties for the biggest sale or the least active
//   seller go to the key inserted first.
//
// CONCURRENCY:
//   Totals belong to exactly one file task and are never shared.
//
// =============================================================================

package sales

import (
	"github.com/ginjaninja78/file-processing-engine/internal/recordparser"
	"github.com/shopspring/decimal"
)

// =============================================================================
// TOTALS STRUCTURE
// =============================================================================

// Totals accumulates the records of a single file.
type Totals struct {
	// Clients is the number of client lines seen.
	Clients int

	// Sellers is the number of seller lines seen.
	Sellers int

	revenueBySaleID   map[string]decimal.Decimal
	saleOrder         []string
	itemsSoldBySeller map[string]int64
	sellerOrder       []string
}

// NewTotals returns an empty accumulator.
func NewTotals() *Totals {
	return &Totals{
		revenueBySaleID:   make(map[string]decimal.Decimal),
		itemsSoldBySeller: make(map[string]int64),
	}
}

// Add folds one parsed record into the totals. Unrecognized records are ignored.
func (t *Totals) Add(rec recordparser.Record) {
	switch rec.Kind {
	case recordparser.KindClient:
		t.Clients++
	case recordparser.KindSeller:
		t.Sellers++
	case recordparser.KindSaleBatch:
		if rec.Sale != nil {
			t.Accumulate(*rec.Sale)
		}
	}
}

// Accumulate records the revenue and item count of one sale line.
//
// PARAMETERS:
//   - batch: The parsed sale line.
//
// BEHAVIOR:
//   revenue   = Σ quantity × unit price
//   itemCount = Σ quantity
//   Both values overwrite whatever was stored for the same sale id / seller.
func (t *Totals) Accumulate(batch recordparser.SaleBatch) {
	revenue, items := BatchTotals(batch)

	if _, seen := t.revenueBySaleID[batch.SaleID]; !seen {
		t.saleOrder = append(t.saleOrder, batch.SaleID)
	}
	t.revenueBySaleID[batch.SaleID] = revenue

	if _, seen := t.itemsSoldBySeller[batch.SellerName]; !seen {
		t.sellerOrder = append(t.sellerOrder, batch.SellerName)
	}
	t.itemsSoldBySeller[batch.SellerName] = items
}

// BatchTotals returns the revenue and the item count of a single sale line.
func BatchTotals(batch recordparser.SaleBatch) (decimal.Decimal, int64) {
	revenue := decimal.Zero
	var items int64

	for _, item := range batch.Items {
		revenue = revenue.Add(decimal.NewFromInt(item.Quantity).Mul(item.UnitPrice))
		items += item.Quantity
	}

	return revenue, items
}

// Revenue returns the stored revenue for a sale id.
func (t *Totals) Revenue(saleID string) (decimal.Decimal, bool) {
	v, ok := t.revenueBySaleID[saleID]
	return v, ok
}

// ItemsSold returns the stored item count for a seller.
func (t *Totals) ItemsSold(seller string) (int64, bool) {
	v, ok := t.itemsSoldBySeller[seller]
	return v, ok
}

// SaleIDs returns the sale ids in first-insertion order.
func (t *Totals) SaleIDs() []string {
	return append([]string(nil), t.saleOrder...)
}

// =============================================================================
// SUMMARY
// =============================================================================

// Summary is the immutable result of aggregating one file.
// TopSaleID and LeastActiveSeller are empty when the file had no sales;
// HasSales tells the two cases apart.
type Summary struct {
	ClientCount       int
	SellerCount       int
	TopSaleID         string
	LeastActiveSeller string
	HasSales          bool
}

// Summarize finalizes the totals once the whole file has been read.
func (t *Totals) Summarize() Summary {
	s := Summary{
		ClientCount: t.Clients,
		SellerCount: t.Sellers,
	}

	if len(t.saleOrder) == 0 {
		return s
	}
	s.HasSales = true

	best := t.saleOrder[0]
	for _, id := range t.saleOrder[1:] {
		if t.revenueBySaleID[id].GreaterThan(t.revenueBySaleID[best]) {
			best = id
		}
	}
	s.TopSaleID = best

	least := t.sellerOrder[0]
	for _, name := range t.sellerOrder[1:] {
		if t.itemsSoldBySeller[name] < t.itemsSoldBySeller[least] {
			least = name
		}
	}
	s.LeastActiveSeller = least

	return s
}
