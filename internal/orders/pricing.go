package orders

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/db/models"
	pkgerrors "github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/errors"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/types"
)

// ItemIssue identifies a rejected order line.
type ItemIssue struct {
	Index     int       `json:"index"`
	ProductID uuid.UUID `json:"product_id"`
	Reason    string    `json:"reason"`
}

// Shortage reports a stock-tracked product that cannot cover its request.
type Shortage struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Requested int       `json:"requested"`
	Available int       `json:"available"`
}

func validateItems(items []ItemInput) error {
	if len(items) == 0 {
		return pkgerrors.Validation("order requires at least one item")
	}
	var issues []ItemIssue
	for i, item := range items {
		switch {
		case item.ProductID == uuid.Nil:
			issues = append(issues, ItemIssue{Index: i, Reason: "product id required"})
		case item.Quantity <= 0:
			issues = append(issues, ItemIssue{Index: i, ProductID: item.ProductID, Reason: "quantity must be positive"})
		}
	}
	if len(issues) > 0 {
		return pkgerrors.Validation("invalid order items").WithDetails(issues)
	}
	return nil
}

func validateDiscount(discount decimal.Decimal) error {
	if discount.IsNegative() {
		return pkgerrors.Validation("discount cannot be negative")
	}
	return nil
}

func productIDs(items []ItemInput) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(items))
	out := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		out = append(out, item.ProductID)
	}
	return out
}

// ensureOrderable rejects unknown and inactive products.
func ensureOrderable(items []ItemInput, products map[uuid.UUID]models.Product) error {
	var issues []ItemIssue
	for i, item := range items {
		product, ok := products[item.ProductID]
		switch {
		case !ok:
			issues = append(issues, ItemIssue{Index: i, ProductID: item.ProductID, Reason: "product not found"})
		case !product.IsActive:
			issues = append(issues, ItemIssue{Index: i, ProductID: item.ProductID, Reason: "product is not active"})
		}
	}
	if len(issues) > 0 {
		return pkgerrors.Validation("invalid order items").WithDetails(issues)
	}
	return nil
}

// trackedQuantities sums quantities per stock-tracked product.
func trackedQuantities[T any](lines []T, product func(T) (uuid.UUID, int), products map[uuid.UUID]models.Product) map[uuid.UUID]int {
	out := make(map[uuid.UUID]int)
	for _, line := range lines {
		id, qty := product(line)
		if p, ok := products[id]; ok && p.NeedsStockTracking {
			out[id] += qty
		}
	}
	return out
}

func inputLine(item ItemInput) (uuid.UUID, int) { return item.ProductID, item.Quantity }

func storedLine(item models.OrderItem) (uuid.UUID, int) { return item.ProductID, item.Quantity }

func keys(m map[uuid.UUID]int) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// checkAvailability compares each request with the locked stock plus whatever
// the order already holds.
func checkAvailability(requested, held map[uuid.UUID]int, stocks map[uuid.UUID]models.Stock, products map[uuid.UUID]models.Product) error {
	var shortages []Shortage
	for _, productID := range keys(requested) {
		available := held[productID]
		if row, ok := stocks[productID]; ok {
			available += row.Quantity
		}
		if requested[productID] > available {
			shortages = append(shortages, Shortage{
				ProductID: productID,
				Name:      products[productID].Name,
				Requested: requested[productID],
				Available: available,
			})
		}
	}
	if len(shortages) > 0 {
		return pkgerrors.Conflict("insufficient stock").WithDetails(shortages)
	}
	return nil
}

// buildItems prices each line at the product's current price.
func buildItems(orderID uuid.UUID, items []ItemInput, products map[uuid.UUID]models.Product) ([]models.OrderItem, decimal.Decimal) {
	out := make([]models.OrderItem, 0, len(items))
	subtotal := decimal.Zero
	for _, item := range items {
		price := products[item.ProductID].Price
		lineTotal := price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		out = append(out, models.OrderItem{
			OrderID:   orderID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     price,
			Subtotal:  lineTotal,
		})
		subtotal = subtotal.Add(lineTotal)
	}
	return out, subtotal
}

type totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// computeTotals applies the snapshot's VAT rate. Tax is kept at cent precision
// so the stored columns always satisfy total = subtotal + tax - discount.
func computeTotals(subtotal, discount decimal.Decimal, snapshot types.BusinessSnapshot) (totals, error) {
	tax := snapshot.Tax(subtotal).Round(2)
	discount = discount.Round(2)
	total := subtotal.Add(tax).Sub(discount).Round(2)
	if total.IsNegative() {
		return totals{}, pkgerrors.Validation("discount exceeds order amount").WithDetails(map[string]string{
			"discount": discount.StringFixed(2),
			"gross":    subtotal.Add(tax).StringFixed(2),
		})
	}
	return totals{Subtotal: subtotal, Tax: tax, Discount: discount, Total: total}, nil
}

// newOrderNumber renders ORD-YYYYMMDD-XXXXXX from the date and a random id.
func newOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:6]
	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102"), suffix)
}
