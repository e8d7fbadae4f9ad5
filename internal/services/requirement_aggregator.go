package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"restaurant_pos_backend/internal/repositories"
)

// OrderLine is one requested line of an order.
type OrderLine struct {
	MenuItemID     int64   `json:"menu_item_id" binding:"required,gt=0"`
	PortionID      int64   `json:"portion_id" binding:"required,gt=0"`
	Quantity       int     `json:"quantity" binding:"required,gt=0"`
	SpecialRequest *string `json:"special_request"`
}

// Demand maps ingredient id to the total quantity required.
type Demand map[int64]decimal.Decimal

// Add accumulates qty for an ingredient; repeated ingredients sum.
func (d Demand) Add(ingredientID int64, qty decimal.Decimal) {
	if cur, ok := d[ingredientID]; ok {
		d[ingredientID] = cur.Add(qty)
		return
	}
	d[ingredientID] = qty
}

// IngredientIDs returns the demanded ingredient ids in ascending order.
func (d Demand) IngredientIDs() []int64 {
	ids := make([]int64, 0, len(d))
	for id := range d {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Equal compares two demands numerically, ignoring decimal scale.
func (d Demand) Equal(other Demand) bool {
	if len(d) != len(other) {
		return false
	}
	for id, qty := range d {
		o, ok := other[id]
		if !ok || !o.Equal(qty) {
			return false
		}
	}
	return true
}

// ResolvedLine is an order line bound to its orderable unit and price snapshot.
type ResolvedLine struct {
	OrderLine
	Resolved  *ResolvedPortion
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

// Aggregation is the outcome of aggregating an order's lines.
type Aggregation struct {
	Demand Demand
	Lines  []ResolvedLine
	Total  decimal.Decimal
}

type RequirementAggregator struct {
	resolver *RecipeResolver
}

func NewRequirementAggregator(resolver *RecipeResolver) *RequirementAggregator {
	return &RequirementAggregator{resolver: resolver}
}

// Aggregate resolves every line and sums per-unit requirements times line quantity
// into a single demand. The first failing line aborts the whole aggregation.
func (a *RequirementAggregator) Aggregate(ctx context.Context, exec repositories.SQLExecutor, lines []OrderLine, mode ResolveMode) (*Aggregation, error) {
	agg := &Aggregation{
		Demand: make(Demand),
		Lines:  make([]ResolvedLine, 0, len(lines)),
		Total:  decimal.Zero,
	}

	for i, line := range lines {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("%w: line %d quantity must be positive", ErrInvalidLine, i+1)
		}
		resolved, err := a.resolver.Resolve(ctx, exec, line.MenuItemID, line.PortionID, mode)
		if err != nil {
			return nil, err
		}

		qty := decimal.NewFromInt(int64(line.Quantity))
		for _, req := range resolved.Requirements {
			agg.Demand.Add(req.IngredientID, req.QuantityPerUnit.Mul(qty))
		}

		unitPrice := resolved.Portion.Price
		lineTotal := unitPrice.Mul(qty)
		agg.Total = agg.Total.Add(lineTotal)
		agg.Lines = append(agg.Lines, ResolvedLine{
			OrderLine: line,
			Resolved:  resolved,
			UnitPrice: unitPrice,
			LineTotal: lineTotal,
		})
	}
	return agg, nil
}
