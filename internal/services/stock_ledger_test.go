package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"restaurant_pos_backend/internal/models"
)

func TestCheckSufficiency_ReportsFirstShortIngredientInIDOrder(t *testing.T) {
	env := newTestEnv()
	env.seedRestaurant()

	demand := Demand{oilID: dec("400"), chickenID: dec("900"), riceID: dec("10")}
	err := env.ledger.CheckSufficiency(context.Background(), nil, demand)

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	require.Equal(t, chickenID, stockErr.IngredientID)
	require.Equal(t, "g", stockErr.Unit)
}

func TestCheckSufficiency_EmptyDemandTakesNoLocks(t *testing.T) {
	env := newTestEnv()
	require.NoError(t, env.ledger.CheckSufficiency(context.Background(), nil, Demand{}))
	require.Zero(t, env.store.lockCalls)
}

func TestCheckSufficiency_ExactStockIsEnough(t *testing.T) {
	env := newTestEnv()
	env.seedRestaurant()
	require.NoError(t, env.ledger.CheckSufficiency(context.Background(), nil, Demand{riceID: dec("1000")}))
}

func TestDecrementAndIncrement_RecordMovements(t *testing.T) {
	env := newTestEnv()
	env.seedRestaurant()
	ctx := context.Background()
	orderID := int64(5)

	changes, err := env.ledger.Decrement(ctx, nil, Demand{riceID: dec("850"), oilID: dec("5")}, MovementRef{OrderID: &orderID})
	require.NoError(t, err)
	require.Len(t, changes, 2)
	require.Equal(t, riceID, changes[0].IngredientID)
	requireDecimal(t, "1000", changes[0].Before)
	requireDecimal(t, "150", changes[0].After)
	require.True(t, changes[0].CrossedReorderLevel())
	require.False(t, changes[1].CrossedReorderLevel())

	_, err = env.ledger.Increment(ctx, nil, Demand{riceID: dec("850"), oilID: dec("5")}, MovementRef{OrderID: &orderID})
	require.NoError(t, err)
	requireDecimal(t, "1000", env.store.stock(riceID))
	requireDecimal(t, "300", env.store.stock(oilID))

	require.Len(t, env.store.movements, 4)
	require.Equal(t, models.MovementTypeSale, env.store.movements[0].MovementType)
	requireDecimal(t, "-850", env.store.movements[0].QuantityChanged)
	require.Equal(t, models.MovementTypeReturnCancellation, env.store.movements[2].MovementType)
	requireDecimal(t, "850", env.store.movements[2].QuantityChanged)
}

func TestDecrement_GuardRejectsOverdraw(t *testing.T) {
	env := newTestEnv()
	env.seedRestaurant()

	_, err := env.ledger.Decrement(context.Background(), nil, Demand{riceID: dec("1000.001")}, MovementRef{})
	require.ErrorIs(t, err, ErrInsufficientStock)
	requireDecimal(t, "1000", env.store.stock(riceID))
}

func TestAdjustStock(t *testing.T) {
	staff := int64(1)
	tests := map[string]struct {
		remove    bool
		id        int64
		qty       string
		wantErr   error
		wantStock string
	}{
		"add":               {id: riceID, qty: "250.5", wantStock: "1250.5"},
		"remove":            {remove: true, id: riceID, qty: "1000", wantStock: "0"},
		"remove too much":   {remove: true, id: riceID, qty: "1000.5", wantErr: ErrInsufficientStock, wantStock: "1000"},
		"zero quantity":     {id: riceID, qty: "0", wantErr: ErrValidation, wantStock: "1000"},
		"negative quantity": {remove: true, id: riceID, qty: "-3", wantErr: ErrValidation, wantStock: "1000"},
		"unknown":           {id: 99, qty: "1", wantErr: ErrIngredientNotFound, wantStock: "1000"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			env := newTestEnv()
			env.seedRestaurant()
			ctx := context.Background()

			var err error
			if tc.remove {
				_, err = env.ledger.RemoveStock(ctx, tc.id, dec(tc.qty), &staff, "count")
			} else {
				_, err = env.ledger.AddStock(ctx, tc.id, dec(tc.qty), &staff, "delivery")
			}
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				require.Empty(t, env.store.movements)
			} else {
				require.NoError(t, err)
				require.Len(t, env.store.movements, 1)
			}
			requireDecimal(t, tc.wantStock, env.store.stock(riceID))
		})
	}
}
