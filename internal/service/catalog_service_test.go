package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/tent-booking/internal/model"
)

func TestCatalogListsOnlyAvailable(t *testing.T) {
	tents := newFakeTents(
		model.TentType{ID: 1, Name: "Yurt", Capacity: 8, PricePerDay: 20000, IsAvailable: true},
		model.TentType{ID: 2, Name: "Bell Tent", Capacity: 6, PricePerDay: 15000, IsAvailable: true},
		model.TentType{ID: 3, Name: "Dome", Capacity: 4, PricePerDay: 9000},
	)
	svc := NewCatalogService(tents)
	ctx := context.Background()

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Bell Tent", list[0].Name)
	assert.Equal(t, "Yurt", list[1].Name)

	_, err = svc.Get(ctx, 3)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Get(ctx, 42)
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Yurt", got.Name)
}

func TestCatalogCreateAndToggle(t *testing.T) {
	svc := NewCatalogService(newFakeTents())
	ctx := context.Background()

	tt, err := svc.Create(ctx, TentTypeInput{Name: " Bell Tent ", Capacity: 6, PricePerDay: 15000, IsAvailable: true})
	require.NoError(t, err)
	assert.Equal(t, "Bell Tent", tt.Name)

	_, err = svc.Create(ctx, TentTypeInput{Name: "Bell Tent", Capacity: 6, PricePerDay: 15000})
	assert.Contains(t, fieldErrors(t, err), "name")

	_, err = svc.Create(ctx, TentTypeInput{})
	fields := fieldErrors(t, err)
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "capacity")
	assert.Contains(t, fields, "price_per_day")

	require.NoError(t, svc.SetAvailability(ctx, tt.ID, false))
	_, err = svc.Get(ctx, tt.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, svc.SetAvailability(ctx, 999, true), ErrNotFound)
}

func TestRequireRole(t *testing.T) {
	assert.NoError(t, RequireRole(adminID, "", model.RoleAdmin))
	assert.NoError(t, RequireRole(aliceID, "", model.RoleAdmin, model.RoleCustomer))

	err := RequireRole(aliceID, "", model.RoleAdmin)
	require.ErrorIs(t, err, ErrPermission)
	assert.Equal(t, "Only admins can perform this action.", err.Error())
}
