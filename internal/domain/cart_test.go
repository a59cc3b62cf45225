package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartAddItem_MergesByProduct(t *testing.T) {
	cart := &Cart{}
	require.NoError(t, cart.AddItem("p1", 2, "M", "red"))
	require.NoError(t, cart.AddItem("p1", 1, "L", "blue"))

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.Items[0].Quantity)
	assert.Equal(t, "M", cart.Items[0].Size, "size of the existing line must not change")
	assert.Equal(t, "red", cart.Items[0].Color)

	require.NoError(t, cart.AddItem("p2", 4, "", ""))
	require.Len(t, cart.Items, 2)
	assert.Equal(t, "p2", cart.Items[1].ProductID)
}

func TestCartAddItem_QuantityBounds(t *testing.T) {
	cart := &Cart{}
	assert.True(t, errors.Is(cart.AddItem("p1", 0, "", ""), ErrValidation))
	assert.True(t, errors.Is(cart.AddItem("p1", MaxItemQuantity+1, "", ""), ErrValidation))
	assert.Empty(t, cart.Items)

	require.NoError(t, cart.AddItem("p1", MaxItemQuantity, "", ""))
	err := cart.AddItem("p1", 1, "", "")
	assert.True(t, errors.Is(err, ErrValidation), "merge past the cap: %v", err)
	assert.Equal(t, MaxItemQuantity, cart.Items[0].Quantity)
}

func TestCartRecompute_UsesEachLinesPrice(t *testing.T) {
	cart := &Cart{Items: []CartItem{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "p2", Quantity: 3},
	}}

	pruned := cart.Recompute(map[string]float64{"p1": 10, "p2": 0.1})

	assert.Empty(t, pruned)
	assert.Equal(t, 20.3, cart.Total)
}

func TestCartRecompute_PrunesMissingProducts(t *testing.T) {
	cart := &Cart{Items: []CartItem{
		{ProductID: "gone", Quantity: 1},
		{ProductID: "p1", Quantity: 1},
	}}

	pruned := cart.Recompute(map[string]float64{"p1": 5.5})

	assert.Equal(t, []string{"gone"}, pruned)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 5.5, cart.Total)
}

func TestCartRemoveProduct(t *testing.T) {
	cart := &Cart{Items: []CartItem{
		{ProductID: "p1", Quantity: 1},
		{ProductID: "p2", Quantity: 1},
	}}

	assert.True(t, cart.RemoveProduct("p1"))
	assert.Equal(t, []string{"p2"}, cart.ProductIDs())

	assert.False(t, cart.RemoveProduct("p1"), "second removal is a no-op")
	assert.Len(t, cart.Items, 1)
}

func TestCartExpand_LeavesMissingProductNil(t *testing.T) {
	cart := &Cart{ID: "c1", OwnerID: "u1", Total: 7, Items: []CartItem{
		{ProductID: "p1", Quantity: 1, Size: "S"},
		{ProductID: "p2", Quantity: 2},
	}}

	view := cart.Expand(map[string]Product{"p1": {ID: "p1", Title: "Shirt"}})

	require.Len(t, view.Items, 2)
	require.NotNil(t, view.Items[0].Product)
	assert.Equal(t, "Shirt", view.Items[0].Product.Title)
	assert.Equal(t, "S", view.Items[0].Size)
	assert.Nil(t, view.Items[1].Product)
	assert.Equal(t, 7.0, view.Total)
}
