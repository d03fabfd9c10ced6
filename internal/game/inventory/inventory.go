package inventory

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrOverCapacity is returned when an addition would exceed the carry capacity.
	ErrOverCapacity = errors.New("over carry capacity")
	// ErrItemNotFound is returned for unknown item or instance ids.
	ErrItemNotFound = errors.New("item not found")
	// ErrInvalidQuantity is returned for non-positive or excessive quantities.
	ErrInvalidQuantity = errors.New("invalid quantity")
	// ErrNotWeapon is returned when rolling damage for an item that is not a weapon.
	ErrNotWeapon = errors.New("not a weapon")
)

// Instance is a concrete carried item. Name and Weight are copied from the
// definition so a sheet stays readable when the catalog changes.
type Instance struct {
	InstanceID string  `json:"instance_id"`
	ItemDefID  string  `json:"item_id"`
	Name       string  `json:"name"`
	Kind       string  `json:"kind"`
	Weight     float64 `json:"weight"`
	Quantity   int     `json:"quantity"`
}

// Inventory is the ordered list of items a character carries.
type Inventory struct {
	Items []Instance `json:"items"`
}

// Weight returns the total carried weight.
func (inv Inventory) Weight() float64 {
	total := 0.0
	for _, it := range inv.Items {
		total += it.Weight * float64(it.Quantity)
	}
	return total
}

// Find returns the instance with instanceID.
func (inv Inventory) Find(instanceID string) (Instance, bool) {
	for _, it := range inv.Items {
		if it.InstanceID == instanceID {
			return it, true
		}
	}
	return Instance{}, false
}

// Filter returns the instances of kind in carry order.
func (inv Inventory) Filter(kind string) []Instance {
	var out []Instance
	for _, it := range inv.Items {
		if it.Kind == kind {
			out = append(out, it)
		}
	}
	return out
}

// Add places quantity units of def into the inventory. Stackable items merge
// into an existing instance of the same definition.
//
// Precondition: def must be non-nil.
// Postcondition: on error the inventory is unchanged. Fails with
// ErrOverCapacity when Weight() plus the added weight exceeds capacity.
func (inv *Inventory) Add(def *ItemDef, quantity int, capacity float64) (Instance, error) {
	if quantity <= 0 {
		return Instance{}, fmt.Errorf("%w: %d", ErrInvalidQuantity, quantity)
	}
	current := inv.Weight()
	added := def.Weight * float64(quantity)
	if current+added > capacity {
		return Instance{}, fmt.Errorf("%w: adding %d of %q (%.2f + %.2f > %.2f)",
			ErrOverCapacity, quantity, def.ID, current, added, capacity)
	}
	if def.Stackable {
		for i := range inv.Items {
			if inv.Items[i].ItemDefID == def.ID {
				inv.Items[i].Quantity += quantity
				return inv.Items[i], nil
			}
		}
	}
	it := Instance{
		InstanceID: uuid.NewString(),
		ItemDefID:  def.ID,
		Name:       def.Name,
		Kind:       def.Kind,
		Weight:     def.Weight,
		Quantity:   quantity,
	}
	inv.Items = append(inv.Items, it)
	return it, nil
}

// Remove takes quantity units from the instance; the instance is dropped when
// none remain.
//
// Postcondition: on error the inventory is unchanged.
func (inv *Inventory) Remove(instanceID string, quantity int) error {
	for i := range inv.Items {
		if inv.Items[i].InstanceID != instanceID {
			continue
		}
		if quantity <= 0 || quantity > inv.Items[i].Quantity {
			return fmt.Errorf("%w: cannot remove %d of %d", ErrInvalidQuantity, quantity, inv.Items[i].Quantity)
		}
		inv.Items[i].Quantity -= quantity
		if inv.Items[i].Quantity == 0 {
			inv.Items = append(inv.Items[:i], inv.Items[i+1:]...)
		}
		return nil
	}
	return fmt.Errorf("%w: instance %q", ErrItemNotFound, instanceID)
}

// Clone returns an independent copy of inv.
func (inv Inventory) Clone() Inventory {
	return Inventory{Items: append([]Instance(nil), inv.Items...)}
}
