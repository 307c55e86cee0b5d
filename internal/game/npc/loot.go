package npc

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/cory-johannsen/arena/internal/game/dice"
)

// CurrencyDrop defines the range of gold an enemy can drop on death.
type CurrencyDrop struct {
	Min int `yaml:"min" json:"min"`
	Max int `yaml:"max" json:"max"`
}

// ItemDrop defines a single item entry in a loot table with a drop chance.
type ItemDrop struct {
	ItemID string  `yaml:"item" json:"item"`
	Chance float64 `yaml:"chance" json:"chance"`
	MinQty int     `yaml:"min_qty" json:"minQty"`
	MaxQty int     `yaml:"max_qty" json:"maxQty"`
}

// LootTable defines the possible loot drops for an enemy template.
type LootTable struct {
	Currency *CurrencyDrop `yaml:"currency" json:"currency,omitempty"`
	Items    []ItemDrop    `yaml:"items" json:"items,omitempty"`
}

// DefaultLoot is rolled for enemies whose template carries no loot table.
var DefaultLoot = LootTable{
	Items: []ItemDrop{
		{ItemID: "healing_potion_small", Chance: 0.1, MinQty: 1, MaxQty: 1},
		{ItemID: "leather_scrap", Chance: 0.05, MinQty: 1, MaxQty: 1},
	},
}

// Validate checks that the loot table satisfies its invariants.
//
// Precondition: lt must not be nil.
// Postcondition: Returns nil iff all currency and item constraints hold;
// an empty loot table (no currency, no items) is valid.
func (lt *LootTable) Validate() error {
	if lt.Currency != nil {
		if lt.Currency.Min < 0 {
			return fmt.Errorf("loot table: currency min must be >= 0, got %d", lt.Currency.Min)
		}
		if lt.Currency.Min > lt.Currency.Max {
			return fmt.Errorf("loot table: currency min (%d) must be <= max (%d)", lt.Currency.Min, lt.Currency.Max)
		}
	}
	for i, item := range lt.Items {
		if item.ItemID == "" {
			return fmt.Errorf("loot table: item[%d] must have a non-empty item id", i)
		}
		if item.Chance <= 0 || item.Chance > 1.0 {
			return fmt.Errorf("loot table: item[%d] chance must be in (0, 1.0], got %f", i, item.Chance)
		}
		if item.MinQty < 1 {
			return fmt.Errorf("loot table: item[%d] min_qty must be >= 1, got %d", i, item.MinQty)
		}
		if item.MinQty > item.MaxQty {
			return fmt.Errorf("loot table: item[%d] min_qty (%d) must be <= max_qty (%d)", i, item.MinQty, item.MaxQty)
		}
	}
	return nil
}

// LootItem represents a single dropped item stack.
type LootItem struct {
	ItemID     string `json:"itemId"`
	InstanceID string `json:"instanceId"`
	Quantity   int    `json:"quantity"`
}

// LootResult holds the generated loot from a single kill.
type LootResult struct {
	Currency int
	Items    []LootItem
}

// GenerateLoot rolls loot from lt using src.
//
// Precondition: lt must have passed Validate(); src must be non-nil.
// Postcondition: Currency is in [Currency.Min, Currency.Max] if currency is set;
// each item's Quantity is in [MinQty, MaxQty] for items that pass the chance roll.
func GenerateLoot(lt LootTable, src dice.Source) LootResult {
	var result LootResult

	if lt.Currency != nil && lt.Currency.Max > 0 {
		result.Currency = dice.Between(src, lt.Currency.Min, lt.Currency.Max)
	}

	for _, item := range lt.Items {
		if dice.Chance(src, item.Chance) {
			result.Items = append(result.Items, LootItem{
				ItemID:     item.ItemID,
				InstanceID: uuid.New().String(),
				Quantity:   dice.Between(src, item.MinQty, item.MaxQty),
			})
		}
	}

	return result
}
