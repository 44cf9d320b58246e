package main

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestOfferListSet(t *testing.T) {
	var offers offerList
	if err := offers.Set("10:1:99.90:2"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := offers.Set("11:2:15:1:3"); err != nil {
		t.Fatalf("Set with index: %v", err)
	}

	if len(offers) != 2 {
		t.Fatalf("len = %d, want 2", len(offers))
	}

	first := offers[0]
	if sku := first["itemOffered"].(map[string]any)["sku"]; sku != "10" {
		t.Errorf("sku = %v, want 10", sku)
	}
	if seller := first["seller"].(map[string]any)["identifier"]; seller != "1" {
		t.Errorf("seller = %v, want 1", seller)
	}
	if price := first["price"].(decimal.Decimal); !price.Equal(decimal.RequireFromString("99.9")) {
		t.Errorf("price = %s, want 99.9", price)
	}
	if first["quantity"] != 2 {
		t.Errorf("quantity = %v, want 2", first["quantity"])
	}
	if _, ok := first["index"]; ok {
		t.Error("index should be omitted when not given")
	}

	if offers[1]["index"] != 3 {
		t.Errorf("index = %v, want 3", offers[1]["index"])
	}
	if offers.String() != "2 offers" {
		t.Errorf("String() = %q", offers.String())
	}
}

func TestOfferListSetErrors(t *testing.T) {
	tests := []string{
		"10:1:99",
		"10:1:abc:2",
		"10:1:5:two",
		"10:1:5:2:x",
		"10:1:5:2:0:extra",
	}

	for _, v := range tests {
		t.Run(v, func(t *testing.T) {
			var offers offerList
			if err := offers.Set(v); err == nil {
				t.Errorf("Set(%q) should fail", v)
			}
			if len(offers) != 0 {
				t.Errorf("failed Set should not append, got %d offers", len(offers))
			}
		})
	}
}
