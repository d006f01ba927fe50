package models

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestStockItemResolvesDoor(t *testing.T) {
	raw := []byte(`{
		"id": "si-1",
		"type": "DOOR",
		"qty": 2,
		"status": "ACTIVE",
		"door": {"id": "d-1", "name": "Teak Panel", "code": "TP-104", "boardColor": "walnut", "fillingType": "solid"}
	}`)

	var item StockItem
	if err := json.Unmarshal(raw, &item); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if item.Product.Kind != KindDoor {
		t.Fatalf("kind = %q, want door", item.Product.Kind)
	}
	if item.Product.Attrs.Code != "TP-104" {
		t.Fatalf("code = %q, want TP-104", item.Product.Attrs.Code)
	}
}

func TestStockItemResolvesWindow(t *testing.T) {
	raw := []byte(`{
		"id": "si-2",
		"type": "WINDOW",
		"qty": 1,
		"status": "ACTIVE",
		"windows": {"id": "w-1", "name": "Sliding Bay", "code": "SB-20", "glassThickness": "6mm"}
	}`)

	var item StockItem
	if err := json.Unmarshal(raw, &item); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if item.Product.Kind != KindWindow {
		t.Fatalf("kind = %q, want window", item.Product.Kind)
	}
	if item.Product.Attrs.GlassThickness != "6mm" {
		t.Fatalf("glassThickness = %q, want 6mm", item.Product.Attrs.GlassThickness)
	}
}

func TestStockItemRejectsBothAndNeither(t *testing.T) {
	both := []byte(`{"id": "si-3", "door": {"id": "d"}, "windows": {"id": "w"}}`)
	var item StockItem
	if err := json.Unmarshal(both, &item); !errors.Is(err, ErrAmbiguousProduct) {
		t.Fatalf("both populated: err=%v, want ErrAmbiguousProduct", err)
	}

	neither := []byte(`{"id": "si-4", "qty": 1}`)
	if err := json.Unmarshal(neither, &item); !errors.Is(err, ErrAmbiguousProduct) {
		t.Fatalf("neither populated: err=%v, want ErrAmbiguousProduct", err)
	}
}

func TestStockItemRoundTrip(t *testing.T) {
	item := StockItem{
		ID:     "si-5",
		Type:   "DOOR",
		Qty:    3,
		Status: "ACTIVE",
		Product: Product{
			Kind:  KindDoor,
			Attrs: ProductAttrs{ID: "d-5", Name: "Flush", Code: "FL-9"},
		},
	}
	data, err := json.Marshal(item)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back StockItem
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Product.Kind != KindDoor || back.Product.Attrs.Code != "FL-9" {
		t.Fatalf("round trip lost product: %+v", back.Product)
	}
}

func TestJobDetailRequiresPhoto(t *testing.T) {
	j := JobDetail{CreationType: "NEW"}
	if !j.RequiresPhoto() {
		t.Fatal("creationType NEW must require a photo")
	}
	j.CreationType = "STOCK"
	if j.RequiresPhoto() {
		t.Fatal("non-NEW creation type must not require a photo")
	}
}

func TestJobSummaryProgressCasing(t *testing.T) {
	raw := []byte(`{
		"id": "abc123",
		"status": "ACTIVE",
		"progress": "pending",
		"type": "DOOR",
		"qty": 1,
		"stockItem": {"id": "si", "door": {"id": "d"}}
	}`)
	var job JobSummary
	if err := json.Unmarshal(raw, &job); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if job.Progress != ProgressPending {
		t.Fatalf("progress = %q, want PENDING", job.Progress)
	}
}
