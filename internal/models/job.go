package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Job status values at the shop level, orthogonal to Progress.
const (
	StatusNew     = "NEW"
	StatusActive  = "ACTIVE"
	StatusPending = "PENDING"
)

// CreationTypeNew marks jobs that require photographic proof of completion.
const CreationTypeNew = "NEW"

// ProductKind tags the door-or-window union carried by every job.
type ProductKind string

const (
	KindDoor   ProductKind = "door"
	KindWindow ProductKind = "window"
)

// ProductAttrs describes one fabricated unit. Door and window rows share the
// same wire shape with different optional fields populated.
type ProductAttrs struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Code           string   `json:"code"`
	Height         string   `json:"height"`
	Width          string   `json:"width"`
	Image          string   `json:"image,omitempty"`
	ColorType      string   `json:"colorType,omitempty"`
	DoorColor      string   `json:"doorColor,omitempty"`
	WindowColor    string   `json:"windowColor,omitempty"`
	BoardColor     string   `json:"boardColor,omitempty"`
	GlassColor     string   `json:"glassColor,omitempty"`
	TypeOfBoard    string   `json:"typeOfBoard,omitempty"`
	BoardThickness string   `json:"boardThickness,omitempty"`
	GlassThickness string   `json:"glassThickness,omitempty"`
	FillingType    string   `json:"fillingType,omitempty"`
	Status         string   `json:"status,omitempty"`
	Price          *float64 `json:"price,omitempty"`
}

// Product is the resolved union: exactly one of door or window, decided once
// at decode time instead of optional-chaining at every render site.
type Product struct {
	Kind  ProductKind
	Attrs ProductAttrs
}

// StockItem is a pre-manufactured unit attached to a job. The server sends
// optional "door"/"windows" sub-objects; decoding resolves exactly one.
type StockItem struct {
	ID      string   `json:"id"`
	Type    string   `json:"type"`
	Offer   *string  `json:"offer,omitempty"`
	Price   *float64 `json:"price,omitempty"`
	Qty     int      `json:"qty"`
	Status  string   `json:"status"`
	Product Product  `json:"-"`
}

type stockItemWire struct {
	ID      string        `json:"id"`
	Type    string        `json:"type"`
	Offer   *string       `json:"offer,omitempty"`
	Price   *float64      `json:"price,omitempty"`
	Qty     int           `json:"qty"`
	Status  string        `json:"status"`
	Door    *ProductAttrs `json:"door,omitempty"`
	Windows *ProductAttrs `json:"windows,omitempty"`
}

// ErrAmbiguousProduct is returned when a stock item does not resolve to
// exactly one of door or window.
var ErrAmbiguousProduct = errors.New("stock item must carry exactly one of door or windows")

// UnmarshalJSON resolves the door-or-window union.
func (s *StockItem) UnmarshalJSON(data []byte) error {
	var w stockItemWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	s.ID = w.ID
	s.Type = w.Type
	s.Offer = w.Offer
	s.Price = w.Price
	s.Qty = w.Qty
	s.Status = w.Status

	switch {
	case w.Door != nil && w.Windows != nil:
		return fmt.Errorf("stock item %s: %w", w.ID, ErrAmbiguousProduct)
	case w.Door != nil:
		s.Product = Product{Kind: KindDoor, Attrs: *w.Door}
	case w.Windows != nil:
		s.Product = Product{Kind: KindWindow, Attrs: *w.Windows}
	default:
		return fmt.Errorf("stock item %s: %w", w.ID, ErrAmbiguousProduct)
	}
	return nil
}

// MarshalJSON restores the wire shape so fixtures and the stub server can
// round-trip items.
func (s StockItem) MarshalJSON() ([]byte, error) {
	w := stockItemWire{
		ID:     s.ID,
		Type:   s.Type,
		Offer:  s.Offer,
		Price:  s.Price,
		Qty:    s.Qty,
		Status: s.Status,
	}
	attrs := s.Product.Attrs
	switch s.Product.Kind {
	case KindDoor:
		w.Door = &attrs
	case KindWindow:
		w.Windows = &attrs
	}
	return json.Marshal(w)
}

// JobSummary is one row of a job list.
type JobSummary struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	Progress  Progress  `json:"progress"`
	Type      string    `json:"type"`
	Qty       int       `json:"qty"`
	DueDate   string    `json:"dueDate"`
	CreatedAt string    `json:"createdAt"`
	Image     string    `json:"image,omitempty"`
	StockItem StockItem `json:"stockItem"`
}

// Quotation carries design and customer contact data for jobs created from a
// customer order rather than stock.
type Quotation struct {
	ID              string   `json:"id"`
	Design          string   `json:"design,omitempty"`
	CustomerName    string   `json:"customerName,omitempty"`
	CustomerContact string   `json:"customerContact,omitempty"`
	CustomerAddress string   `json:"customerAddress,omitempty"`
	Price           *float64 `json:"price,omitempty"`
}

// JobDetail is the full job record behind a list row.
type JobDetail struct {
	JobSummary
	CreationType string     `json:"creationType"`
	Quotation    *Quotation `json:"quotation,omitempty"`
}

// RequiresPhoto reports whether completion must carry photographic proof.
func (j JobDetail) RequiresPhoto() bool {
	return j.CreationType == CreationTypeNew
}

// Filter selects the subset of jobs a list screen requests.
type Filter struct {
	Status   string
	Progress Progress
}

// Page is one slice of a job list plus the cursor for the next slice.
// An empty Next ends the sequence.
type Page struct {
	Items []JobSummary
	Next  string
}
