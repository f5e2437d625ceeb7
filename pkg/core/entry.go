package core

import "encoding/json"

// EntryType discriminates the variants of an Entry.
type EntryType string

const (
	TypeItem   EntryType = "item"
	TypeCoupon EntryType = "coupon"
)

// Valid reports whether t is one of the known entry types.
func (t EntryType) Valid() bool {
	return t == TypeItem || t == TypeCoupon
}

// Item is the payload of an "item" entry: a user submission and its
// transformed display text, decorated like a register line.
type Item struct {
	OriginalText    string `json:"originalText"`
	TransformedText string `json:"transformedText,omitempty"`
	Time            string `json:"time,omitempty"`
	Date            string `json:"date,omitempty"`
	TransactionID   int    `json:"transactionId,omitempty"`
	CashierID       string `json:"cashierId,omitempty"`
	Barcode         string `json:"barcode,omitempty"`
}

// Coupon is the payload of a "coupon" entry.
type Coupon struct {
	Product    string `json:"product"`
	Tagline    string `json:"tagline,omitempty"`
	Discount   string `json:"discount,omitempty"`
	Expires    string `json:"expires,omitempty"`
	Barcode    string `json:"barcode,omitempty"`
	CouponCode int    `json:"couponCode,omitempty"`
}

// Entry is one immutable line of the receipt log.
// Exactly one of Item or Coupon is set, according to Type.
//
// ID and Timestamp are assigned by the repository on append; a candidate
// handed to Append carries neither.
type Entry struct {
	ID        string
	Timestamp int64 // Unix milliseconds
	Type      EntryType
	Item      *Item
	Coupon    *Coupon
}

// NewItemEntry builds an item candidate.
func NewItemEntry(item Item) Entry {
	return Entry{Type: TypeItem, Item: &item}
}

// NewCouponEntry builds a coupon candidate.
func NewCouponEntry(coupon Coupon) Entry {
	return Entry{Type: TypeCoupon, Coupon: &coupon}
}

// Candidate returns a copy of e stripped of its store-assigned identity.
func (e Entry) Candidate() Entry {
	c := e.Clone()
	c.ID = ""
	c.Timestamp = 0
	return c
}

// Clone returns a deep copy, so callers never share payloads with a cache.
func (e Entry) Clone() Entry {
	out := Entry{ID: e.ID, Timestamp: e.Timestamp, Type: e.Type}
	if e.Item != nil {
		it := *e.Item
		out.Item = &it
	}
	if e.Coupon != nil {
		c := *e.Coupon
		out.Coupon = &c
	}
	return out
}

type entryHeader struct {
	ID        string    `json:"id,omitempty"`
	Timestamp int64     `json:"timestamp,omitempty"`
	Type      EntryType `json:"type"`
}

// MarshalJSON writes the flat wire form: the common fields and the variant
// fields share one object.
func (e Entry) MarshalJSON() ([]byte, error) {
	h := entryHeader{ID: e.ID, Timestamp: e.Timestamp, Type: e.Type}

	switch {
	case e.Type == TypeItem && e.Item != nil:
		return json.Marshal(struct {
			entryHeader
			*Item
		}{h, e.Item})
	case e.Type == TypeCoupon && e.Coupon != nil:
		return json.Marshal(struct {
			entryHeader
			*Coupon
		}{h, e.Coupon})
	default:
		return json.Marshal(h)
	}
}

// UnmarshalJSON reads the flat wire form. Fields of the other variant are
// ignored; an unknown type leaves both payloads nil.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var h entryHeader
	if err := json.Unmarshal(data, &h); err != nil {
		return err
	}

	*e = Entry{ID: h.ID, Timestamp: h.Timestamp, Type: h.Type}

	switch h.Type {
	case TypeItem:
		var it Item
		if err := json.Unmarshal(data, &it); err != nil {
			return err
		}
		e.Item = &it
	case TypeCoupon:
		var c Coupon
		if err := json.Unmarshal(data, &c); err != nil {
			return err
		}
		e.Coupon = &c
	}
	return nil
}
