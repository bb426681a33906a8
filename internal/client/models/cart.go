package models

// CartLine is a single product entry in a cart. A cart never holds two
// lines for the same ProductID, and Quantity is always >= 1 while stored.
type CartLine struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unitPrice"`
	Quantity  int     `json:"quantity"`
	ImageRef  string  `json:"imageRef,omitempty"`
	SellerID  string  `json:"sellerId"`
}

// Cart is an ordered sequence of lines. Order is insertion order and carries
// no meaning beyond display. Totals are computed, never cached.
type Cart []CartLine

// TotalItems sums line quantities.
func (c Cart) TotalItems() int {
	n := 0
	for _, l := range c {
		n += l.Quantity
	}
	return n
}

// TotalPrice sums quantity times unit price across lines.
func (c Cart) TotalPrice() float64 {
	total := 0.0
	for _, l := range c {
		total += float64(l.Quantity) * l.UnitPrice
	}
	return total
}

// Find returns the index of the line for productID, or -1.
func (c Cart) Find(productID string) int {
	for i, l := range c {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}
