package cart

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/safar/go-shop/internal/models"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrQuantityLimit   = errors.New("quantity exceeds the per-product limit")
	ErrMalformedCart   = errors.New("malformed cart data")
)

// Line is one product entry: the quantity and the unit price captured when
// the product was first added.
type Line struct {
	Quantity int
	Price    decimal.Decimal
}

// Cart maps product ids to lines and remembers insertion order.
type Cart struct {
	order []int64
	lines map[int64]*Line
}

func newCart() *Cart {
	return &Cart{lines: make(map[int64]*Line)}
}

// Len returns the number of distinct products.
func (c *Cart) Len() int {
	return len(c.order)
}

func (c *Cart) Line(productID int64) (Line, bool) {
	line, ok := c.lines[productID]
	if !ok {
		return Line{}, false
	}
	return *line, true
}

// ProductIDs returns the product ids in insertion order.
func (c *Cart) ProductIDs() []int64 {
	ids := make([]int64, len(c.order))
	copy(ids, c.order)
	return ids
}

func (c *Cart) quantity() int {
	total := 0
	for _, line := range c.lines {
		total += line.Quantity
	}
	return total
}

func (c *Cart) insert(productID int64, line *Line) {
	c.order = append(c.order, productID)
	c.lines[productID] = line
}

func (c *Cart) remove(productID int64) bool {
	if _, ok := c.lines[productID]; !ok {
		return false
	}
	delete(c.lines, productID)
	for i, id := range c.order {
		if id == productID {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return true
}

type lineJSON struct {
	Quantity int    `json:"quantity"`
	Price    string `json:"price"`
}

// MarshalJSON writes {"<product_id>": {"quantity": n, "price": "d.dd"}} with
// keys in insertion order. Prices are strings so no precision is lost.
func (c *Cart) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, id := range c.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		line := c.lines[id]
		value, err := json.Marshal(lineJSON{
			Quantity: line.Quantity,
			Price:    line.Price.StringFixed(models.MoneyPlaces),
		})
		if err != nil {
			return nil, err
		}
		buf.WriteString(strconv.Quote(strconv.FormatInt(id, 10)))
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON accepts only the shape written by MarshalJSON. Ids must be
// positive integers, quantities at least 1 and prices non-negative decimals.
// On error the receiver is left untouched.
func (c *Cart) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedCart, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("%w: expected object, got %v", ErrMalformedCart, tok)
	}

	decoded := newCart()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedCart, err)
		}
		key, _ := tok.(string)

		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil || id <= 0 {
			return fmt.Errorf("%w: invalid product id %q", ErrMalformedCart, key)
		}
		if _, dup := decoded.lines[id]; dup {
			return fmt.Errorf("%w: duplicate product id %d", ErrMalformedCart, id)
		}

		var raw lineJSON
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("%w: product %d: %v", ErrMalformedCart, id, err)
		}
		if raw.Quantity < 1 {
			return fmt.Errorf("%w: product %d: quantity %d", ErrMalformedCart, id, raw.Quantity)
		}
		price, err := decimal.NewFromString(raw.Price)
		if err != nil {
			return fmt.Errorf("%w: product %d: price %q", ErrMalformedCart, id, raw.Price)
		}
		if price.IsNegative() {
			return fmt.Errorf("%w: product %d: negative price %s", ErrMalformedCart, id, raw.Price)
		}

		decoded.insert(id, &Line{Quantity: raw.Quantity, Price: price})
	}

	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedCart, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return fmt.Errorf("%w: trailing data", ErrMalformedCart)
	}

	*c = *decoded
	return nil
}
