package offset

import (
	"errors"
	"fmt"
)

var ErrInvalidChain = errors.New("invalid reference chain")

// Chain is the ordered list of date/time fields. Each field may be derived
// from its immediate predecessor.
type Chain struct {
	fields []string
	index  map[string]int
}

// NewChain builds a chain from field identifiers in order.
func NewChain(fields []string) (Chain, error) {
	c := Chain{
		fields: make([]string, 0, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	for _, f := range fields {
		if f == "" {
			return Chain{}, fmt.Errorf("%w: empty field name", ErrInvalidChain)
		}
		if _, dup := c.index[f]; dup {
			return Chain{}, fmt.Errorf("%w: %q listed twice", ErrInvalidChain, f)
		}
		c.index[f] = len(c.fields)
		c.fields = append(c.fields, f)
	}
	return c, nil
}

// MustChain is NewChain for fixed, known-good field lists.
func MustChain(fields ...string) Chain {
	c, err := NewChain(fields)
	if err != nil {
		panic(err)
	}
	return c
}

// Previous returns the field before field, or false for the first field or an unknown id.
func (c Chain) Previous(field string) (string, bool) {
	i, ok := c.index[field]
	if !ok || i == 0 {
		return "", false
	}
	return c.fields[i-1], true
}

// Next returns the field after field, or false for the last field or an unknown id.
func (c Chain) Next(field string) (string, bool) {
	i, ok := c.index[field]
	if !ok || i == len(c.fields)-1 {
		return "", false
	}
	return c.fields[i+1], true
}

func (c Chain) Contains(field string) bool {
	_, ok := c.index[field]
	return ok
}

// Fields returns a copy of the chain order.
func (c Chain) Fields() []string {
	out := make([]string, len(c.fields))
	copy(out, c.fields)
	return out
}

func (c Chain) Len() int { return len(c.fields) }
