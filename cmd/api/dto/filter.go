package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FilterItem represents a single filter option with its count
type FilterItem struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// OrderedCounts is a category → count map that keeps the canonical category order
// when encoded as a JSON object.
type OrderedCounts []FilterItem

func (o OrderedCounts) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, item := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(item.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		fmt.Fprintf(&buf, "%d", item.Count)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (o *OrderedCounts) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*o = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("dto: category counts must be a JSON object")
	}
	out := OrderedCounts{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := keyTok.(string)
		var count int
		if err := dec.Decode(&count); err != nil {
			return err
		}
		out = append(out, FilterItem{Name: key, Count: count})
	}
	*o = out
	return nil
}

// Get returns the count of name and whether it is present.
func (o OrderedCounts) Get(name string) (int, bool) {
	for _, item := range o {
		if item.Name == name {
			return item.Count, true
		}
	}
	return 0, false
}

// Sum adds every category count.
func (o OrderedCounts) Sum() int {
	total := 0
	for _, item := range o {
		total += item.Count
	}
	return total
}

// CategoryCountsDTO represents the response for category counts.
//
// Categorized is the sum of Categories; Total also includes published items
// that declare no category.
type CategoryCountsDTO struct {
	Total       int           `json:"total"`
	Categorized int           `json:"categorized"`
	Categories  OrderedCounts `json:"categories" swaggertype:"object,number"`
	Error       string        `json:"error,omitempty"`
}

// ZeroCounts returns a map holding every category with a zero count.
func ZeroCounts(categories []string) CategoryCountsDTO {
	items := make(OrderedCounts, len(categories))
	for i, name := range categories {
		items[i] = FilterItem{Name: name}
	}
	return CategoryCountsDTO{Categories: items}
}
