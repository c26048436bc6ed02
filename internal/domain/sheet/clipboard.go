package sheet

import "encoding/json"

// Clipboard holds copied date/time values. It belongs to whoever drives the
// sheet and is passed to each copy/paste call.
type Clipboard struct {
	single      string
	column      []string
	columnField string
}

// Single returns the copied cell value; "" means nothing to paste.
func (c *Clipboard) Single() string { return c.single }

// Column returns the copied column values and the field they came from.
func (c *Clipboard) Column() ([]string, string) {
	return c.column, c.columnField
}

// HasColumn reports whether a column has been copied
func (c *Clipboard) HasColumn() bool { return c.column != nil }

// Clear forgets everything copied so far.
func (c *Clipboard) Clear() {
	*c = Clipboard{}
}

type clipboardJSON struct {
	Single      string   `json:"single,omitempty"`
	Column      []string `json:"column"`
	ColumnField string   `json:"column_field,omitempty"`
}

func (c Clipboard) MarshalJSON() ([]byte, error) {
	return json.Marshal(clipboardJSON{Single: c.single, Column: c.column, ColumnField: c.columnField})
}

func (c *Clipboard) UnmarshalJSON(data []byte) error {
	var v clipboardJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*c = Clipboard{single: v.Single, column: v.Column, columnField: v.ColumnField}
	return nil
}
