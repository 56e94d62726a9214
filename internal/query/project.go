package query

import (
	"encoding/json"
	"fmt"
)

// Project keeps only the given JSON fields (plus "id") of every element of items.
// With no fields, items is returned unchanged.
func Project(items any, fields []string) (any, error) {
	if len(fields) == 0 {
		return items, nil
	}

	raw, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal items for projection: %w", err)
	}

	var rows []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal items for projection: %w", err)
	}

	keep := append([]string{"id"}, fields...)
	projected := make([]map[string]json.RawMessage, len(rows))
	for i, row := range rows {
		out := make(map[string]json.RawMessage, len(keep))
		for _, field := range keep {
			if v, ok := row[field]; ok {
				out[field] = v
			}
		}
		projected[i] = out
	}

	return projected, nil
}
