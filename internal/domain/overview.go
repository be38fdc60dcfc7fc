package domain

import "github.com/shopspring/decimal"

// RoomGroup holds the filtered items belonging to one room. Groups exist for
// every configured room, in configuration order, even when empty.
type RoomGroup struct {
	Room  string  `json:"room"`
	Items []*Item `json:"items"`
}

// Overview is the derived view of the raw collection: room groups computed
// from the filtered list, the distinct category set, and committed-spend
// totals per currency. Totals are computed over the unfiltered collection so
// they reflect true committed spend regardless of the active filters.
type Overview struct {
	Groups        []RoomGroup                `json:"groups"`
	Categories    []string                   `json:"categories"`
	Totals        map[string]decimal.Decimal `json:"totals"`
	FilteredCount int                        `json:"filteredCount"`
	TotalCount    int                        `json:"totalCount"`
}
