package service

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/yclin/homelist-backend/internal/domain"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// FilterAll is the selector value meaning "no restriction".
const FilterAll = "all"

// FilterState captures the active list filters. Room and Status accept the
// literal "all" (or empty) to mean no restriction; Category empty means all.
// The query is a case-folded substring match over name, category, brand and
// model joined by spaces. All predicates are conjunctive.
type FilterState struct {
	Query    string
	Room     string
	Status   string
	Category string
}

// ViewService derives filtered, grouped and aggregated views from the raw item
// collection. It is a pure function of its inputs: no I/O, no stored state
// beyond the vocabulary and collation locale, and every call recomputes from
// scratch. That is fine at household-inventory scale.
type ViewService struct {
	vocab  domain.Vocabulary
	locale language.Tag
}

// NewViewService creates a new ViewService.
func NewViewService(vocab domain.Vocabulary, locale language.Tag) *ViewService {
	return &ViewService{vocab: vocab, locale: locale}
}

// Categories returns the sorted set of distinct, trimmed, non-empty category
// strings present in items. Ordering uses locale-aware collation, not byte
// order, so CJK categories sort the way the household expects.
func (s *ViewService) Categories(items []*domain.Item) []string {
	seen := make(map[string]bool)
	var categories []string
	for _, item := range items {
		c := strings.TrimSpace(item.Category)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		categories = append(categories, c)
	}
	// collate.Collator carries an internal buffer, so build one per call
	// rather than sharing across requests.
	collate.New(s.locale).SortStrings(categories)
	return categories
}

// Filter returns the items matching every active predicate.
func (s *ViewService) Filter(items []*domain.Item, f FilterState) []*domain.Item {
	query := strings.ToLower(strings.TrimSpace(f.Query))
	filtered := make([]*domain.Item, 0, len(items))
	for _, item := range items {
		if !roomMatches(item, f.Room) {
			continue
		}
		if !statusMatches(item, f.Status) {
			continue
		}
		if f.Category != "" && item.Category != f.Category {
			continue
		}
		if query != "" && !strings.Contains(searchHaystack(item), query) {
			continue
		}
		filtered = append(filtered, item)
	}
	return filtered
}

func roomMatches(item *domain.Item, selector string) bool {
	return selector == "" || selector == FilterAll || item.Room == selector
}

func statusMatches(item *domain.Item, selector string) bool {
	return selector == "" || selector == FilterAll || item.Status == domain.Status(selector)
}

func searchHaystack(item *domain.Item) string {
	parts := []string{item.Name, item.Category, "", ""}
	if item.Brand != nil {
		parts[2] = *item.Brand
	}
	if item.Model != nil {
		parts[3] = *item.Model
	}
	return strings.ToLower(strings.Join(parts, " "))
}

// Group partitions items into one group per configured room, in configuration
// order. Rooms with no matching items get an empty group, not a missing one.
func (s *ViewService) Group(items []*domain.Item) []domain.RoomGroup {
	byRoom := make(map[string][]*domain.Item, len(s.vocab.Rooms))
	for _, item := range items {
		byRoom[item.Room] = append(byRoom[item.Room], item)
	}
	groups := make([]domain.RoomGroup, len(s.vocab.Rooms))
	for i, room := range s.vocab.Rooms {
		list := byRoom[room]
		if list == nil {
			list = []*domain.Item{}
		}
		groups[i] = domain.RoomGroup{Room: room, Items: list}
	}
	return groups
}

// Totals sums price per currency across items whose status equals the counted
// status. Items without a price are excluded, not treated as zero. The input
// is always the unfiltered raw collection.
func (s *ViewService) Totals(items []*domain.Item) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal)
	for _, item := range items {
		if item.Status != s.vocab.CountedStatus || item.Price == nil {
			continue
		}
		currency := item.Currency
		if currency == "" {
			currency = s.vocab.DefaultCurrency
		}
		totals[currency] = totals[currency].Add(*item.Price)
	}
	return totals
}

// Overview computes the full derived view for the given raw collection and
// filter state. Totals deliberately ignore the filters.
func (s *ViewService) Overview(items []*domain.Item, f FilterState) *domain.Overview {
	filtered := s.Filter(items, f)
	return &domain.Overview{
		Groups:        s.Group(filtered),
		Categories:    s.Categories(items),
		Totals:        s.Totals(items),
		FilteredCount: len(filtered),
		TotalCount:    len(items),
	}
}
