package service

import (
	"cmp"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/pcparts/marketplace/internal/core/domain"
	"github.com/pcparts/marketplace/internal/core/ports"
)

// leadingNumber matches the numeric prefix a lenient float parser accepts.
var leadingNumber = regexp.MustCompile(`^[+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?`)

// ParseAmount reads the leading decimal number of s ("12.5 USD" → 12.5).
// It reports false when s does not start with a finite number.
func ParseAmount(s string) (float64, bool) {
	m := leadingNumber.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// ParsePrice converts submitted price text to a stored price. Unparsable or
// negative input stores as 0.
func ParsePrice(s string) float64 {
	v, ok := ParseAmount(s)
	if !ok || v < 0 {
		return 0
	}
	return v
}

// FilterParts runs the listing pipeline over doc.Parts in fixed order:
// visibility, search, type, minPrice, maxPrice, details, then sort. Each
// filter is skipped when its parameter is empty.
func FilterParts(doc *domain.Document, viewer *domain.User, q ports.PartQuery) []ports.PartView {
	parts := make([]domain.Part, 0, len(doc.Parts))
	for _, p := range doc.Parts {
		if p.VisibleTo(viewer) {
			parts = append(parts, p)
		}
	}

	if q.Search != "" {
		needle := strings.ToLower(q.Search)
		parts = keep(parts, func(p domain.Part) bool {
			if strings.Contains(strings.ToLower(p.Name), needle) {
				return true
			}
			return slices.ContainsFunc(p.ExtraDetails, func(d domain.ExtraDetail) bool {
				return strings.Contains(strings.ToLower(d.Name), needle) ||
					strings.Contains(strings.ToLower(d.Value), needle)
			})
		})
	}

	if q.Type != "" {
		parts = keep(parts, func(p domain.Part) bool { return p.Type == q.Type })
	}

	if minPrice, ok := ParseAmount(q.MinPrice); ok {
		parts = keep(parts, func(p domain.Part) bool { return p.Price >= minPrice })
	}

	if maxPrice, ok := ParseAmount(q.MaxPrice); ok {
		parts = keep(parts, func(p domain.Part) bool { return p.Price <= maxPrice })
	}

	if q.Details != "" {
		needle := strings.ToLower(q.Details)
		parts = keep(parts, func(p domain.Part) bool {
			return slices.ContainsFunc(p.ExtraDetails, func(d domain.ExtraDetail) bool {
				return strings.Contains(strings.ToLower(d.Name+" "+d.Value), needle)
			})
		})
	}

	SortParts(parts, q.Sort)
	return annotate(doc, parts)
}

// SortParts orders parts in place. Unknown or empty orders leave the slice untouched.
func SortParts(parts []domain.Part, order string) {
	switch order {
	case ports.SortPriceAsc:
		slices.SortStableFunc(parts, func(a, b domain.Part) int { return cmp.Compare(a.Price, b.Price) })
	case ports.SortPriceDesc:
		slices.SortStableFunc(parts, func(a, b domain.Part) int { return cmp.Compare(b.Price, a.Price) })
	case ports.SortName:
		// Collators keep internal buffers; one per sort call.
		col := collate.New(language.English)
		slices.SortStableFunc(parts, func(a, b domain.Part) int { return col.CompareString(a.Name, b.Name) })
	}
}

func keep(parts []domain.Part, match func(domain.Part) bool) []domain.Part {
	return slices.DeleteFunc(parts, func(p domain.Part) bool { return !match(p) })
}

func annotate(doc *domain.Document, parts []domain.Part) []ports.PartView {
	out := make([]ports.PartView, 0, len(parts))
	for _, p := range parts {
		out = append(out, ports.PartView{Part: p, OwnerName: doc.OwnerName(p.UserID)})
	}
	return out
}
