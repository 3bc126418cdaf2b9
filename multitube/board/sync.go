package board

import "strings"

const cascadeStep = 50

// ParseInput returns the distinct video ids of text in order of first
// appearance. Blank lines and lines without an id are skipped.
func ParseInput(text string) []string {
	seen := make(map[string]bool)
	ids := make([]string, 0, 8)
	for _, line := range strings.Split(text, "\n") {
		id, ok := ExtractID(strings.TrimSpace(line))
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}

// Sync reconciles the tile list against the ids found in text.
//
// Tiles whose id is still present are kept as they are. New ids get a fresh
// tile keyed from nextKey, cascaded from the top-left corner and stacked on
// top of everything else. When the result holds the same keys in the same
// order as current, current itself is returned so callers can skip a
// redraw.
func Sync(text string, current []Tile, nextKey int, vp Viewport) ([]Tile, int) {
	ids := ParseInput(text)

	byID := make(map[string]Tile, len(current))
	for _, t := range current {
		byID[t.ID] = t
	}

	preserved := 0
	for _, id := range ids {
		if _, ok := byID[id]; ok {
			preserved++
		}
	}

	result := make([]Tile, 0, len(ids))
	created := 0
	z := maxZ(current)
	for _, id := range ids {
		if t, ok := byID[id]; ok {
			result = append(result, t)
			continue
		}
		placed := preserved + created
		z++
		result = append(result, Tile{
			ID:     id,
			Key:    nextKey,
			X:      cascade(placed, vp.EffectiveWidth()-DefaultTileWidth-cascadeStep),
			Y:      cascade(placed, vp.EffectiveHeight()-DefaultTileHeight-cascadeStep),
			Width:  DefaultTileWidth,
			Height: DefaultTileHeight,
			Z:      z,
		})
		nextKey++
		created++
	}

	if SameKeys(result, current) {
		return current, nextKey
	}
	return result, nextKey
}

// cascade offsets the n-th tile along one axis, wrapping at span. A
// negative span still wraps, by its magnitude; a zero span gives 0.
func cascade(n, span int) int {
	if span == 0 {
		return 0
	}
	return (n * cascadeStep) % span
}

// RemoveFromInput drops blank lines and every line mentioning id.
func RemoveFromInput(text, id string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0:0]
	for _, line := range lines {
		if strings.TrimSpace(line) == "" || strings.Contains(line, id) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}
