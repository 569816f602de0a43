package cards

import (
	"context"

	"github.com/pnpforge/cardsheets/internal/geometry"
	"github.com/pnpforge/cardsheets/internal/prep"
	"github.com/pnpforge/cardsheets/pkg/models"
)

// Analysis summarizes the pixel dimensions of a deck's images against
// the active geometry.
type Analysis struct {
	TotalPairs int
	// TooSmall lists files below inner size; they are upscaled during
	// preprocessing rather than rejected, but the user is told.
	TooSmall []string
	// BleedCapablePairs counts pairs whose every existing side is at
	// least bleed-canvas sized.
	BleedCapablePairs int
}

// AllBleedCapable reports whether the bleed layout can use the whole
// deck. Mixed decks disqualify the layout entirely: a sheet mixing
// bleed and non-bleed cells would not cut cleanly.
func (a Analysis) AllBleedCapable() bool {
	return a.TotalPairs > 0 && a.BleedCapablePairs == a.TotalPairs
}

// Analyze inspects every card side once (sizes are memoized per file)
// and classifies the deck. Unreadable files count as zero-sized: they
// show up as too-small and exclude their pair from the bleed layout,
// while rendering still proceeds best-effort.
func Analyze(ctx context.Context, pairs []models.CardPair, geom geometry.Geometry) (Analysis, error) {
	analysis := Analysis{TotalPairs: len(pairs)}

	sizes := make(map[string][2]int)
	sizeOf := func(path string) (int, int) {
		if s, ok := sizes[path]; ok {
			return s[0], s[1]
		}
		w, h, err := prep.PixelSize(path)
		if err != nil {
			w, h = 0, 0
		}
		sizes[path] = [2]int{w, h}
		return w, h
	}

	seenSmall := make(map[string]bool)
	for _, pair := range pairs {
		select {
		case <-ctx.Done():
			return analysis, ctx.Err()
		default:
		}

		bleedOK := true
		for _, side := range []string{pair.Front, pair.Back} {
			if side == "" {
				continue
			}
			w, h := sizeOf(side)
			if (w < geom.InnerPxW || h < geom.InnerPxH) && !seenSmall[side] {
				seenSmall[side] = true
				analysis.TooSmall = append(analysis.TooSmall, side)
			}
			if w < geom.BleedPxW || h < geom.BleedPxH {
				bleedOK = false
			}
		}
		if bleedOK {
			analysis.BleedCapablePairs++
		}
	}

	return analysis, nil
}
