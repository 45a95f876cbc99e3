// Package estimate computes the minimal grid footprint for a note's text.
//
// Given the pixel width of one grid column, the estimator tries every
// candidate card width, measures the text at the pixel width that card
// leaves for content, and scores the resulting (w, h) pair. The score
// penalizes tall-narrow and very wide shapes, biasing toward roughly
// square, readable cards.
//
// The core is pure: same content, same pixel environment, same measurer →
// same size. The optional cache layer is transparent to callers.
package estimate

import (
	"context"
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/sqing33/stickyboard/pkg/cache"
	"github.com/sqing33/stickyboard/pkg/grid"
	"github.com/sqing33/stickyboard/pkg/measure"
	"github.com/sqing33/stickyboard/pkg/observability"
)

// Env is the pixel environment the estimator sizes against. It changes
// when the user resizes the browser, which is why auto-arrange re-estimates
// with the live value.
type Env struct {
	// CellPx is the pixel size of one square grid unit.
	CellPx float64 `json:"cell_px" toml:"cell_px"`

	// InsetPx is the per-side visual gap reserved between adjacent cards.
	InsetPx float64 `json:"inset_px" toml:"inset_px"`
}

// Valid reports whether the environment can be measured against.
func (e Env) Valid() bool { return e.CellPx > 0 && e.InsetPx >= 0 }

// Fixed card chrome in pixels, matching the note card's CSS.
const (
	cardPadPx = 12.0 // padding inside the card border, per side
	headerPx  = 28.0 // tag row at the top of the card
	marginPx  = 8.0  // slack below the text so descenders never clip
)

const (
	// minWidth is the narrowest candidate card, 1/6 of the board.
	minWidth = grid.Cols / 6

	// wideThreshold is where the width penalty starts, about 2/3 of the
	// board.
	wideThreshold = 32

	// maxRows caps card height as a safety bound.
	maxRows = 200
)

// FallbackSize is returned for empty content or when no measurer is
// available: a square card a third of the board wide.
var FallbackSize = grid.Size{W: grid.Cols / 3, H: grid.Cols / 3}

// Size computes the footprint for content without caching.
// A nil measurer or an unusable environment yields [FallbackSize].
func Size(content string, env Env, m measure.Measurer) grid.Size {
	content = strings.TrimSpace(content)
	if content == "" || m == nil || !env.Valid() {
		return FallbackSize
	}

	best := FallbackSize
	bestScore := math.MaxFloat64

	for w := minWidth; w <= grid.Cols; w++ {
		textWidth := float64(w)*env.CellPx - 2*env.InsetPx - 2*cardPadPx
		if textWidth <= 0 {
			continue
		}

		textHeight := m.Height(content, textWidth)
		cardHeight := 2*env.InsetPx + 2*cardPadPx + headerPx + textHeight + marginPx

		h := int(math.Ceil(cardHeight / env.CellPx))
		if h < 1 {
			h = 1
		}
		if h > maxRows {
			h = maxRows
		}

		score := scoreShape(w, h)
		if score < bestScore {
			bestScore = score
			best = grid.Size{W: w, H: h}
		}
	}
	return best
}

// scoreShape rates a candidate footprint: area, plus a double penalty for
// height exceeding width, plus a penalty for width past the threshold.
func scoreShape(w, h int) float64 {
	score := float64(w * h)
	if h > w {
		score += float64(2 * (h - w))
	}
	if w > wideThreshold {
		score += float64(w - wideThreshold)
	}
	return score
}

// Estimator wraps the pure computation with an optional result cache.
type Estimator struct {
	Measurer measure.Measurer
	Cache    cache.Cache
	TTL      time.Duration
}

// DefaultTTL bounds how long measurement results stay valid; the font
// metrics they depend on only change on deploys.
const DefaultTTL = 24 * time.Hour

// New creates an estimator. A nil cache disables caching; a nil measurer
// makes every estimate return [FallbackSize].
func New(m measure.Measurer, c cache.Cache) *Estimator {
	if c == nil {
		c = cache.NewNullCache()
	}
	return &Estimator{Measurer: m, Cache: c, TTL: DefaultTTL}
}

// Size computes the footprint for content, consulting the cache first.
// Cache failures are treated as misses; estimation never fails.
func (e *Estimator) Size(ctx context.Context, content string, env Env) grid.Size {
	start := time.Now()
	defer func() {
		observability.Layout().OnEstimate(ctx, len(content), time.Since(start))
	}()

	key := cache.Key("estimate", content, env.CellPx, env.InsetPx)
	if data, ok, err := e.Cache.Get(ctx, key); err == nil && ok {
		var s grid.Size
		if json.Unmarshal(data, &s) == nil && grid.ClampSize(s) == s {
			observability.Cache().OnCacheHit(ctx, "estimate")
			return s
		}
	}
	observability.Cache().OnCacheMiss(ctx, "estimate")

	s := Size(content, env, e.Measurer)
	if data, err := json.Marshal(s); err == nil {
		if e.Cache.Set(ctx, key, data, e.TTL) == nil {
			observability.Cache().OnCacheSet(ctx, "estimate", len(data))
		}
	}
	return s
}
