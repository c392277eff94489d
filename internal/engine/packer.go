package engine

import (
	"errors"
	"fmt"
	"sort"

	"github.com/piwi3910/plannest/internal/model"
)

// ErrPackerUnavailable is returned when the requested packing strategy does
// not exist. It is surfaced before any sheet is allocated.
var ErrPackerUnavailable = errors.New("packing strategy unavailable")

// Candidate is one spacing-inflated rectangle submitted to the packer. ID
// maps the candidate back to its originating part.
type Candidate struct {
	ID     string
	Width  int
	Height int
}

// Placement is one packed candidate: which bin it landed in, its position,
// and its placed dimensions (swapped versus the candidate when Rotated).
type Placement struct {
	ID      string
	Bin     int
	X       int
	Y       int
	Width   int
	Height  int
	Rotated bool
}

// binRect is a free or used rectangle inside one bin.
type binRect struct {
	x, y, w, h int
}

// scoreFunc rates how well a w x h rectangle fits into a free rect. Lower is
// better; the two values are compared lexicographically.
type scoreFunc func(free binRect, w, h int) (int, int)

// scoreBSSF implements Best Short Side Fit: minimize the smaller leftover
// dimension, tie-break on the larger one.
func scoreBSSF(free binRect, w, h int) (int, int) {
	dw := free.w - w
	dh := free.h - h
	if dw < dh {
		return dw, dh
	}
	return dh, dw
}

// scoreBLSF implements Best Long Side Fit.
func scoreBLSF(free binRect, w, h int) (int, int) {
	dw := free.w - w
	dh := free.h - h
	if dw > dh {
		return dw, dh
	}
	return dh, dw
}

// scoreBAF implements Best Area Fit: minimize leftover area, tie-break on the
// short side.
func scoreBAF(free binRect, w, h int) (int, int) {
	short, _ := scoreBSSF(free, w, h)
	return free.w*free.h - w*h, short
}

// Packer packs rectangles into a set of fixed-size bins using the MaxRects
// heuristic. Packing is offline and deterministic: candidates are stably
// sorted by area descending and ties between positions are broken by bin
// index, then y, then x.
type Packer struct {
	allowRotation bool
	score         scoreFunc
}

// NewPacker returns a packer for the named strategy. Unknown names yield
// ErrPackerUnavailable.
func NewPacker(strategy string, allowRotation bool) (*Packer, error) {
	var score scoreFunc
	switch strategy {
	case model.StrategyMaxRectsBSSF:
		score = scoreBSSF
	case model.StrategyMaxRectsBAF:
		score = scoreBAF
	case model.StrategyMaxRectsBLSF:
		score = scoreBLSF
	default:
		return nil, fmt.Errorf("%w: unknown strategy %q", ErrPackerUnavailable, strategy)
	}
	return &Packer{allowRotation: allowRotation, score: score}, nil
}

// Pack places as many candidates as possible into the given bins and returns
// the placements. Candidates that fit nowhere are omitted from the result.
// The input slices are not modified.
func (p *Packer) Pack(cands []Candidate, bins []model.PixelSize) []Placement {
	if len(cands) == 0 || len(bins) == 0 {
		return nil
	}

	free := make([][]binRect, len(bins))
	for i, b := range bins {
		if b.Width > 0 && b.Height > 0 {
			free[i] = []binRect{{0, 0, b.Width, b.Height}}
		}
	}

	ordered := make([]Candidate, len(cands))
	copy(ordered, cands)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Width*ordered[i].Height > ordered[j].Width*ordered[j].Height
	})

	var placements []Placement
	for _, c := range ordered {
		if c.Width <= 0 || c.Height <= 0 {
			continue
		}
		pl, ok := p.findBest(free, c)
		if !ok {
			continue
		}
		free[pl.Bin] = splitFreeRects(free[pl.Bin], binRect{pl.X, pl.Y, pl.Width, pl.Height})
		placements = append(placements, pl)
	}
	return placements
}

// findBest searches every free rectangle of every bin for the lowest-scoring
// position, trying the rotated orientation as well when permitted.
func (p *Packer) findBest(free [][]binRect, c Candidate) (Placement, bool) {
	best := Placement{}
	bestS1, bestS2 := 0, 0
	found := false

	consider := func(bin int, f binRect, w, h int, rotated bool) {
		if w > f.w || h > f.h {
			return
		}
		s1, s2 := p.score(f, w, h)
		if !found || s1 < bestS1 || (s1 == bestS1 && s2 < bestS2) {
			found = true
			bestS1, bestS2 = s1, s2
			best = Placement{ID: c.ID, Bin: bin, X: f.x, Y: f.y, Width: w, Height: h, Rotated: rotated}
		}
	}

	for bin := range free {
		for _, f := range free[bin] {
			consider(bin, f, c.Width, c.Height, false)
			if p.allowRotation && c.Width != c.Height {
				consider(bin, f, c.Height, c.Width, true)
			}
		}
	}
	return best, found
}

// splitFreeRects removes every free rectangle overlapping the placed rect and
// replaces it with its maximal non-overlapping strips, then prunes rectangles
// contained in another.
func splitFreeRects(rects []binRect, placed binRect) []binRect {
	var next []binRect
	for _, r := range rects {
		if !rectsOverlap(r, placed) {
			next = append(next, r)
			continue
		}
		// Left strip.
		if placed.x > r.x {
			next = append(next, binRect{r.x, r.y, placed.x - r.x, r.h})
		}
		// Right strip.
		if placed.x+placed.w < r.x+r.w {
			next = append(next, binRect{placed.x + placed.w, r.y, r.x + r.w - placed.x - placed.w, r.h})
		}
		// Top strip.
		if placed.y > r.y {
			next = append(next, binRect{r.x, r.y, r.w, placed.y - r.y})
		}
		// Bottom strip.
		if placed.y+placed.h < r.y+r.h {
			next = append(next, binRect{r.x, placed.y + placed.h, r.w, r.y + r.h - placed.y - placed.h})
		}
	}
	return pruneContained(next)
}

// rectsOverlap reports whether two rectangles overlap with positive area.
func rectsOverlap(a, b binRect) bool {
	return a.x < b.x+b.w && a.x+a.w > b.x && a.y < b.y+b.h && a.y+a.h > b.y
}

// pruneContained removes any rectangle fully contained within another.
func pruneContained(rects []binRect) []binRect {
	if len(rects) <= 1 {
		return rects
	}
	kept := make([]binRect, 0, len(rects))
	for i, a := range rects {
		contained := false
		for j, b := range rects {
			if i == j {
				continue
			}
			if containsRect(b, a) && !(containsRect(a, b) && j > i) {
				contained = true
				break
			}
		}
		if !contained {
			kept = append(kept, a)
		}
	}
	return kept
}

// containsRect reports whether outer fully contains inner.
func containsRect(outer, inner binRect) bool {
	return outer.x <= inner.x && outer.y <= inner.y &&
		outer.x+outer.w >= inner.x+inner.w && outer.y+outer.h >= inner.y+inner.h
}
