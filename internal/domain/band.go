package domain

import "fmt"

// Band is one height-bounded panel of the profile, in whole elevation units.
type Band struct {
	Top  int
	Base int
}

// Height is Top minus Base.
func (b Band) Height() int { return b.Top - b.Base }

// BandSet is the ordered band list together with the distance at which each
// band ends. The final break distance is always the route's maximum distance.
type BandSet struct {
	Bands          []Band
	BreakDistances []float64
}

// Count is the number of bands.
func (bs *BandSet) Count() int { return len(bs.Bands) }

// ClampIndex limits i to [0, Count()-1].
func (bs *BandSet) ClampIndex(i int) int {
	if i < 0 {
		return 0
	}
	if i >= len(bs.Bands) {
		return len(bs.Bands) - 1
	}
	return i
}

// TopLevel returns the top level of band i, clamped to a valid band.
func (bs *BandSet) TopLevel(i int) int { return bs.Bands[bs.ClampIndex(i)].Top }

// BandIndexAt returns the first band whose break distance is at or beyond d.
// Distances past the last break fall in the last band.
func (bs *BandSet) BandIndexAt(d float64) int {
	for i, b := range bs.BreakDistances {
		if d <= b {
			return bs.ClampIndex(i)
		}
	}
	return len(bs.Bands) - 1
}

// Range returns the distance interval drawn by band i. The first band starts at 0.
func (bs *BandSet) Range(i int) (start, end float64) {
	i = bs.ClampIndex(i)
	if i > 0 {
		start = bs.BreakDistances[i-1]
	}
	return start, bs.BreakDistances[i]
}

// MaxDistance is the true maximum route distance (the last break).
func (bs *BandSet) MaxDistance() float64 {
	return bs.BreakDistances[len(bs.BreakDistances)-1]
}

// Validate checks the structural invariants shared by every consumer.
func (bs *BandSet) Validate() error {
	if len(bs.Bands) == 0 {
		return fmt.Errorf("band set: %w: no bands", ErrInvalidConfig)
	}
	if len(bs.Bands) != len(bs.BreakDistances) {
		return fmt.Errorf("band set: %w: %d bands but %d break distances",
			ErrInvalidConfig, len(bs.Bands), len(bs.BreakDistances))
	}
	for i, b := range bs.Bands {
		if b.Top <= b.Base {
			return fmt.Errorf("band set: %w: band %d top %d not above base %d", ErrInvalidConfig, i, b.Top, b.Base)
		}
	}
	return nil
}
