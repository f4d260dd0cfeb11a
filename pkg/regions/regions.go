package regions

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/philipparndt/gomeasure/pkg/calibration"
	"github.com/philipparndt/gomeasure/pkg/geometry"
	"gonum.org/v1/gonum/spatial/r2"
)

var (
	// ErrInvalidRegion is returned when a region has degenerate geometry or an unusable scale
	ErrInvalidRegion = errors.New("invalid region")
	// ErrRegionNotFound is returned when removing an unknown region
	ErrRegionNotFound = errors.New("region not found")
)

// Region is a named area of a drawing with its own calibration
type Region struct {
	ID          string
	Name        string
	Slug        string
	Points      []geometry.Point // closed polygon, at least 3 points
	Bounds      r2.Box           // bounding box of Points
	Rectangular bool
	Calibration calibration.Calibration
	CreatedAt   time.Time
	Seq         uint64 // creation order, starting at 1
}

// Contains reports whether p lies inside the region
func (r Region) Contains(p geometry.Point) bool {
	if !r.Bounds.Contains(r2.Vec{X: p.X, Y: p.Y}) {
		return false
	}
	return geometry.Contains(r.Points, p)
}

// Index holds the scale regions of a drawing.
// When regions overlap, the most recently added region containing a point wins.
// Index is safe for concurrent use.
type Index struct {
	mu      sync.RWMutex
	regions []Region // creation order
	nextSeq uint64
}

// NewIndex creates an empty region index
func NewIndex() *Index {
	return &Index{}
}

// AddRegion adds a polygonal region with its own calibration
func (idx *Index) AddRegion(points []geometry.Point, cal calibration.Calibration, name string) (Region, error) {
	if len(points) < 3 {
		return Region{}, fmt.Errorf("%w: polygon needs at least 3 points, got %d", ErrInvalidRegion, len(points))
	}
	for i, p := range points {
		if !p.Finite() {
			return Region{}, fmt.Errorf("%w: point %d is not finite", ErrInvalidRegion, i)
		}
	}
	if area, _ := geometry.PolygonArea(points); area == 0 {
		return Region{}, fmt.Errorf("%w: polygon has no area", ErrInvalidRegion)
	}
	return idx.add(points, cal, name, false)
}

// AddBounds adds an axis-aligned rectangular region
func (idx *Index) AddBounds(box r2.Box, cal calibration.Calibration, name string) (Region, error) {
	minX, maxX := box.Min.X, box.Max.X
	minY, maxY := box.Min.Y, box.Max.Y
	if minX > maxX {
		minX, maxX = maxX, minX
	}
	if minY > maxY {
		minY, maxY = maxY, minY
	}
	if minX == maxX || minY == maxY {
		return Region{}, fmt.Errorf("%w: bounds have no area", ErrInvalidRegion)
	}

	corners := []geometry.Point{
		{X: minX, Y: minY},
		{X: maxX, Y: minY},
		{X: maxX, Y: maxY},
		{X: minX, Y: maxY},
	}
	for i, p := range corners {
		if !p.Finite() {
			return Region{}, fmt.Errorf("%w: corner %d is not finite", ErrInvalidRegion, i)
		}
	}
	return idx.add(corners, cal, name, true)
}

func (idx *Index) add(points []geometry.Point, cal calibration.Calibration, name string, rect bool) (Region, error) {
	if !calibration.IsValid(cal) {
		return Region{}, fmt.Errorf("%w: %w", ErrInvalidRegion, calibration.ErrInvalidCalibration)
	}

	pts := make([]geometry.Point, len(points))
	copy(pts, points)
	min, max := geometry.Bounds(pts)

	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.nextSeq++
	if name == "" {
		name = fmt.Sprintf("Region %d", idx.nextSeq)
	}
	region := Region{
		ID:          uuid.NewString(),
		Name:        name,
		Slug:        idx.uniqueSlug(name),
		Points:      pts,
		Bounds:      r2.Box{Min: r2.Vec{X: min.X, Y: min.Y}, Max: r2.Vec{X: max.X, Y: max.Y}},
		Rectangular: rect,
		Calibration: cal,
		CreatedAt:   time.Now().UTC(),
		Seq:         idx.nextSeq,
	}
	idx.regions = append(idx.regions, region)
	return region.clone(), nil
}

// uniqueSlug returns the slug of name, suffixed with -2, -3, ... while another
// region holds it. The caller holds idx.mu.
func (idx *Index) uniqueSlug(name string) string {
	base := slug.Make(name)
	taken := make(map[string]bool, len(idx.regions))
	for _, r := range idx.regions {
		taken[r.Slug] = true
	}
	s := base
	for n := 2; taken[s]; n++ {
		s = fmt.Sprintf("%s-%d", base, n)
	}
	return s
}

// Remove deletes a region. Measurements already taken inside it keep their values.
func (idx *Index) Remove(id string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	for i, r := range idx.regions {
		if r.ID == id || r.Slug == id {
			idx.regions = append(idx.regions[:i], idx.regions[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrRegionNotFound, id)
}

// Get returns a region by ID or slug
func (idx *Index) Get(id string) (Region, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	for _, r := range idx.regions {
		if r.ID == id || r.Slug == id {
			return r.clone(), true
		}
	}
	return Region{}, false
}

// ResolveRegion returns the most recently added region containing p
func (idx *Index) ResolveRegion(p geometry.Point) (Region, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	for i := len(idx.regions) - 1; i >= 0; i-- {
		if idx.regions[i].Contains(p) {
			return idx.regions[i].clone(), true
		}
	}
	return Region{}, false
}

// Resolve returns the calibration that applies at p: the calibration of the most
// recently added region containing p, otherwise global. It reports false when the
// resulting calibration is not valid, meaning p is uncalibrated.
func (idx *Index) Resolve(p geometry.Point, global calibration.Calibration) (calibration.Calibration, bool) {
	if r, ok := idx.ResolveRegion(p); ok {
		return r.Calibration, true
	}
	return global, calibration.IsValid(global)
}

// Regions returns a snapshot of all regions in creation order
func (idx *Index) Regions() []Region {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	out := make([]Region, len(idx.regions))
	for i, r := range idx.regions {
		out[i] = r.clone()
	}
	return out
}

// Len returns the number of regions
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.regions)
}

// Clear removes every region
func (idx *Index) Clear() {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.regions = nil
}

func (r Region) clone() Region {
	out := r
	out.Points = make([]geometry.Point, len(r.Points))
	copy(out.Points, r.Points)
	return out
}
