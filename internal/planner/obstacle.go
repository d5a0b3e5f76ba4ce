package planner

import (
	"fmt"
	"math"

	"github.com/dhconnelly/rtreego"
	"github.com/go-sod/rrt/internal/geom"
	"github.com/go-sod/rrt/pkg/container/kdtree"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

const (
	minChildren = 25
	maxChildren = 50
	// rtreego rejects rectangles with a zero side.
	boxEpsilon = 1e-9
)

// Obstacle is a no-go polygon given by its outer ring.
type Obstacle struct {
	Vertices []kdtree.Point `json:"vertices" toml:"vertices"`
}

type obstacleEntry struct {
	polygon orb.Polygon
	bbox    rtreego.Rect
}

func (e *obstacleEntry) Bounds() rtreego.Rect {
	return e.bbox
}

// Obstacles answers collision queries against a set of polygons. Candidate
// polygons are picked through an R-tree of their bounding boxes.
type Obstacles struct {
	tree *rtreego.Rtree
	len  int
}

func NewObstacles(obstacles []Obstacle) (*Obstacles, error) {
	tree := rtreego.NewTree(2, minChildren, maxChildren)
	for i, o := range obstacles {
		if len(o.Vertices) < 3 {
			return nil, fmt.Errorf("obstacle %d: polygon needs at least 3 vertices: %w", i, ErrInvalidRequest)
		}
		if err := geom.Validate(o.Vertices...); err != nil {
			return nil, fmt.Errorf("obstacle %d: %v: %w", i, err, ErrInvalidRequest)
		}
		polygon := toPolygon(o.Vertices)
		bbox, err := boundingRect(polygon.Bound())
		if err != nil {
			return nil, fmt.Errorf("obstacle %d bounding box: %w", i, err)
		}
		tree.Insert(&obstacleEntry{polygon: polygon, bbox: bbox})
	}
	return &Obstacles{tree: tree, len: len(obstacles)}, nil
}

func (o *Obstacles) Len() int {
	return o.len
}

// Contains reports whether p lies inside or on the edge of any obstacle.
func (o *Obstacles) Contains(p kdtree.Point) bool {
	if o.len == 0 {
		return false
	}
	point := orb.Point{p.X, p.Y}
	for _, entry := range o.search(orb.Bound{Min: point, Max: point}) {
		if planar.PolygonContains(entry.polygon, point) {
			return true
		}
	}
	return false
}

// SegmentClear reports whether the straight move from a to b touches no
// obstacle.
func (o *Obstacles) SegmentClear(a, b kdtree.Point) bool {
	if o.len == 0 {
		return true
	}
	pa, pb := orb.Point{a.X, a.Y}, orb.Point{b.X, b.Y}
	for _, entry := range o.search(orb.MultiPoint{pa, pb}.Bound()) {
		if planar.PolygonContains(entry.polygon, pa) || planar.PolygonContains(entry.polygon, pb) {
			return false
		}
		for _, ring := range entry.polygon {
			for i := 0; i+1 < len(ring); i++ {
				if segmentsIntersect(pa, pb, ring[i], ring[i+1]) {
					return false
				}
			}
		}
	}
	return true
}

func (o *Obstacles) search(bound orb.Bound) []*obstacleEntry {
	rect, err := boundingRect(bound)
	if err != nil {
		return nil
	}
	found := o.tree.SearchIntersect(rect)
	entries := make([]*obstacleEntry, 0, len(found))
	for _, s := range found {
		entries = append(entries, s.(*obstacleEntry))
	}
	return entries
}

func toPolygon(vertices []kdtree.Point) orb.Polygon {
	ring := make(orb.Ring, 0, len(vertices)+1)
	for _, v := range vertices {
		ring = append(ring, orb.Point{v.X, v.Y})
	}
	if !ring.Closed() {
		ring = append(ring, ring[0])
	}
	return orb.Polygon{ring}
}

func boundingRect(b orb.Bound) (rtreego.Rect, error) {
	return rtreego.NewRect(
		rtreego.Point{b.Min[0] - boxEpsilon, b.Min[1] - boxEpsilon},
		[]float64{b.Max[0] - b.Min[0] + 2*boxEpsilon, b.Max[1] - b.Min[1] + 2*boxEpsilon},
	)
}

// segmentsIntersect treats touching and collinear overlap as an
// intersection.
func segmentsIntersect(p1, p2, p3, p4 orb.Point) bool {
	d1 := direction(p3, p4, p1)
	d2 := direction(p3, p4, p2)
	d3 := direction(p1, p2, p3)
	d4 := direction(p1, p2, p4)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}

	switch {
	case d1 == 0 && onSegment(p3, p4, p1):
		return true
	case d2 == 0 && onSegment(p3, p4, p2):
		return true
	case d3 == 0 && onSegment(p1, p2, p3):
		return true
	case d4 == 0 && onSegment(p1, p2, p4):
		return true
	}
	return false
}

// direction is the cross product of (p2-p1) and (p3-p1).
func direction(p1, p2, p3 orb.Point) float64 {
	return (p3[0]-p1[0])*(p2[1]-p1[1]) - (p2[0]-p1[0])*(p3[1]-p1[1])
}

// onSegment checks if q lies within the bounding box of pr.
func onSegment(p, r, q orb.Point) bool {
	return q[0] <= math.Max(p[0], r[0]) && q[0] >= math.Min(p[0], r[0]) &&
		q[1] <= math.Max(p[1], r[1]) && q[1] >= math.Min(p[1], r[1])
}
