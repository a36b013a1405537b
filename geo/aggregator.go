package geo

import (
	"github.com/golang/geo/r1"
	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

// ViewPort is the visible map rectangle of a dashboard session.
type ViewPort struct {
	LatMin float64
	LonMin float64
	LatMax float64
	LonMax float64
}

// Point is a map center point.
type Point struct {
	Lat float64
	Lon float64
}

// Cluster is one aggregated map marker.
type Cluster struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Count     int64   `json:"count"`
}

type aggrUnit struct {
	cnt      int64
	origCell s2.CellID
}

// Aggregator buckets report locations into S2 cells sized to the viewport,
// so the dashboard map shows a bounded number of markers at any zoom.
type Aggregator struct {
	level int
	aggrs map[s2.CellID]*aggrUnit
}

const (
	expectedCells = 160
	minLevel      = 6
	maxLevel      = 16
)

func cellBaseLevel(vp *ViewPort, center *Point) int {
	minLL := s2.LatLngFromDegrees(vp.LatMin, vp.LonMin)
	maxLL := s2.LatLngFromDegrees(vp.LatMax, vp.LonMax)

	rect := s2.Rect{
		Lat: r1.Interval{
			Lo: minLL.Lat.Radians(),
			Hi: maxLL.Lat.Radians()},
		Lng: s1.Interval{
			Lo: minLL.Lng.Radians(),
			Hi: maxLL.Lng.Radians()},
	}

	vpArea := rect.Area()

	centerCell := s2.CellIDFromLatLng(s2.LatLngFromDegrees(center.Lat, center.Lon))

	for lv := maxLevel; lv >= minLevel; lv-- {
		cc := s2.CellFromCellID(centerCell.Parent(lv))
		if vpArea/cc.ApproxArea() < expectedCells {
			return lv
		}
	}
	return minLevel // Large enough level
}

// NewAggregator creates an aggregator for the given viewport and center.
func NewAggregator(vp *ViewPort, center *Point) *Aggregator {
	return &Aggregator{
		level: cellBaseLevel(vp, center),
		aggrs: make(map[s2.CellID]*aggrUnit),
	}
}

// AddPoint buckets one report location.
func (a *Aggregator) AddPoint(lat, lon float64) {
	pc := s2.CellIDFromLatLng(s2.LatLngFromDegrees(lat, lon))
	parent := pc.Parent(a.level)
	if _, ok := a.aggrs[parent]; !ok {
		a.aggrs[parent] = &aggrUnit{}
	}
	a.aggrs[parent].cnt++
	a.aggrs[parent].origCell = pc
}

// Clusters returns the aggregated markers. A cell holding a single report
// keeps the report's own coordinates instead of the cell center.
func (a *Aggregator) Clusters() []Cluster {
	r := make([]Cluster, 0, len(a.aggrs))
	for c, unit := range a.aggrs {
		ll := c.LatLng()
		if unit.cnt == 1 {
			ll = unit.origCell.LatLng()
		}
		r = append(r, Cluster{
			Latitude:  ll.Lat.Degrees(),
			Longitude: ll.Lng.Degrees(),
			Count:     unit.cnt,
		})
	}
	return r
}
