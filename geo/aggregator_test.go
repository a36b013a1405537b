package geo

import "testing"

func TestAggregatorClusters(t *testing.T) {
	a := NewAggregator(&ViewPort{
		LatMin: 27.60,
		LonMin: 85.25,
		LatMax: 27.80,
		LonMax: 85.45,
	}, &Point{
		Lat: 27.70,
		Lon: 85.35,
	})

	// Two near-identical points plus one far corner.
	a.AddPoint(27.7001, 85.3501)
	a.AddPoint(27.7002, 85.3502)
	a.AddPoint(27.79, 85.44)

	clusters := a.Clusters()

	var total int64
	for _, c := range clusters {
		total += c.Count
	}
	if total != 3 {
		t.Errorf("expected 3 points across clusters, got %d", total)
	}
	if len(clusters) < 2 {
		t.Errorf("expected the far point in its own cluster, got %d clusters", len(clusters))
	}
	for _, c := range clusters {
		if !ValidLatitude(c.Latitude) || !ValidLongitude(c.Longitude) {
			t.Errorf("cluster at invalid coordinates: %v", c)
		}
	}
}

func TestAggregatorSinglePointKeepsLocation(t *testing.T) {
	a := NewAggregator(&ViewPort{
		LatMin: 27.60,
		LonMin: 85.25,
		LatMax: 27.80,
		LonMax: 85.45,
	}, &Point{
		Lat: 27.70,
		Lon: 85.35,
	})

	a.AddPoint(27.7123, 85.3456)

	clusters := a.Clusters()
	if len(clusters) != 1 {
		t.Fatalf("expected 1 cluster, got %d", len(clusters))
	}

	// A lone report keeps its own position instead of snapping to the cell
	// center.
	c := clusters[0]
	if HaversineKm(c.Latitude, c.Longitude, 27.7123, 85.3456) > 0.001 {
		t.Errorf("single-point cluster moved to (%f, %f)", c.Latitude, c.Longitude)
	}
}
