// Package geo post-processes decoded feature collections.
package geo

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// DedupFeatureCollection removes consecutive duplicate positions from
// polygon rings in place. Search engines reject rings that repeat a vertex.
func DedupFeatureCollection(fc *geojson.FeatureCollection) {
	for _, f := range fc.Features {
		f.Geometry = dedupGeometry(f.Geometry)
	}
}

func dedupGeometry(g orb.Geometry) orb.Geometry {
	switch g := g.(type) {
	case orb.Polygon:
		return dedupPolygon(g)
	case orb.MultiPolygon:
		for i, p := range g {
			g[i] = dedupPolygon(p)
		}
		return g
	case orb.Collection:
		for i, member := range g {
			g[i] = dedupGeometry(member)
		}
		return g
	}
	return g
}

func dedupPolygon(p orb.Polygon) orb.Polygon {
	for i, r := range p {
		p[i] = dedupRing(r)
	}
	return p
}

func dedupRing(r orb.Ring) orb.Ring {
	if len(r) == 0 {
		return r
	}

	out := make(orb.Ring, 1, len(r))
	out[0] = r[0]
	for _, p := range r[1:] {
		if !p.Equal(out[len(out)-1]) {
			out = append(out, p)
		}
	}
	return out
}

// OpenRings counts polygon rings whose last position differs from the first.
func OpenRings(fc *geojson.FeatureCollection) int {
	n := 0
	for _, f := range fc.Features {
		n += openRings(f.Geometry)
	}
	return n
}

func openRings(g orb.Geometry) int {
	n := 0
	switch g := g.(type) {
	case orb.Polygon:
		for _, r := range g {
			if !r.Closed() {
				n++
			}
		}
	case orb.MultiPolygon:
		for _, p := range g {
			n += openRings(p)
		}
	case orb.Collection:
		for _, member := range g {
			n += openRings(member)
		}
	}
	return n
}

// Bound returns the bounds of every non-null geometry in the collection.
// ok is false when there is nothing to bound.
func Bound(fc *geojson.FeatureCollection) (b orb.Bound, ok bool) {
	for _, f := range fc.Features {
		if f.Geometry == nil {
			continue
		}

		fb := f.Geometry.Bound()
		if !ok {
			b, ok = fb, true
			continue
		}
		b = b.Union(fb)
	}
	return b, ok
}

// WithBBox sets the collection bbox member from its geometry bounds.
func WithBBox(fc *geojson.FeatureCollection) {
	if b, ok := Bound(fc); ok {
		fc.BBox = geojson.NewBBox(b)
	}
}
