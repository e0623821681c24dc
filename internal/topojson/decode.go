package topojson

import (
	"encoding/json"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Decode converts the object registered under key into a feature collection.
func (t *Topology) Decode(key string) (*geojson.FeatureCollection, error) {
	obj, ok := t.Object(key)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownObject, key)
	}

	return t.DecodeObject(obj)
}

// DecodeObject converts a named object into a feature collection.
// A GeometryCollection yields one feature per member, any other geometry
// yields a collection holding a single feature.
func (t *Topology) DecodeObject(obj NamedObject) (*geojson.FeatureCollection, error) {
	fc := geojson.NewFeatureCollection()
	g := obj.Geometry

	if g != nil && g.Type == "GeometryCollection" {
		for i, member := range g.Geometries {
			f, err := t.feature(member)
			if err != nil {
				return nil, fmt.Errorf("geometry %d: %w", i, err)
			}
			fc.Append(f)
		}
		return fc, nil
	}

	f, err := t.feature(g)
	if err != nil {
		return nil, err
	}
	fc.Append(f)

	return fc, nil
}

func (t *Topology) feature(g *Geometry) (*geojson.Feature, error) {
	geom, err := t.geometry(g)
	if err != nil {
		return nil, err
	}

	f := geojson.NewFeature(geom)
	if g == nil {
		return f, nil
	}

	if g.ID != nil {
		f.ID = g.ID
	}
	if len(g.BBox) > 0 {
		f.BBox = geojson.BBox(g.BBox)
	}
	for k, v := range g.Properties {
		f.Properties[k] = v
	}

	return f, nil
}

func (t *Topology) geometry(g *Geometry) (orb.Geometry, error) {
	if g == nil {
		return nil, nil
	}

	switch g.Type {
	case "", "null":
		return nil, nil

	case "Point":
		var pos []float64
		if err := unmarshalShape(g.Coordinates, &pos); err != nil {
			return nil, err
		}
		return t.point(pos)

	case "MultiPoint":
		var pos [][]float64
		if err := unmarshalShape(g.Coordinates, &pos); err != nil {
			return nil, err
		}
		mp := make(orb.MultiPoint, 0, len(pos))
		for _, p := range pos {
			pt, err := t.point(p)
			if err != nil {
				return nil, err
			}
			mp = append(mp, pt)
		}
		return mp, nil

	case "LineString":
		var refs []int
		if err := unmarshalShape(g.Arcs, &refs); err != nil {
			return nil, err
		}
		return t.line(refs)

	case "MultiLineString":
		var refs [][]int
		if err := unmarshalShape(g.Arcs, &refs); err != nil {
			return nil, err
		}
		mls := make(orb.MultiLineString, 0, len(refs))
		for _, r := range refs {
			ls, err := t.line(r)
			if err != nil {
				return nil, err
			}
			mls = append(mls, ls)
		}
		return mls, nil

	case "Polygon":
		var refs [][]int
		if err := unmarshalShape(g.Arcs, &refs); err != nil {
			return nil, err
		}
		return t.polygon(refs)

	case "MultiPolygon":
		var refs [][][]int
		if err := unmarshalShape(g.Arcs, &refs); err != nil {
			return nil, err
		}
		mp := make(orb.MultiPolygon, 0, len(refs))
		for _, r := range refs {
			p, err := t.polygon(r)
			if err != nil {
				return nil, err
			}
			mp = append(mp, p)
		}
		return mp, nil

	case "GeometryCollection":
		c := make(orb.Collection, 0, len(g.Geometries))
		for i, member := range g.Geometries {
			geom, err := t.geometry(member)
			if err != nil {
				return nil, fmt.Errorf("geometry %d: %w", i, err)
			}
			// orb collections cannot hold null geometries
			if geom == nil {
				continue
			}
			c = append(c, geom)
		}
		return c, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownGeometry, g.Type)
}

// point applies the transform to a quantized position. Positions are never
// delta-encoded, only arcs are.
func (t *Topology) point(pos []float64) (orb.Point, error) {
	if len(pos) < 2 {
		return orb.Point{}, fmt.Errorf("%w: position has %d values", ErrMalformedGeometry, len(pos))
	}
	return t.Transform.Apply(pos[0], pos[1]), nil
}

func (t *Topology) polygon(refs [][]int) (orb.Polygon, error) {
	p := make(orb.Polygon, 0, len(refs))
	for _, r := range refs {
		ring, err := t.ring(r)
		if err != nil {
			return nil, err
		}
		p = append(p, ring)
	}
	return p, nil
}

func (t *Topology) line(refs []int) (orb.LineString, error) {
	points, err := t.stitch(refs)
	if err != nil {
		return nil, err
	}

	if len(points) == 1 {
		points = append(points, points[0])
	}
	return orb.LineString(points), nil
}

func (t *Topology) ring(refs []int) (orb.Ring, error) {
	points, err := t.stitch(refs)
	if err != nil {
		return nil, err
	}

	for len(points) > 0 && len(points) < 4 {
		points = append(points, points[0])
	}
	return orb.Ring(points), nil
}

// stitch joins the referenced arcs into one sequence of points. Consecutive
// arcs share an end point, so it is kept only once.
func (t *Topology) stitch(refs []int) ([]orb.Point, error) {
	var points []orb.Point
	for _, ref := range refs {
		arc, err := t.arc(ref)
		if err != nil {
			return nil, err
		}

		if len(points) > 0 {
			points = points[:len(points)-1]
		}
		points = append(points, arc...)
	}
	return points, nil
}

// arc resolves an arc reference. A negative reference ^i means arc i
// traversed in reverse. The shared arc table is never modified.
func (t *Topology) arc(ref int) ([]orb.Point, error) {
	idx := ref
	if ref < 0 {
		idx = ^ref
	}
	if idx >= len(t.arcs) {
		return nil, fmt.Errorf("%w: %d (table has %d arcs)", ErrArcIndex, ref, len(t.arcs))
	}

	arc := t.arcs[idx]
	if ref >= 0 {
		return arc, nil
	}

	reversed := make([]orb.Point, len(arc))
	for i, p := range arc {
		reversed[len(arc)-1-i] = p
	}
	return reversed, nil
}

func unmarshalShape(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 {
		return fmt.Errorf("%w: missing arcs or coordinates", ErrMalformedGeometry)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedGeometry, err)
	}
	return nil
}
