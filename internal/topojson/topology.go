// Package topojson parses TopoJSON topologies and decodes their named
// objects into GeoJSON feature collections.
package topojson

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/tidwall/gjson"
)

var (
	ErrInvalidJSON       = errors.New("invalid JSON")
	ErrNotTopology       = errors.New("not a topology")
	ErrUnknownObject     = errors.New("unknown object")
	ErrUnknownGeometry   = errors.New("unknown geometry type")
	ErrMalformedGeometry = errors.New("malformed geometry")
	ErrArcIndex          = errors.New("arc index out of range")
)

// Transform describes how quantized positions map back to coordinates.
type Transform struct {
	Scale     [2]float64 `json:"scale"`
	Translate [2]float64 `json:"translate"`
}

// Apply converts a quantized position into an absolute point.
func (t *Transform) Apply(x, y float64) orb.Point {
	if t == nil {
		return orb.Point{x, y}
	}
	return orb.Point{
		x*t.Scale[0] + t.Translate[0],
		y*t.Scale[1] + t.Translate[1],
	}
}

// Geometry is a topology-encoded geometry object. Arcs and Coordinates are
// kept raw because their nesting depends on Type.
type Geometry struct {
	Type        string                 `json:"type"`
	ID          interface{}            `json:"id,omitempty"`
	Properties  map[string]interface{} `json:"properties,omitempty"`
	BBox        []float64              `json:"bbox,omitempty"`
	Arcs        json.RawMessage        `json:"arcs,omitempty"`
	Coordinates json.RawMessage        `json:"coordinates,omitempty"`
	Geometries  []*Geometry            `json:"geometries,omitempty"`
}

// NamedObject is one entry of the topology objects mapping.
type NamedObject struct {
	Key      string
	Geometry *Geometry
}

// Topology is a parsed TopoJSON document. It is read-only once parsed and
// safe to decode from several goroutines.
type Topology struct {
	Type      string
	Transform *Transform
	BBox      []float64
	Arcs      [][][]float64

	// Objects in the order they appear in the document
	Objects []NamedObject

	// absolute arc points, shared by every decode call
	arcs [][]orb.Point
}

type topologyDoc struct {
	Transform *Transform    `json:"transform"`
	BBox      []float64     `json:"bbox"`
	Arcs      [][][]float64 `json:"arcs"`
}

// Load reads the file at path and parses it as a topology.
func Load(path string) (*Topology, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return Parse(data)
}

// Parse parses a TopoJSON document and decodes its shared arc table.
func Parse(data []byte) (*Topology, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidJSON
	}

	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: root is not an object", ErrNotTopology)
	}
	if t := root.Get("type").String(); t != "Topology" {
		return nil, fmt.Errorf("%w: type %q", ErrNotTopology, t)
	}

	objects := root.Get("objects")
	if !objects.IsObject() {
		return nil, fmt.Errorf("%w: objects must be an object", ErrNotTopology)
	}
	if !root.Get("arcs").IsArray() {
		return nil, fmt.Errorf("%w: arcs must be an array", ErrNotTopology)
	}

	var doc topologyDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotTopology, err)
	}

	topo := &Topology{
		Type:      "Topology",
		Transform: doc.Transform,
		BBox:      doc.BBox,
		Arcs:      doc.Arcs,
		arcs:      make([][]orb.Point, len(doc.Arcs)),
	}

	for i, arc := range doc.Arcs {
		points, err := decodeArc(arc, doc.Transform)
		if err != nil {
			return nil, fmt.Errorf("arc %d: %w", i, err)
		}
		topo.arcs[i] = points
	}

	var err error
	objects.ForEach(func(key, value gjson.Result) bool {
		var g Geometry
		if err = json.Unmarshal([]byte(value.Raw), &g); err != nil {
			err = fmt.Errorf("object %q: %w: %v", key.String(), ErrMalformedGeometry, err)
			return false
		}

		topo.Objects = append(topo.Objects, NamedObject{Key: key.String(), Geometry: &g})
		return true
	})
	if err != nil {
		return nil, err
	}

	return topo, nil
}

// Keys returns the object keys in document order.
func (t *Topology) Keys() []string {
	keys := make([]string, 0, len(t.Objects))
	for _, o := range t.Objects {
		keys = append(keys, o.Key)
	}
	return keys
}

// Object looks up a named object by key.
func (t *Topology) Object(key string) (NamedObject, bool) {
	for _, o := range t.Objects {
		if o.Key == key {
			return o, true
		}
	}
	return NamedObject{}, false
}

// decodeArc turns an encoded arc into absolute points. With a transform the
// positions are delta-encoded and quantized.
func decodeArc(arc [][]float64, tr *Transform) ([]orb.Point, error) {
	points := make([]orb.Point, len(arc))

	var x, y float64
	for i, p := range arc {
		if len(p) < 2 {
			return nil, fmt.Errorf("%w: position %d has %d values", ErrMalformedGeometry, i, len(p))
		}

		if tr == nil {
			points[i] = orb.Point{p[0], p[1]}
			continue
		}

		x += p[0]
		y += p[1]
		points[i] = tr.Apply(x, y)
	}

	return points, nil
}
