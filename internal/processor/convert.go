// Package processor converts topology objects into GeoJSON files.
package processor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/woozymasta/topo2geojson/internal/geo"
	"github.com/woozymasta/topo2geojson/internal/topojson"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"
)

// Extension is appended to every object key to form the output file name.
const Extension = ".geojson"

var ErrUnsafeKey = errors.New("object key is not a valid file name")

// Job describes a single topology conversion.
type Job struct {
	// Name is used only in log output
	Name string

	// Input is a file path or an http(s) URL
	Input     string
	OutputDir string

	// Objects limits conversion to these keys, in this order. Empty means
	// every object in document order.
	Objects []string

	Compact bool
	Dedup   bool
	BBox    bool
}

// File describes one written output file.
type File struct {
	Key      string
	Path     string
	Features int
	Size     int64
}

// Result lists the files written by a job, including those written before
// a failure.
type Result struct {
	Job   string
	Files []File
}

// Convert loads the job input and writes one GeoJSON file per object.
// The first failure stops the run; files already written are left in place.
func Convert(ctx context.Context, client *http.Client, job Job) (*Result, error) {
	res := &Result{Job: job.Name}

	data, err := readSource(ctx, client, job.Input)
	if err != nil {
		return res, &StageError{Stage: StageLoad, Err: err}
	}

	topo, err := topojson.Parse(data)
	if err != nil {
		return res, &StageError{Stage: StageLoad, Err: err}
	}

	objects, err := selectObjects(topo, job.Objects)
	if err != nil {
		return res, err
	}

	log.Info().
		Str("job", job.Name).
		Str("input", job.Input).
		Int("arcs", len(topo.Arcs)).
		Int("objects_total", len(topo.Objects)).
		Int("objects_queued", len(objects)).
		Msg("Topology loaded")

	for _, obj := range objects {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		file, err := convertObject(topo, obj, job)
		if err != nil {
			return res, err
		}
		res.Files = append(res.Files, file)

		log.Info().
			Str("object", file.Key).
			Str("path", file.Path).
			Int("features", file.Features).
			Str("size", humanize.Bytes(uint64(file.Size))).
			Msg("GeoJSON written")
	}

	return res, nil
}

func convertObject(topo *topojson.Topology, obj topojson.NamedObject, job Job) (File, error) {
	log.Debug().Str("object", obj.Key).Msg("Decoding object")

	fc, err := topo.DecodeObject(obj)
	if err != nil {
		return File{}, &StageError{Stage: StageDecode, Key: obj.Key, Err: err}
	}

	if job.Dedup {
		geo.DedupFeatureCollection(fc)
	}
	if job.BBox {
		geo.WithBBox(fc)
	}
	if n := geo.OpenRings(fc); n > 0 {
		log.Warn().
			Str("object", obj.Key).
			Int("open_rings", n).
			Msg("Object has polygon rings that are not closed")
	}

	data, err := encodeGeoJSON(fc, job.Compact)
	if err != nil {
		return File{}, &StageError{Stage: StageEncode, Key: obj.Key, Err: err}
	}

	path, err := outputPath(job.OutputDir, obj.Key)
	if err != nil {
		return File{}, &StageError{Stage: StageWrite, Key: obj.Key, Err: err}
	}

	if err := saveGeoJSON(job.OutputDir, path, data); err != nil {
		return File{}, &StageError{Stage: StageWrite, Key: obj.Key, Err: err}
	}

	return File{
		Key:      obj.Key,
		Path:     path,
		Features: len(fc.Features),
		Size:     int64(len(data)),
	}, nil
}

// selectObjects applies the key filter. Without a filter every object is
// returned in document order.
func selectObjects(topo *topojson.Topology, keys []string) ([]topojson.NamedObject, error) {
	if len(keys) == 0 {
		return topo.Objects, nil
	}

	objects := make([]topojson.NamedObject, 0, len(keys))
	seen := make(map[string]bool)
	for _, key := range keys {
		if seen[key] {
			continue
		}
		seen[key] = true

		obj, ok := topo.Object(key)
		if !ok {
			return nil, &StageError{
				Stage: StageDecode,
				Key:   key,
				Err:   fmt.Errorf("%w: %q", topojson.ErrUnknownObject, key),
			}
		}
		objects = append(objects, obj)
	}

	return objects, nil
}

// outputPath builds <dir>/<key>.geojson and refuses keys that would land
// outside dir.
func outputPath(dir, key string) (string, error) {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrUnsafeKey, key)
	}
	return filepath.Join(dir, key+Extension), nil
}

// saveGeoJSON writes data to path, creating dir if needed.
func saveGeoJSON(dir, path string, data []byte) (err error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	// We care about write errors on close
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	_, err = f.Write(data)
	return err
}
