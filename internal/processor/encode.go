package processor

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/paulmach/orb/geojson"
	"github.com/tdewolff/minify/v2"
	mjson "github.com/tdewolff/minify/v2/json"
	"github.com/tidwall/sjson"
)

const jsonMediaType = "application/json"

var minifier = newMinifier()

func newMinifier() *minify.M {
	m := minify.New()
	m.AddFunc(jsonMediaType, mjson.Minify)
	return m
}

// encodeGeoJSON renders fc with two-space indentation, or minified when
// compact is set. Output always ends with a newline and is stable for
// identical input.
func encodeGeoJSON(fc *geojson.FeatureCollection, compact bool) ([]byte, error) {
	data, err := json.Marshal(fc)
	if err != nil {
		return nil, err
	}

	// orb writes empty properties as null, consumers expect an object
	for i, f := range fc.Features {
		if len(f.Properties) > 0 {
			continue
		}
		data, err = sjson.SetRawBytes(data, "features."+strconv.Itoa(i)+".properties", []byte("{}"))
		if err != nil {
			return nil, err
		}
	}

	if compact {
		data, err = minifier.Bytes(jsonMediaType, data)
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')

	return buf.Bytes(), nil
}
