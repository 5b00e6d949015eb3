package adapter

import "testing"

// These exercise H5Dir's pure path-projection and decode-override logic
// without opening a real HDF5 file, since constructing one requires the
// cgo-backed gonum.org/v1/hdf5 library to be present and linkable.

func TestH5DirDecodeJSONStringNotTreatedAsObject(t *testing.T) {
	h := &H5Dir{}
	v, ok := h.DecodeJSON([]byte(`"just a string"`), "attr")
	if !ok {
		t.Fatal("expected a successful decode")
	}
	if _, isString := v.(string); !isString {
		t.Fatalf("expected a string, got %T", v)
	}
}

func TestH5DirDecodeJSONObjectWithoutJSONSuffixBecomesRawString(t *testing.T) {
	h := &H5Dir{}
	raw := []byte(`{"a": 1}`)
	v, ok := h.DecodeJSON(raw, "plain_name")
	if !ok {
		t.Fatal("expected a successful decode")
	}
	s, isString := v.(string)
	if !isString || s != string(raw) {
		t.Fatalf("expected the raw object string preserved, got %v (%T)", v, v)
	}
}

func TestH5DirDecodeJSONObjectWithJSONSuffixDecodesStructurally(t *testing.T) {
	h := &H5Dir{}
	v, ok := h.DecodeJSON([]byte(`{"a": 1}`), "meta.json")
	if !ok {
		t.Fatal("expected a successful decode")
	}
	m, isMap := v.(map[string]any)
	if !isMap || m["a"] != float64(1) {
		t.Fatalf("expected a decoded object, got %v (%T)", v, v)
	}
}

func TestH5DirIsDirIsFileOnStructLiteral(t *testing.T) {
	h := &H5Dir{groups: map[string]bool{"": true, "g": true}, datasets: map[string]bool{"g/d": true}, attributes: map[string]h5Attr{"g@a": {}}}
	if !h.IsDir("") || !h.IsDir("g") {
		t.Fatal("expected group paths to report as directories")
	}
	if !h.IsFile("g/d") {
		t.Fatal("expected the dataset path to report as a file")
	}
	if !h.IsFile("g@a") {
		t.Fatal("expected the attribute path to report as a file")
	}
	if h.IsFile("g") || h.IsDir("g/d") {
		t.Fatal("group/dataset classification must not overlap")
	}
}
