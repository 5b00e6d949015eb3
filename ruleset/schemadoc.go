package ruleset

import (
	"bytes"
	"encoding/json"
	"io"
)

// mapToReader marshals a decoded YAML/JSON map back to canonical JSON bytes
// so it can be handed to the jsonschema compiler, which only accepts
// io.Reader resources.
func mapToReader(doc map[string]any) io.Reader {
	data, err := json.Marshal(doc)
	if err != nil {
		// doc was decoded from JSON/YAML already, so re-marshaling cannot
		// fail; if it somehow does, feed the compiler nothing and let it
		// report the resulting schema error.
		return bytes.NewReader(nil)
	}
	return bytes.NewReader(data)
}
