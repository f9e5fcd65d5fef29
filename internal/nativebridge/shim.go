package nativebridge

import (
	"encoding/json"
	"fmt"
)

// LoaderShim is the small module emitted in place of a native binary. It
// imports the binary's absolute path as an opaque file dependency, loads it
// once at run time, and exports the loaded binding only when the load
// succeeded.
type LoaderShim struct {
	BinaryPath string
}

const shimTemplate = `const path = require(%s);

function load() {
  try {
    return { ok: true, value: require(path) };
  } catch (error) {
    return { ok: false, error: error };
  }
}

const result = load();
if (result.ok) {
  module.exports = result.value;
}
`

// Contents renders the shim source. The path is emitted as a JSON string,
// which is a valid JavaScript string literal for any input.
func (s LoaderShim) Contents() string {
	quoted, err := json.Marshal(s.BinaryPath)
	if err != nil {
		// json.Marshal cannot fail for a string.
		panic(err)
	}
	return fmt.Sprintf(shimTemplate, quoted)
}
