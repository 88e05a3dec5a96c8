package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// ReadTestdata returns the contents of testdata/<name>, failing tb when the
// file cannot be read.
func ReadTestdata(tb testing.TB, name string) []byte {
	tb.Helper()
	raw, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		tb.Fatalf("read testdata %s: %v", name, err)
	}
	return raw
}

// DecodeGolden unmarshals the JSON golden file testdata/<name> into v.
func DecodeGolden(tb testing.TB, name string, v any) {
	tb.Helper()
	if err := json.Unmarshal(ReadTestdata(tb, name), v); err != nil {
		tb.Fatalf("decode golden %s: %v", name, err)
	}
}
