package catalog

import (
	"encoding/json"
	"io"
)

// maxResponseBodyBytes bounds how much of a non-streaming response this
// client will buffer into memory; the catalog's JSON/HTML endpoints are
// small, so this is generous headroom rather than a tight budget.
const maxResponseBodyBytes = 8 * 1024 * 1024

func decodeJSON(body io.Reader, dest any) error {
	return json.NewDecoder(io.LimitReader(body, maxResponseBodyBytes)).Decode(dest)
}

func readAllLimited(body io.Reader) ([]byte, error) {
	return io.ReadAll(io.LimitReader(body, maxResponseBodyBytes))
}
