package datacache

import (
	"encoding/json"
	"fmt"

	"github.com/vango-dev/outlet/pkg/loader"
)

// formatVersion is bumped when the encoded layout changes. Entries written
// with another version are treated as missing.
const formatVersion = 1

type envelope struct {
	Version  int              `json:"v"`
	Snapshot *loader.Snapshot `json:"snapshot"`
}

// Encode serializes a snapshot. Loader data must be JSON-encodable; after a
// round trip it comes back as generic JSON values (maps, slices, float64).
func Encode(snap *loader.Snapshot) ([]byte, error) {
	if snap == nil {
		return nil, fmt.Errorf("datacache: nil snapshot")
	}
	data, err := json.Marshal(envelope{Version: formatVersion, Snapshot: snap})
	if err != nil {
		return nil, fmt.Errorf("datacache: encode snapshot: %w", err)
	}
	return data, nil
}

// Decode parses data produced by Encode. A version mismatch returns
// (nil, nil).
func Decode(data []byte) (*loader.Snapshot, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("datacache: decode snapshot: %w", err)
	}
	if env.Version != formatVersion || env.Snapshot == nil {
		return nil, nil
	}
	if env.Snapshot.Entries == nil {
		env.Snapshot.Entries = map[string]loader.Entry{}
	}
	return env.Snapshot, nil
}
