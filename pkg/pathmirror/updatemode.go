package pathmirror

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/paulschiretz/pgl-mirror/pkg/util"
)

// UpdateMode defines how to handle a file that already exists in the destination.
type UpdateMode int

const (
	// UpdateSkip leaves existing destination files untouched.
	UpdateSkip UpdateMode = iota
	// UpdateOverwrite always replaces existing destination files.
	UpdateOverwrite
	// UpdateIfNewer replaces a destination file only when the source file has
	// a strictly newer modification time.
	UpdateIfNewer
	// UpdatePrompt asks the caller's confirmation callback per existing file.
	// It is only valid under the sequential strategy.
	UpdatePrompt
)

var updateModeToString = map[UpdateMode]string{
	UpdateSkip:      "skip",
	UpdateOverwrite: "overwrite",
	UpdateIfNewer:   "if-newer",
	UpdatePrompt:    "prompt",
}

var stringToUpdateMode map[string]UpdateMode

func init() {
	stringToUpdateMode = util.InvertMap(updateModeToString)
}

// String returns the string representation of an UpdateMode.
func (m UpdateMode) String() string {
	if str, ok := updateModeToString[m]; ok {
		return str
	}
	return fmt.Sprintf("unknown_update_mode(%d)", m)
}

// ParseUpdateMode parses a string and returns the corresponding UpdateMode.
func ParseUpdateMode(s string) (UpdateMode, error) {
	if mode, ok := stringToUpdateMode[strings.ToLower(s)]; ok {
		return mode, nil
	}
	return 0, fmt.Errorf("invalid update mode: %q. Must be 'skip', 'overwrite', 'if-newer' or 'prompt'", s)
}

// MarshalJSON implements the json.Marshaler interface for UpdateMode.
func (m UpdateMode) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for UpdateMode.
func (m *UpdateMode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("UpdateMode should be a string, got %s", data)
	}
	mode, err := ParseUpdateMode(s)
	if err != nil {
		return err
	}
	*m = mode
	return nil
}
