package pathmirror

import (
	"fmt"
	"time"
)

// Action is the outcome of the update policy for a single file.
type Action int

const (
	// ActionCopy copies a file that does not exist in the destination.
	ActionCopy Action = iota
	// ActionSkip leaves the existing destination file untouched.
	ActionSkip
	// ActionOverwrite replaces the existing destination file.
	ActionOverwrite
	// ActionPrompt signals that the caller must obtain interactive
	// confirmation and map the answer to ActionOverwrite or ActionSkip.
	ActionPrompt
)

var actionToString = map[Action]string{
	ActionCopy:      "copy",
	ActionSkip:      "skip",
	ActionOverwrite: "overwrite",
	ActionPrompt:    "prompt",
}

// String returns the string representation of an Action.
func (a Action) String() string {
	if str, ok := actionToString[a]; ok {
		return str
	}
	return fmt.Sprintf("unknown_action(%d)", a)
}

// Decide is the single update-policy decision point shared by every
// execution strategy. Keeping it pure is what guarantees that sequential and
// worker-pool runs behave identically for the same tree.
//
// A file that does not exist in the destination is always copied, regardless
// of mode. For existing files, if-newer uses a strict comparison: equal
// timestamps are treated as up to date and skipped.
func Decide(destExists bool, mode UpdateMode, srcMod, dstMod time.Time) Action {
	if !destExists {
		return ActionCopy
	}
	switch mode {
	case UpdateOverwrite:
		return ActionOverwrite
	case UpdateIfNewer:
		if srcMod.After(dstMod) {
			return ActionOverwrite
		}
		return ActionSkip
	case UpdatePrompt:
		return ActionPrompt
	default: // UpdateSkip
		return ActionSkip
	}
}
