package ds

import (
	"encoding/json"
)

// DumpJSON is meant for log lines, where a failed marshalling should show
// up in the message instead of hiding the original problem.
func DumpJSON[T any](t T) string {
	bs, err := json.Marshal(t)
	if err != nil {
		return "<DumpJSON error: " + err.Error() + ">"
	}
	return string(bs)
}
