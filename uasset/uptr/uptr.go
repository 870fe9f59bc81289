// Package uptr holds the cross-object pointer stored inside decoded objects.
package uptr

import (
	"fmt"
)

// PPtr points to an object by (file id, path id). File id 0 is the file the
// pointer was read from; n > 0 is the n-th entry of that file's external
// table. Path id 0 is the null pointer.
type PPtr struct {
	FileID int64 `json:"m_FileID"`
	PathID int64 `json:"m_PathID"`
}

func (p PPtr) IsNull() bool {
	return p.PathID == 0
}

func (p PPtr) IsLocal() bool {
	return p.FileID == 0
}

func (p PPtr) String() string {
	return fmt.Sprintf("PPtr(%d, %d)", p.FileID, p.PathID)
}
