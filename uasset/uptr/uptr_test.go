package uptr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPPtr(t *testing.T) {
	assert.True(t, PPtr{FileID: 3, PathID: 0}.IsNull())
	assert.False(t, PPtr{FileID: 0, PathID: -7}.IsNull())
	assert.True(t, PPtr{PathID: 1}.IsLocal())
	assert.Equal(t, "PPtr(1, 1000)", PPtr{FileID: 1, PathID: 1000}.String())
}
