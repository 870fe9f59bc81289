package utree

import (
	_ "embed"
	"strings"

	"github.com/samber/lo"
)

//go:embed commonstrings.txt
var commonStrings string

// CommonStringByOffset maps the byte offset of every entry of the engine's
// shared string table to the entry. Offsets count each entry plus its
// terminating zero byte.
var CommonStringByOffset map[uint32]string

func init() {
	lines := lo.Filter(
		strings.Split(commonStrings, "\n"),
		func(line string, _ int) bool {
			return len(line) > 0
		},
	)
	offsets := lo.Reduce(
		lines,
		func(offsets []uint32, line string, i int) []uint32 {
			if i == 0 {
				return append(offsets, 0)
			}
			return append(offsets, offsets[i-1]+uint32(len(lines[i-1]))+1)
		},
		make([]uint32, 0, len(lines)),
	)
	CommonStringByOffset = lo.SliceToMap[lo.Tuple2[uint32, string], uint32, string](
		lo.Zip2(offsets, lines),
		func(t lo.Tuple2[uint32, string]) (uint32, string) {
			return t.A, t.B
		},
	)
}
