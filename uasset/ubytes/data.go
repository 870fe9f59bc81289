package ubytes

import (
	"bytes"
	"encoding/binary"
)

type (
	Reader struct {
		bytes.Reader
		Order binary.ByteOrder
	}
	Writer struct {
		buf   bytes.Buffer
		Order binary.ByteOrder
	}
	Instruction struct {
		Key          string
		ReadFunction ReadFunction
	}
	ReadFunction func() (any, error)
)
