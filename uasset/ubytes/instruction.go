package ubytes

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// SkipKey marks an instruction whose value is read and dropped, such as
// padding between header fields.
const SkipKey = "-"

// ExecuteInstructions runs the read functions in order and fills a T from
// the values by key, going through JSON so that T only needs json tags.
func ExecuteInstructions[T any](instructions []Instruction) (*T, error) {
	values := make(map[string]any, len(instructions))
	for _, instruction := range instructions {
		value, err := instruction.ReadFunction()
		if err != nil {
			return nil, errors.Wrapf(err, `ExecuteInstructions error reading "%s"`, instruction.Key)
		}
		if instruction.Key != SkipKey {
			values[instruction.Key] = value
		}
	}
	return remarshal[T](values)
}

func remarshal[T any](values map[string]any) (*T, error) {
	t := new(T)
	bs, err := json.Marshal(values)
	if err == nil {
		err = json.Unmarshal(bs, t)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "ExecuteInstructions error filling %T from %v", *t, values)
	}
	return t, nil
}

func CreateNBytesReadFunction(reader *Reader, n int) ReadFunction {
	return func() (any, error) {
		return reader.ReadBytes(n)
	}
}

func CreateUint8ReadFunction(reader *Reader) ReadFunction {
	return func() (any, error) {
		return reader.ReadUint8()
	}
}

func CreateUint32ReadFunction(reader *Reader) ReadFunction {
	return func() (any, error) {
		return reader.ReadUint32()
	}
}

func CreateUint64ReadFunction(reader *Reader) ReadFunction {
	return func() (any, error) {
		return reader.ReadUint64()
	}
}
