// Package uerr holds the error taxonomy shared by every uasset package.
//
// Each failure is tagged with a Kind so that batch tools can tell a broken
// file (format) from a broken object (schema) or a dangling pointer
// (reference). Errors coming from a byte-range provider are left untagged
// and reported as KindIO.
package uerr

import (
	"fmt"

	"github.com/pkg/errors"
)

type (
	Kind  string
	Error struct {
		Kind   Kind
		Caller string
		Err    error
	}
)

const (
	KindFormat    = Kind("format")
	KindSchema    = Kind("schema")
	KindReference = Kind("reference")
	KindIO        = Kind("io")
)

var (
	ErrNoMatchingFormat       = errors.New("no matching format")
	ErrInvalidStructure       = errors.New("invalid structure")
	ErrUnexpectedEOF          = errors.New("unexpected end of data")
	ErrSchemaNotFound         = errors.New("schema not found")
	ErrWrongShape             = errors.New("wrong shape")
	ErrUnsupportedPrimitive   = errors.New("unsupported primitive")
	ErrExternalFileNotFound   = errors.New("external file not found")
	ErrFileIDOutOfRange       = errors.New("file id out of range")
	ErrPathIDNotFound         = errors.New("path id not found")
	ErrSerializedFileNotFound = errors.New("serialized file not found")
)

func (r Error) Error() string {
	return fmt.Sprintf("%s: %s error: %v", r.Caller, r.Kind, r.Err)
}

func (r Error) Unwrap() error {
	return r.Err
}

func New(kind Kind, caller string, err error) error {
	return Error{
		Kind:   kind,
		Caller: caller,
		Err:    err,
	}
}

func Format(caller string, err error) error {
	return New(KindFormat, caller, err)
}

func Formatf(caller string, sentinel error, format string, args ...any) error {
	return New(KindFormat, caller, errors.Wrapf(sentinel, format, args...))
}

func Schema(caller string, err error) error {
	return New(KindSchema, caller, err)
}

func Schemaf(caller string, sentinel error, format string, args ...any) error {
	return New(KindSchema, caller, errors.Wrapf(sentinel, format, args...))
}

func Reference(caller string, err error) error {
	return New(KindReference, caller, err)
}

func Referencef(caller string, sentinel error, format string, args ...any) error {
	return New(KindReference, caller, errors.Wrapf(sentinel, format, args...))
}

// KindOf reports the outermost tagged kind of err. Every failure raised by
// the uasset packages is tagged, so untagged errors are the provider's and
// are reported as KindIO; nil reports "".
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var tagged Error
	if errors.As(err, &tagged) {
		return tagged.Kind
	}
	return KindIO
}

// IsRecoverable tells whether a batch over many objects may continue after err.
func IsRecoverable(err error) bool {
	switch KindOf(err) {
	case KindSchema, KindReference:
		return true
	default:
		return false
	}
}
