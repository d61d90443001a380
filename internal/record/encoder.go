package record

import (
	"io"

	idoerr "github.com/msto63/idoutils/foundation/core/error"
	idoerrors "github.com/msto63/idoutils/foundation/core/errors"
	"github.com/msto63/idoutils/foundation/utils/dbuf"
)

// Encoder assembles records in a growable buffer. It is not safe for
// concurrent use.
type Encoder struct {
	buf     *dbuf.Buffer
	open    bool
	records int
}

// NewEncoder returns an encoder whose buffer grows in steps of chunkSize.
func NewEncoder(chunkSize int, options ...dbuf.Options) (*Encoder, error) {
	buf, err := dbuf.New(chunkSize, options...)
	if err != nil {
		return nil, err
	}
	return &Encoder{buf: buf}, nil
}

// Begin starts a record of the given type.
func (e *Encoder) Begin(recordType string) error {
	if e.open {
		return encodeError("begin", recordType, "previous record not ended")
	}
	if reason := validateType(recordType); reason != "" {
		return encodeError("begin", recordType, reason)
	}

	if err := e.append(recordType, ":\n"); err != nil {
		return err
	}
	e.open = true
	return nil
}

// Field appends key=value to the open record.
func (e *Encoder) Field(key, value string) error {
	if !e.open {
		return encodeError("field", key, "no open record")
	}
	if reason := validateKey(key); reason != "" {
		return encodeError("field", key, reason)
	}

	if err := e.append(key, "="); err != nil {
		return err
	}
	if err := appendEscaped(e.buf, value); err != nil {
		return err
	}
	return e.buf.Append("\n")
}

// End closes the open record.
func (e *Encoder) End() error {
	if !e.open {
		return encodeError("end", "", "no open record")
	}
	if err := e.buf.Append(EndMarker + "\n\n"); err != nil {
		return err
	}
	e.open = false
	e.records++
	return nil
}

// Encode writes a whole record. Type and keys are checked before anything
// is written, so a rejected record leaves the buffer untouched. After an
// allocation failure the buffer holds a partial record and must be Reset.
func (e *Encoder) Encode(r Record) error {
	if e.open {
		return encodeError("encode", r.Type, "previous record not ended")
	}
	if reason := validateType(r.Type); reason != "" {
		return encodeError("encode", r.Type, reason)
	}
	for _, f := range r.Fields {
		if reason := validateKey(f.Key); reason != "" {
			return encodeError("encode", f.Key, reason)
		}
	}

	if err := e.Begin(r.Type); err != nil {
		return err
	}
	for _, f := range r.Fields {
		if err := e.Field(f.Key, f.Value); err != nil {
			return err
		}
	}
	return e.End()
}

func (e *Encoder) append(parts ...string) error {
	for _, p := range parts {
		if err := e.buf.Append(p); err != nil {
			return err
		}
	}
	return nil
}

// Bytes returns the encoded records. The slice aliases the encoder buffer.
func (e *Encoder) Bytes() []byte {
	return e.buf.Bytes()
}

// Len returns the number of buffered bytes.
func (e *Encoder) Len() int {
	return e.buf.Len()
}

// Records returns the number of records completed since the last reset.
func (e *Encoder) Records() int {
	return e.records
}

// WriteTo writes the buffered records to w and empties the buffer. It
// fails while a record is still open.
func (e *Encoder) WriteTo(w io.Writer) (int64, error) {
	if e.open {
		return 0, encodeError("write", "", "record still open")
	}

	n, err := w.Write(e.buf.Bytes())
	if err != nil {
		return int64(n), err
	}
	e.Reset()
	return int64(n), nil
}

// Reset empties the buffer but keeps its storage.
func (e *Encoder) Reset() {
	e.buf.Reset()
	e.open = false
	e.records = 0
}

// Release frees the buffer storage.
func (e *Encoder) Release() error {
	e.open = false
	e.records = 0
	return e.buf.Release()
}

func encodeError(op, input, reason string) *idoerr.Error {
	return idoerrors.NewErrorBuilder(idoerrors.ModuleRecord).
		Operation(op).
		Messagef("record.%s: %s", op, reason).
		Code(idoerr.CodeFormatError).
		Detail("input", input).
		Build()
}

// appendEscaped writes value with escapes, copying unescaped runs in one
// append each.
func appendEscaped(buf *dbuf.Buffer, value string) error {
	last := len(value) - 1
	start := 0
	for i := 0; i < len(value); i++ {
		var esc string
		switch c := value[i]; {
		case c == '\\':
			esc = `\\`
		case c == '\n':
			esc = `\n`
		case c == '\t':
			esc = `\t`
		case c == '\r':
			esc = `\r`
		case c == 0:
			esc = `\0`
		case c == ' ' && (i == 0 || i == last):
			esc = `\s`
		default:
			continue
		}

		if start < i {
			if err := buf.Append(value[start:i]); err != nil {
				return err
			}
		}
		if err := buf.Append(esc); err != nil {
			return err
		}
		start = i + 1
	}

	if start < len(value) {
		return buf.Append(value[start:])
	}
	return nil
}
