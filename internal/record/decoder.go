package record

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strings"

	"github.com/msto63/idoutils/foundation/utils/stringx"
)

// DefaultMaxLineLength bounds a single input line, newline excluded.
const DefaultMaxLineLength = 64 * 1024

// DecoderOptions configures a Decoder.
type DecoderOptions struct {
	MaxLineLength int
}

// Decoder reads records from a stream. Each line is copied into a fixed
// line buffer and trimmed before it is parsed, so indentation and CRLF
// line endings are accepted.
type Decoder struct {
	r      *bufio.Reader
	line   []byte
	maxRaw int
	lineNo int
}

// NewDecoder returns a decoder reading from r.
func NewDecoder(r io.Reader, options ...DecoderOptions) *Decoder {
	maxLen := DefaultMaxLineLength
	if len(options) > 0 && options[0].MaxLineLength > 0 {
		maxLen = options[0].MaxLineLength
	}

	// Room for the newline and a possible carriage return. bufio enforces
	// a minimum size, so the line buffer follows the reader.
	br := bufio.NewReaderSize(r, maxLen+2)
	return &Decoder{
		r:      br,
		line:   make([]byte, br.Size()),
		maxRaw: maxLen + 2,
	}
}

// Line returns the number of the last line read.
func (d *Decoder) Line() int {
	return d.lineNo
}

// Decode returns the next record, or io.EOF when the input ends between
// records.
func (d *Decoder) Decode() (Record, error) {
	var rec Record

	// Header
	for {
		line, err := d.next()
		if err == io.EOF {
			return Record{}, io.EOF
		}
		if err != nil {
			return Record{}, err
		}
		if len(line) == 0 {
			continue
		}

		if line[len(line)-1] != ':' {
			return Record{}, formatError(d.lineNo, string(line), "expected record header")
		}
		rec.Type = string(line[:len(line)-1])
		if reason := validateType(rec.Type); reason != "" {
			return Record{}, formatError(d.lineNo, string(line), reason)
		}
		break
	}

	// Fields up to the end marker
	for {
		line, err := d.next()
		if err == io.EOF {
			return Record{}, formatError(d.lineNo, "", "unexpected end of input inside record "+rec.Type)
		}
		if err != nil {
			return Record{}, err
		}
		if len(line) == 0 {
			continue
		}
		if string(line) == EndMarker {
			return rec, nil
		}

		eq := bytes.IndexByte(line, '=')
		if eq < 0 {
			return Record{}, formatError(d.lineNo, string(line), "expected key=value")
		}
		key := string(line[:eq])
		if reason := validateKey(key); reason != "" {
			return Record{}, formatError(d.lineNo, string(line), reason)
		}
		value, ok := unescape(line[eq+1:])
		if !ok {
			return Record{}, formatError(d.lineNo, string(line), "invalid escape sequence")
		}
		rec.Fields = append(rec.Fields, Field{Key: key, Value: value})
	}
}

// DecodeAll reads records until the input ends and calls fn for each one.
// It stops at the first error from the input or from fn.
func (d *Decoder) DecodeAll(fn func(Record) error) (int, error) {
	count := 0
	for {
		rec, err := d.Decode()
		if err == io.EOF {
			return count, nil
		}
		if err != nil {
			return count, err
		}
		if err := fn(rec); err != nil {
			return count, err
		}
		count++
	}
}

// next reads one line into the line buffer and returns it trimmed.
func (d *Decoder) next() ([]byte, error) {
	raw, err := d.r.ReadSlice('\n')
	if errors.Is(err, bufio.ErrBufferFull) || len(raw) > d.maxRaw {
		d.lineNo++
		return nil, formatError(d.lineNo, string(raw), "line too long")
	}
	if err != nil && err != io.EOF {
		return nil, err
	}
	if len(raw) == 0 && err == io.EOF {
		return nil, io.EOF
	}
	d.lineNo++
	if bytes.IndexByte(raw, 0) >= 0 {
		return nil, formatError(d.lineNo, string(raw), "unescaped NUL byte")
	}

	n := copy(d.line, raw)
	line, _ := stringx.Strip(d.line[:n])
	return line, nil
}

func unescape(raw []byte) (string, bool) {
	if bytes.IndexByte(raw, '\\') < 0 {
		return string(raw), true
	}

	var sb strings.Builder
	sb.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c != '\\' {
			sb.WriteByte(c)
			continue
		}
		i++
		if i == len(raw) {
			return "", false
		}
		switch raw[i] {
		case '\\':
			sb.WriteByte('\\')
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		case 's':
			sb.WriteByte(' ')
		case '0':
			sb.WriteByte(0)
		default:
			return "", false
		}
	}
	return sb.String(), true
}
