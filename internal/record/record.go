// Package record implements the line-delimited record format written to
// spool files.
//
// A record is a type header, any number of key=value lines and an end
// marker, followed by an empty line:
//
//	hoststatus:
//	host_name=web01
//	output=PING OK\n3 packets
//	999
//
// Values escape backslash, newline, tab, carriage return and NUL. A space at
// either end of a value is written as \s so that it survives the line
// trimming done by the decoder.
package record

import (
	"strings"

	"gopkg.in/yaml.v3"

	idoerr "github.com/msto63/idoutils/foundation/core/error"
	idoerrors "github.com/msto63/idoutils/foundation/core/errors"
	"github.com/msto63/idoutils/foundation/utils/stringx"
)

// EndMarker terminates the field list of a record.
const EndMarker = "999"

// Field is one key=value pair of a record.
type Field struct {
	Key   string
	Value string
}

// Record is a decoded record. Fields keep their input order.
type Record struct {
	Type   string
	Fields []Field
}

// Get returns the value of the first field named key.
func (r Record) Get(key string) (string, bool) {
	for _, f := range r.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

// MarshalYAML renders the record as a mapping with the type under "type"
// and the fields in their original order under "fields".
func (r Record) MarshalYAML() (interface{}, error) {
	fields := &yaml.Node{Kind: yaml.MappingNode}
	for _, f := range r.Fields {
		fields.Content = append(fields.Content, strNode(f.Key), strNode(f.Value))
	}

	return &yaml.Node{
		Kind: yaml.MappingNode,
		Content: []*yaml.Node{
			strNode("type"), strNode(r.Type),
			strNode("fields"), fields,
		},
	}, nil
}

// strNode keeps values such as "1" or "true" strings in the output.
func strNode(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}

// IsFormatError reports whether err was caused by malformed records or
// encoder misuse.
func IsFormatError(err error) bool {
	return idoerr.HasCode(err, idoerr.CodeFormatError)
}

func validateType(recordType string) string {
	switch {
	case stringx.IsBlank(recordType):
		return "record type is empty"
	case recordType == EndMarker:
		return "record type collides with the end marker"
	case stringx.StripString(recordType) != recordType:
		return "record type has surrounding whitespace"
	case strings.ContainsAny(recordType, ":=\n\r\x00"):
		return "record type contains a reserved character"
	}
	return ""
}

func validateKey(key string) string {
	switch {
	case stringx.IsBlank(key):
		return "field key is empty"
	case stringx.StripString(key) != key:
		return "field key has surrounding whitespace"
	case strings.ContainsAny(key, "=\n\r\t\x00"):
		return "field key contains a reserved character"
	}
	return ""
}

func formatError(line int, input, reason string) *idoerr.Error {
	return idoerrors.RecordFormatError(line, stringx.Truncate(input, 80, "..."), reason)
}
