package a2a

import (
	"encoding/json"
	"fmt"
)

// PartType identifies the kind of content carried by a message or artifact
// Part. This is used both to tag outgoing JSON and to discriminate incoming
// JSON back into a concrete Go type.
type PartType string

const (
	PartTypeText PartType = "text" // Text content (plain text, markdown, etc.)
	PartTypeFile PartType = "file" // File content (binary data or a URI reference)
	PartTypeData PartType = "data" // Structured data (arbitrary JSON)
)

// Part represents a single piece of a Message or Artifact. It is implemented
// by TextPart, FilePart and DataPart; the marker method keeps the set of
// implementers closed to this package's intent without needing a sealed
// interface.
type Part interface {
	isPart()
}

// TextPart carries plain text content.
type TextPart struct {
	Kind     PartType       `json:"kind"`
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

func (TextPart) isPart() {}

// FilePart carries file content, either inline (base64) or by reference.
type FilePart struct {
	Kind     PartType       `json:"kind"`
	File     FileContent    `json:"file"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

func (FilePart) isPart() {}

// DataPart carries structured, schema-less data.
type DataPart struct {
	Kind     PartType       `json:"kind"`
	Data     map[string]any `json:"data"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

func (DataPart) isPart() {}

// FileContent describes a file, inline or by reference. Exactly one of
// Bytes or URI is expected to be set by well-behaved callers; this package
// does not enforce that invariant itself.
type FileContent struct {
	Name     string `json:"name,omitempty"`
	MimeType string `json:"mimeType,omitempty"`
	Bytes    string `json:"bytes,omitempty"` // base64 encoded content
	URI      string `json:"uri,omitempty"`
}

// unmarshalPart inspects the "kind" discriminator (falling back to the
// legacy "type" key some producers still send) and decodes the raw part
// into the matching concrete type.
func unmarshalPart(raw []byte) (Part, error) {
	var probe map[string]any
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, err
	}

	kindVal, ok := probe["kind"]
	if !ok {
		kindVal, ok = probe["type"]
	}
	if !ok {
		return nil, fmt.Errorf("a2a: part missing required %q field", "kind")
	}
	kindStr, ok := kindVal.(string)
	if !ok {
		return nil, fmt.Errorf("a2a: part %q field must be a string", "kind")
	}

	switch PartType(kindStr) {
	case PartTypeText:
		var p TextPart
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return p, nil
	case PartTypeFile:
		var p FilePart
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return p, nil
	case PartTypeData:
		var p DataPart
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("a2a: unknown part kind %q", kindStr)
	}
}

// marshalPart resolves the concrete type and fills in the Kind
// discriminator when a caller built a part literal without setting it.
func marshalPart(p Part) ([]byte, error) {
	switch v := p.(type) {
	case TextPart:
		if v.Kind == "" {
			v.Kind = PartTypeText
		}
		return json.Marshal(v)
	case FilePart:
		if v.Kind == "" {
			v.Kind = PartTypeFile
		}
		return json.Marshal(v)
	case DataPart:
		if v.Kind == "" {
			v.Kind = PartTypeData
		}
		return json.Marshal(v)
	default:
		return nil, fmt.Errorf("a2a: unknown part type %T", p)
	}
}
