package report

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/michaelscutari/pathnorm/internal/pathutil"
)

// Format selects how records are written.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	}
	return "", fmt.Errorf("unknown format %q (want text, json or yaml)", s)
}

// PathRecord describes the normalization of one input.
type PathRecord struct {
	Input      string `json:"input" yaml:"input"`
	Base       string `json:"base,omitempty" yaml:"base,omitempty"`
	Output     string `json:"output" yaml:"output"`
	Root       string `json:"root" yaml:"root"`
	RootLength int    `json:"root_length" yaml:"root_length"`
	Normalized bool   `json:"already_normalized" yaml:"already_normalized"`
}

// NewPathRecord normalizes input, against base when base is non-empty.
func NewPathRecord(input, base string) PathRecord {
	rec := PathRecord{Input: input, Base: base}
	if base != "" {
		rec.Output = pathutil.NormalizeAbsolute(input, base)
	} else {
		rec.Output = pathutil.Normalize(input)
	}
	root := pathutil.ClassifyRoot(pathutil.NormalizeSlashes(input))
	rec.Root = root.Kind.String()
	rec.RootLength = root.Len
	rec.Normalized = pathutil.IsNormalized(input)
	return rec
}

// RootRecord describes the root classification of one input.
type RootRecord struct {
	Input  string `json:"input" yaml:"input"`
	Kind   string `json:"kind" yaml:"kind"`
	Length int    `json:"length" yaml:"length"`
	Prefix string `json:"prefix" yaml:"prefix"`
}

// NewRootRecord classifies the root of input.
func NewRootRecord(input string) RootRecord {
	canonical := pathutil.NormalizeSlashes(input)
	root := pathutil.ClassifyRoot(canonical)
	return RootRecord{
		Input:  input,
		Kind:   root.Kind.String(),
		Length: root.Len,
		Prefix: canonical[:root.Len],
	}
}

// WritePaths writes records in the given format. Text output is one
// normalized path per line.
func WritePaths(w io.Writer, format Format, records []PathRecord) error {
	if format == FormatText {
		for _, r := range records {
			if _, err := fmt.Fprintln(w, r.Output); err != nil {
				return err
			}
		}
		return nil
	}
	return encode(w, format, records)
}

// WriteRoots writes root records in the given format.
func WriteRoots(w io.Writer, format Format, records []RootRecord) error {
	if format == FormatText {
		t := NewTable("KIND", "LEN", "PREFIX", "INPUT").AlignRight(1)
		for _, r := range records {
			t.AddRow(r.Kind, fmt.Sprint(r.Length), r.Prefix, r.Input)
		}
		_, err := t.WriteTo(w)
		return err
	}
	return encode(w, format, records)
}

func encode(w io.Writer, format Format, v any) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown format %q", format)
}
