package traces

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fxamacker/cbor/v2"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatCBOR Format = "cbor"
)

var cborEncMode = func() cbor.EncMode {
	opts := cbor.CanonicalEncOptions()
	opts.Time = cbor.TimeRFC3339Nano
	em, err := opts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("traces: cbor enc mode: %v", err))
	}
	return em
}()

// FormatOf returns configured when set, otherwise the format implied by the
// file extension.
func FormatOf(path string, configured string) Format {
	if configured != "" {
		return Format(configured)
	}
	if strings.EqualFold(filepath.Ext(path), ".cbor") {
		return FormatCBOR
	}
	return FormatJSON
}

func Marshal(format Format, rec *Record) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(rec, "", "  ")
	case FormatCBOR:
		return cborEncMode.Marshal(rec)
	}
	return nil, fmt.Errorf("unknown trace format: %s", format)
}

func Unmarshal(format Format, data []byte) (*Record, error) {
	var rec Record
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("traces: unmarshal json: %w", err)
		}
	case FormatCBOR:
		if err := cbor.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("traces: unmarshal cbor: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown trace format: %s", format)
	}
	return &rec, nil
}

// Write stores rec at path. The file is replaced atomically.
func Write(path string, format Format, rec *Record) error {
	data, err := Marshal(format, rec)
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func Read(path string, format Format) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Unmarshal(format, data)
}
