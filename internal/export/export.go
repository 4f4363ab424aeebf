// Package export serializes inference results for download, the clipboard
// and the terminal.
package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mpilhlt/kogito-playground/internal/models"

	"github.com/atotto/clipboard"
)

// FileName is the name under which results are offered for download.
const FileName = "kogito-results.json"

// ContentType is the media type of exported result files.
const ContentType = "text/json;charset=utf-8"

// CopyConfirmation is how long a copy confirmation stays visible.
const CopyConfirmation = 3 // seconds

var ErrNoResults = errors.New("no results to export")

// clipboardWriteAll is a package-level variable to allow mocking in tests.
var clipboardWriteAll = clipboard.WriteAll

// MarshalResults renders records as JSON indented by four spaces. Characters
// such as & and < are written literally.
func MarshalResults(records models.InferenceRecords) ([]byte, error) {
	if len(records) == 0 {
		return nil, ErrNoResults
	}
	return encodeIndented(records.Normalize())
}

// MarshalRaw renders records like MarshalResults but accepts an empty list,
// which is rendered as [].
func MarshalRaw(records models.InferenceRecords) ([]byte, error) {
	return encodeIndented(records.Normalize())
}

func encodeIndented(records models.InferenceRecords) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(records); err != nil {
		return nil, fmt.Errorf("failed to marshal results: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// ContentDisposition returns the header value that makes browsers save the
// export under FileName.
func ContentDisposition() string {
	return fmt.Sprintf("attachment; filename=%q", FileName)
}

// SaveFile writes records to FileName inside dir and returns the file path.
func SaveFile(dir string, records models.InferenceRecords) (string, error) {
	data, err := MarshalResults(records)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// CopyToClipboard puts the JSON rendition of records on the system clipboard.
func CopyToClipboard(records models.InferenceRecords) error {
	data, err := MarshalResults(records)
	if err != nil {
		return err
	}
	if err := clipboardWriteAll(string(data)); err != nil {
		return fmt.Errorf("failed to copy results to clipboard: %w", err)
	}
	return nil
}
