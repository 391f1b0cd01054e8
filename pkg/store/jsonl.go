// Package store persists datasets as JSON Lines, one record per line.
package store

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// maxLineSize bounds a single record when reading.
const maxLineSize = 4 * 1024 * 1024

// WriteJSONL writes records to path, one JSON object per line, creating
// parent directories as needed. An existing file is replaced.
func WriteJSONL[T any](path string, records []T) error {
	if err := ensureParentDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	writer := bufio.NewWriter(file)
	encoder := json.NewEncoder(writer)
	encoder.SetEscapeHTML(false)
	for i, record := range records {
		if err := encoder.Encode(record); err != nil {
			return fmt.Errorf("encode record %d: %w", i, err)
		}
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return file.Close()
}

// ReadJSONL reads every record in path. Blank lines are ignored. Lines that
// do not decode into T, or that exceed maxLineSize, are skipped and counted.
func ReadJSONL[T any](path string) ([]T, int, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	reader := bufio.NewReaderSize(file, 64*1024)

	var (
		records []T
		skipped int
	)
	for {
		line, tooLong, err := readLine(reader)
		if err != nil && !errors.Is(err, io.EOF) {
			return records, skipped, fmt.Errorf("read %s: %w", path, err)
		}

		switch line = bytes.TrimSpace(line); {
		case tooLong:
			skipped++
		case len(line) == 0:
		default:
			var record T
			if jsonErr := json.Unmarshal(line, &record); jsonErr != nil {
				skipped++
			} else {
				records = append(records, record)
			}
		}

		if errors.Is(err, io.EOF) {
			return records, skipped, nil
		}
	}
}

// readLine returns the next line without its newline. A line longer than
// maxLineSize is consumed and reported as tooLong with no content.
func readLine(reader *bufio.Reader) (line []byte, tooLong bool, err error) {
	for {
		chunk, err := reader.ReadSlice('\n')
		if !tooLong {
			if len(line)+len(chunk) > maxLineSize {
				tooLong, line = true, nil
			} else {
				line = append(line, chunk...)
			}
		}
		if !errors.Is(err, bufio.ErrBufferFull) {
			return line, tooLong, err
		}
	}
}

// WriteJSON writes one indented JSON document.
func WriteJSON(path string, value any) error {
	if err := ensureParentDir(path); err != nil {
		return err
	}
	content, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	content = append(content, '\n')
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	return nil
}
