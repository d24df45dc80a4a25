package censustable

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/nao1215/censustable/domain/model"
)

// maxTableIDLength bounds table identifiers, which become SQL table names.
const maxTableIDLength = 64

// validator handles validation logic for Builder
type validator struct{}

// newValidator creates a new validator instance
func newValidator() *validator {
	return &validator{}
}

// validateFile checks that path is an existing, supported data file.
func (v *validator) validateFile(path string) error {
	info, err := v.stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("path is a directory, want a file: %s", path)
	}
	if !model.IsSupportedFile(path) {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	return nil
}

// validateDir checks that path is an existing directory.
func (v *validator) validateDir(path string) error {
	info, err := v.stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", path)
	}
	return nil
}

func (v *validator) stat(path string) (os.FileInfo, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("path cannot be empty")
	}
	if strings.Contains(path, "\x00") {
		return nil, fmt.Errorf("path contains a null byte: %q", path)
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("path does not exist: %s: %w", path, err)
		}
		return nil, fmt.Errorf("failed to stat path %s: %w", path, err)
	}
	return info, nil
}

// validateOutputDirectory validates that the output directory can be created/accessed
func (v *validator) validateOutputDirectory(outputDir string) error {
	if strings.TrimSpace(outputDir) == "" {
		return errors.New("output directory cannot be empty")
	}

	if info, err := os.Stat(outputDir); err == nil {
		if !info.IsDir() {
			return fmt.Errorf("output path exists but is not a directory: %s", outputDir)
		}
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to check output directory: %w", err)
	}

	// created on write
	return nil
}

// validateDumpOptions rejects combinations the writers cannot produce.
func (v *validator) validateDumpOptions(options model.DumpOptions) error {
	if options.Compression == model.CompressionBZ2 {
		return fmt.Errorf("%w: bzip2 compression is read only", ErrUnsupportedFormat)
	}
	return nil
}

// validateTableID checks that a table identifier can name a sheet, a file
// and an SQL table: ASCII letters and digits only.
func validateTableID(tableID string) error {
	if tableID == "" {
		return fmt.Errorf("%w: empty", ErrInvalidTableID)
	}
	if len(tableID) > maxTableIDLength {
		return fmt.Errorf("%w: %q is longer than %d characters", ErrInvalidTableID, tableID, maxTableIDLength)
	}
	for _, r := range tableID {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return fmt.Errorf("%w: %q", ErrInvalidTableID, tableID)
		}
	}
	return nil
}

// isValidFileName checks if a filename is safe to process
func isValidFileName(fileName string) bool {
	// Skip hidden files
	if strings.HasPrefix(fileName, ".") {
		return false
	}

	if strings.Contains(fileName, "\x00") {
		return false
	}

	for _, char := range []string{"<", ">", ":", "\"", "|", "?", "*"} {
		if strings.Contains(fileName, char) {
			return false
		}
	}
	return true
}
