package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"attendcli/internal/errors"
)

// FileValidator checks the input file and output locations before a run
// touches them, so failures name the offending path up front.
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger,
	}
}

// ValidateInputFile checks that the device export exists, is a regular file
// and can be opened. Failures are INPUT errors.
func (v *FileValidator) ValidateInputFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("Input file does not exist",
			slog.String("file", path))
		return errors.NewInputError(path, fmt.Sprintf("input file %s does not exist", path), err)
	}
	if err != nil {
		v.logger.Error("Failed to stat input file",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return errors.NewInputError(path, fmt.Sprintf("failed to stat input file %s", path), err)
	}
	if info.IsDir() {
		v.logger.Error("Input path is a directory, not a file",
			slog.String("path", path))
		return errors.NewInputError(path, fmt.Sprintf("%s is a directory, not a file", path), nil)
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("Input file is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return errors.NewInputError(path, fmt.Sprintf("input file %s is not readable", path), err)
	}
	file.Close()

	if info.Size() == 0 {
		v.logger.Warn("Input file is empty",
			slog.String("file", path))
	}

	v.logger.Debug("Input file validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateOutputDirectory ensures the directory exists or can be created and
// is writable. Failures are OUTPUT errors with nothing written.
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return errors.NewOutputError(dir, nil, fmt.Errorf("failed to create output directory %s: %w", dir, err))
	}

	// Verify it's writable by creating a test file
	testFile := filepath.Join(dir, ".write_test")
	file, err := os.Create(testFile)
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return errors.NewOutputError(dir, nil, fmt.Errorf("output directory %s is not writable: %w", dir, err))
	}
	file.Close()
	os.Remove(testFile)

	v.logger.Debug("Output directory validated",
		slog.String("directory", dir))
	return nil
}

// ValidateWorkbookName checks the configured workbook file name. Failures are
// CONFIG errors.
func (v *FileValidator) ValidateWorkbookName(name string) error {
	ext := strings.ToLower(filepath.Ext(name))
	if ext != ".xlsx" {
		v.logger.Error("Workbook name is not an Excel file",
			slog.String("name", name),
			slog.String("extension", ext))
		return errors.NewConfigError(fmt.Sprintf("workbook name %s must end in .xlsx", name), nil)
	}

	base := filepath.Base(name)
	if strings.HasPrefix(base, "~$") {
		return errors.NewConfigError(fmt.Sprintf("workbook name %s is reserved for Excel lock files", name), nil)
	}
	if base != name {
		return errors.NewConfigError(fmt.Sprintf("workbook name %s must not contain a directory", name), nil)
	}

	return nil
}
