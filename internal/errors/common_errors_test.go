package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name        string
		appError    *AppError
		wantMessage string
	}{
		{
			name:        "error without cause",
			appError:    NewValidationError("month token must be YYYY-MM"),
			wantMessage: "[VALIDATION] month token must be YYYY-MM",
		},
		{
			name:        "error with cause",
			appError:    NewInputError("AGL_0001.TXT", "failed to read input file", fs.ErrNotExist),
			wantMessage: "[INPUT] failed to read input file: file does not exist",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMessage, tt.appError.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	err := NewInputError("missing.txt", "failed to read input file", fs.ErrNotExist)
	wrapped := fmt.Errorf("run: %w", err)

	assert.True(t, errors.Is(wrapped, fs.ErrNotExist))

	appErr, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, ErrTypeInput, appErr.Type)
	assert.Equal(t, "missing.txt", Path(wrapped))
}

func TestNewLineError_Context(t *testing.T) {
	err := NewLineError(12, "1\t1\tXX", "insufficient fields")

	assert.Equal(t, 12, err.Context["line"])
	assert.Equal(t, "1\t1\tXX", err.Context["raw_line"])
	assert.True(t, IsType(err, ErrTypeLine))
	assert.False(t, IsType(err, ErrTypeInput))
}

func TestNewOutputError_WrittenSections(t *testing.T) {
	written := []string{"report_2023-10.csv", "summary_2023-10.csv"}
	err := NewOutputError("/reports/report_2023-11.csv", written, errors.New("permission denied"))

	assert.Equal(t, written, err.Context["written"])
	assert.Equal(t, "/reports/report_2023-11.csv", Path(err))
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"plain error", errors.New("boom"), 1},
		{"input", NewInputError("f", "unreadable", nil), 1},
		{"output", NewOutputError("f", nil, nil), 1},
		{"config", NewConfigError("bad", nil), 2},
		{"validation", NewValidationError("bad"), 2},
		{"month gap", NewMonthGapError("2023-11"), 0},
		{"wrapped config", fmt.Errorf("load: %w", NewConfigError("bad", nil)), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestPath_NonAppError(t *testing.T) {
	assert.Empty(t, Path(errors.New("plain")))
}
