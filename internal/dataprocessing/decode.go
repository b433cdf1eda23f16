package dataprocessing

import (
	stderrors "errors"
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"attendcli/internal/errors"
	"attendcli/pkg/contracts/domain"
)

// Decoded is the text of an input file and the encoding that produced it.
type Decoded struct {
	Text     string
	Encoding string
	// Rejected lists the candidates tried, in order, before Encoding succeeded.
	Rejected    []string
	Diagnostics []domain.Diagnostic
}

// Decode converts raw bytes to text using the first candidate encoding that
// accepts them. UTF-8 candidates are strict; single-byte code pages accept
// any input. When every candidate fails the error is of type INPUT.
func Decode(raw []byte, encodings []string) (*Decoded, error) {
	if len(encodings) == 0 {
		return nil, errors.NewAppError(errors.ErrTypeInput, "no candidate encodings configured", nil)
	}

	var (
		rejected []string
		failures []error
	)
	for _, name := range encodings {
		text, err := decodeAs(raw, name)
		if err != nil {
			rejected = append(rejected, name)
			failures = append(failures, fmt.Errorf("%s: %w", name, err))
			continue
		}

		decoded := &Decoded{Text: text, Encoding: name, Rejected: rejected}
		if len(rejected) > 0 {
			decoded.Diagnostics = append(decoded.Diagnostics, domain.Diagnostic{
				Kind:   domain.DiagnosticEncodingFallback,
				Reason: fmt.Sprintf("decoded as %s after %s failed", name, strings.Join(rejected, ", ")),
			})
		}
		return decoded, nil
	}

	return nil, errors.NewAppError(errors.ErrTypeInput,
		fmt.Sprintf("no candidate encoding could decode the input (tried %s)", strings.Join(encodings, ", ")),
		stderrors.Join(failures...))
}

func decodeAs(raw []byte, name string) (string, error) {
	t, err := decoderFor(name)
	if err != nil {
		return "", err
	}
	out, _, err := transform.Bytes(t, raw)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// decoderFor maps an encoding name to a transformer. Names follow the
// conventional spellings (utf-8-sig, latin1, cp1252) with IANA names as fallback.
func decoderFor(name string) (transform.Transformer, error) {
	switch normalizeEncodingName(name) {
	case "utf-8", "utf8":
		return encoding.UTF8Validator, nil
	case "utf-8-sig", "utf8-sig":
		return transform.Chain(encoding.UTF8Validator, unicode.UTF8BOM.NewDecoder()), nil
	case "latin1", "latin-1", "iso-8859-1", "iso8859-1", "l1":
		return charmap.ISO8859_1.NewDecoder(), nil
	case "cp1252", "windows-1252":
		return charmap.Windows1252.NewDecoder(), nil
	}

	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding: %w", err)
	}
	if enc == nil {
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
	return enc.NewDecoder(), nil
}

func normalizeEncodingName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
}
