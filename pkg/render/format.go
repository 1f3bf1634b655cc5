package render

import (
	"slices"
	"strings"

	"github.com/matzehuels/entitydiagram/pkg/errors"
)

// Format is an export format.
type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
	FormatPDF Format = "pdf"
	FormatDOT Format = "dot"
)

// Formats lists the supported export formats.
var Formats = []Format{FormatSVG, FormatPNG, FormatPDF, FormatDOT}

// ParseFormat parses a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(Formats, f) {
		return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q (want svg, png, pdf or dot)", s)
	}
	return f, nil
}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	switch f {
	case FormatSVG:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	case FormatPDF:
		return "application/pdf"
	default:
		return "text/vnd.graphviz"
	}
}
