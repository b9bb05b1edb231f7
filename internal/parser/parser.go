package parser

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docgrep/internal/doctree"
)

var (
	// ErrDecode marks bytes that do not form a valid document of the expected format.
	ErrDecode = errors.New("decode error")
	// ErrUnsupported marks a filename whose extension has no parser.
	ErrUnsupported = errors.New("unsupported document format")
)

// Parser converts raw document bytes into a DocTree.
type Parser interface {
	Parse(data []byte, filename string) (*doctree.DocTree, error)
}

// SupportedExtensions lists file extensions this tool can decode.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

func decodeErr(format string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrDecode, format, err)
}

func titleOf(filename string, exts ...string) string {
	title := filepath.Base(filename)
	for _, ext := range exts {
		title = strings.TrimSuffix(title, ext)
	}
	return title
}
