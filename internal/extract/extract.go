// Package extract turns uploaded files into plain text for synthesis.
// Plain text is passed through and PDF pages are read in order; every other
// content type is rejected.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
)

var (
	// ErrUnsupportedType is returned for content that is neither text nor PDF.
	ErrUnsupportedType = errors.New("unsupported document type")

	// ErrNoText is returned when a document yields no extractable text,
	// for example a scanned PDF.
	ErrNoText = errors.New("document contains no extractable text")
)

// Detect returns the MIME type of data without parameters.
func Detect(data []byte) string {
	return strings.SplitN(mimetype.Detect(data).String(), ";", 2)[0]
}

// Text extracts the text content of data.
func Text(data []byte) (string, error) {
	mtype := mimetype.Detect(data)

	var (
		text string
		err  error
	)
	switch {
	case mtype.Is("application/pdf"):
		text, err = pdfText(data)
	case isText(mtype):
		text = string(data)
		if !utf8.ValidString(text) {
			text = strings.ToValidUTF8(text, "")
		}
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, mtype.String())
	}
	if err != nil {
		return "", err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}

func isText(mtype *mimetype.MIME) bool {
	for m := mtype; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}

// pdfText joins the plain text of every readable page with newlines.
func pdfText(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("could not read PDF: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}

	return sb.String(), nil
}
