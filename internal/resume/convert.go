package resume

import (
	"errors"
	"fmt"
	"html"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/nguyenthenguyen/docx"
)

// ErrEmptyDocument is returned when a document yields no text.
var ErrEmptyDocument = errors.New("document contains no text")

var (
	docxParagraphRe = regexp.MustCompile(`</w:p>|<w:br/>`)
	docxTabRe       = regexp.MustCompile(`<w:tab/>`)
	xmlTagRe        = regexp.MustCompile(`<[^>]+>`)
	blankLinesRe    = regexp.MustCompile(`\n{3,}`)
)

// Convert extracts plain text from a resume file. Plain text and markdown are
// read as is, docx is unpacked and pdf goes through pdftotext.
func Convert(path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("resume file: %w", err)
	}

	var (
		text string
		err  error
	)

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".txt", ".md", ".markdown", "":
		var data []byte
		data, err = os.ReadFile(path)
		text = string(data)
	case ".docx":
		text, err = convertDOCX(path)
	case ".pdf":
		text, err = convertPDF(path)
	default:
		return "", fmt.Errorf("unsupported resume file type: %s", ext)
	}
	if err != nil {
		return "", err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%s: %w", path, ErrEmptyDocument)
	}
	return text, nil
}

func convertDOCX(path string) (string, error) {
	r, err := docx.ReadDocxFile(path)
	if err != nil {
		return "", fmt.Errorf("read docx: %w", err)
	}
	defer r.Close()

	return DocxText(r.Editable().GetContent()), nil
}

// DocxText strips WordprocessingML markup and keeps paragraph breaks.
func DocxText(content string) string {
	content = docxParagraphRe.ReplaceAllString(content, "\n")
	content = docxTabRe.ReplaceAllString(content, "\t")
	content = xmlTagRe.ReplaceAllString(content, "")
	content = html.UnescapeString(content)
	content = blankLinesRe.ReplaceAllString(content, "\n\n")
	return strings.TrimSpace(content)
}

func convertPDF(path string) (string, error) {
	cmd := exec.Command("pdftotext", "-layout", path, "-")
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("pdf extraction requires 'pdftotext' (install poppler-utils): %w", err)
	}
	return string(output), nil
}
