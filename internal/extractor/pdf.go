package extractor

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ExtractLines returns the text lines of a PDF statement in page order.
// Rows are read with the PDF library; documents it cannot decode, or that
// decode to no text, go through the pdftotext command (poppler-utils) when
// it is installed.
func ExtractLines(filePath string) ([]string, error) {
	lines, libErr := libraryLines(filePath)
	if libErr == nil && hasText(lines) {
		return lines, nil
	}

	lines, popplerErr := pdftotextLines(filePath)
	if popplerErr == nil && hasText(lines) {
		return lines, nil
	}

	if libErr != nil {
		return nil, fmt.Errorf("extract %s: %w", filePath, libErr)
	}
	return nil, fmt.Errorf("extract %s: no text layer (scanned statement?)", filePath)
}

func libraryLines(filePath string) (lines []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("PDF library crashed: %v", r)
		}
	}()

	f, r, err := pdf.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if r.NumPage() == 0 {
		return nil, fmt.Errorf("PDF has no pages")
	}
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		for _, row := range rows {
			words := make([]string, 0, len(row.Content))
			for _, word := range row.Content {
				words = append(words, word.S)
			}
			lines = append(lines, strings.TrimSpace(strings.Join(words, " ")))
		}
	}
	return lines, nil
}

func pdftotextLines(filePath string) ([]string, error) {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return nil, fmt.Errorf("pdftotext not available: %w", err)
	}
	out, err := exec.Command("pdftotext", "-layout", filePath, "-").Output()
	if err != nil {
		return nil, fmt.Errorf("pdftotext: %w", err)
	}
	return splitLayout(out), nil
}

// splitLayout turns pdftotext output into lines. Each page after the
// first begins with a form feed.
func splitLayout(out []byte) []string {
	text := strings.ReplaceAll(string(out), "\f", "")
	lines, _ := ReadText(strings.NewReader(text))
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func hasText(lines []string) bool {
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			return true
		}
	}
	return false
}
