package extractor

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ReadLines returns the text lines of a statement document in page order.
// PDFs go through text extraction; .txt files are assumed to hold already
// extracted text, one visual line per line.
func ReadLines(filePath string) ([]string, error) {
	switch ext := strings.ToLower(filepath.Ext(filePath)); ext {
	case ".pdf":
		return ExtractLines(filePath)
	case ".txt":
		f, err := os.Open(filePath)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", filePath, err)
		}
		defer f.Close()
		return ReadText(f)
	default:
		return nil, fmt.Errorf("unsupported statement file type %q", ext)
	}
}

// ReadText splits plain text into lines, dropping trailing whitespace and
// carriage returns so separator lines compare exactly.
func ReadText(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		lines = append(lines, strings.TrimRight(sc.Text(), " \t\r"))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read statement text: %w", err)
	}
	return lines, nil
}
