package fetcher

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// ExtractFirstCSV opens the downloaded bytes as a zip archive and extracts
// its first CSV member into destDir, returning the extracted file's path.
// Member paths are flattened to their base name so a hostile archive cannot
// write outside destDir.
func ExtractFirstCSV(data []byte, destDir string) (string, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCorruptArchive, err)
	}
	if len(reader.File) == 0 {
		return "", fmt.Errorf("%w: archive has no entries", ErrCorruptArchive)
	}

	var member *zip.File
	for _, f := range reader.File {
		if strings.HasSuffix(strings.ToLower(f.Name), ".csv") {
			member = f
			break
		}
	}
	if member == nil {
		return "", fmt.Errorf("%w: %d entries, none with a .csv extension", ErrNoDataFound, len(reader.File))
	}

	src, err := member.Open()
	if err != nil {
		return "", fmt.Errorf("%w: could not open member %s: %v", ErrCorruptArchive, member.Name, err)
	}
	defer src.Close()

	destPath := filepath.Join(destDir, filepath.Base(member.Name))
	dst, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrIO, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("%w: could not extract %s: %v", ErrIO, member.Name, err)
	}

	log.Printf("Fetcher: extracted %s to %s", member.Name, destPath)
	return destPath, nil
}
