package util

import (
	"archive/zip"
	"fmt"
	"io"
	"strings"
)

// ZipEntry is one file in a streamed archive. Open is called lazily so
// at most one source reader is held at a time.
type ZipEntry struct {
	Name string
	Open func() (io.ReadCloser, error)
}

// StreamZip writes the entries into a zip archive on the fly. Entry
// names are sanitized and de-duplicated; duplicates get a numeric
// suffix so nothing in the archive silently overwrites a sibling.
func StreamZip(writer io.Writer, entries []ZipEntry) error {
	zipWriter := zip.NewWriter(writer)
	defer zipWriter.Close()

	seen := map[string]int{}
	for _, entry := range entries {
		name := uniqueEntryName(seen, SanitizeDownloadFilename(entry.Name))

		source, err := entry.Open()
		if err != nil {
			return fmt.Errorf("open archive entry %q: %w", name, err)
		}

		dest, err := zipWriter.Create(name)
		if err != nil {
			source.Close()
			return err
		}

		_, err = io.Copy(dest, source)
		source.Close()
		if err != nil {
			return fmt.Errorf("write archive entry %q: %w", name, err)
		}
	}

	return nil
}

func uniqueEntryName(seen map[string]int, name string) string {
	count := seen[name]
	seen[name] = count + 1
	if count == 0 {
		return name
	}

	stem, ext := name, ""
	if idx := strings.LastIndex(name, "."); idx > 0 {
		stem, ext = name[:idx], name[idx:]
	}
	return fmt.Sprintf("%s (%d)%s", stem, count, ext)
}
