package testsupport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// CSVHeader is the column order used by WriteCSV.
const CSVHeader = "datetime,video_type,video_id,clip_start,clip_end,status,title,artist,performer,comment"

// WriteCSV writes a records file with CSVHeader followed by rows. Each row is
// written verbatim, so callers quote fields themselves.
func WriteCSV(t testing.TB, path string, rows ...string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	content := CSVHeader + "\n" + strings.Join(rows, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
