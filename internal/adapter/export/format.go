package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/couchcryptid/station-qa-etl/internal/domain"
)

// timestampLayout matches the logger's own TIMESTAMP column.
const timestampLayout = "2006-01-02 15:04:05"

// encode renders a value as the logger would, with sentinel codes in place of
// missing and out-of-range readings.
func encode(v domain.Value) string {
	return strconv.FormatFloat(v.Encode(), 'f', -1, 64)
}

// center pads s to width with the extra space, if any, on the right.
func center(s string, width int) string {
	pad := width - len(s)
	if pad <= 0 {
		return s
	}
	left := pad / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", pad-left)
}

// create opens name under dir for writing, creating dir if needed and
// truncating any existing file.
func create(dir, name string) (*os.File, string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, "", fmt.Errorf("create output directory: %w", err)
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return nil, "", fmt.Errorf("create %s: %w", name, err)
	}
	return f, path, nil
}
