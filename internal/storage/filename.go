package storage

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Naming modes for uploaded files.
const (
	ModeDate = "date"
	ModeUUID = "uuid"
)

// GenerateName derives a collision-resistant filename from an upload's
// original name, preserving its extension. Files without an extension default
// to ".jpeg".
func GenerateName(fileName, mode string) string {
	// Client-supplied names can carry directory components; keep only the
	// final element so the result never escapes the store directory.
	fileName = filepath.Base(fileName)
	if fileName == "." || fileName == ".." || fileName == string(filepath.Separator) {
		fileName = ""
	}

	ext := filepath.Ext(fileName)
	if ext == "" {
		ext = ".jpeg"
	}
	base := strings.TrimSuffix(fileName, ext)

	switch mode {
	case ModeUUID:
		return base + "_" + uuid.New().String() + ext
	default:
		return base + "_" + time.Now().Format("20060102150405") + ext
	}
}
