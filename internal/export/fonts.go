package export

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"audit-backend/internal/shared/telemetry"
)

const fontFamily = "auditsans"

var (
	fontMu      sync.RWMutex
	fontRegular = goregular.TTF
	fontBold    = gobold.TTF
)

// UseFontFile replaces the embedded Go fonts with a TrueType file, for lender names in
// scripts the Go fonts do not cover (CJK, Tamil). The file serves both weights.
func UseFontFile(path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read font %s: %w", path, err)
	}
	if !isTrueType(data) {
		return fmt.Errorf("font %s: not a TrueType file", path)
	}
	fontMu.Lock()
	fontRegular, fontBold = data, data
	fontMu.Unlock()
	telemetry.Info("export.font.loaded", map[string]any{"path": path, "bytes": len(data)})
	return nil
}

func isTrueType(data []byte) bool {
	if len(data) < 12 {
		return false
	}
	magic := string(data[:4])
	return magic == "\x00\x01\x00\x00" || magic == "true"
}

func currentFonts() (regular, bold []byte) {
	fontMu.RLock()
	defer fontMu.RUnlock()
	return fontRegular, fontBold
}

// bmpText keeps text inside the Basic Multilingual Plane; the PDF font tables index
// glyph widths by 16-bit code point.
func bmpText(s string) string {
	return strings.Map(func(r rune) rune {
		if r > 0xFFFF {
			return '?'
		}
		return r
	}, s)
}
