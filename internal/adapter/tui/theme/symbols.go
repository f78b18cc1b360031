package theme

import (
	"os"
	"strings"
)

// SymbolSet holds all UI symbols, allowing runtime switching between
// Unicode and ASCII fallback sets.
type SymbolSet struct {
	Success string
	Error   string
	Info    string
	Cursor  string
	Bullet  string
	Gift    string
}

var unicodeSymbols = SymbolSet{
	Success: "\u2713",     // ✓
	Error:   "\u2717",     // ✗
	Info:    "\u25CF",     // ●
	Cursor:  "\u203A",     // ›
	Bullet:  "\u2022",     // •
	Gift:    "\U0001F381", // 🎁
}

var asciiSymbols = SymbolSet{
	Success: "[OK]",
	Error:   "[ERR]",
	Info:    "[i]",
	Cursor:  ">",
	Bullet:  "*",
	Gift:    "[gift]",
}

// DetectUnicodeSupport checks whether the terminal likely supports Unicode.
// Priority: GIFTADVISOR_ASCII_SYMBOLS env (explicit override) > locale detection.
func DetectUnicodeSupport() bool {
	if v := os.Getenv("GIFTADVISOR_ASCII_SYMBOLS"); v == "1" || strings.EqualFold(v, "true") {
		return false
	}

	for _, key := range []string{"LC_ALL", "LC_CTYPE", "LANG"} {
		val := strings.ToLower(os.Getenv(key))
		if strings.Contains(val, "utf-8") || strings.Contains(val, "utf8") {
			return true
		}
	}

	// Most modern terminals support Unicode; default to true.
	return true
}

// InitSymbols sets the package-level Symbol* variables based on terminal
// capabilities. Called automatically by init(), but can be called again
// if the environment changes (e.g., in tests).
func InitSymbols() {
	set := unicodeSymbols
	if !DetectUnicodeSupport() {
		set = asciiSymbols
	}

	SymbolSuccess = set.Success
	SymbolError = set.Error
	SymbolInfo = set.Info
	SymbolCursor = set.Cursor
	SymbolBullet = set.Bullet
	SymbolGift = set.Gift
}

func init() {
	InitSymbols()
}
