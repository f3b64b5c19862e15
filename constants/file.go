package constants

import "strings"

// AllowedExtensions holds the file extensions accepted for bill processing.
// Note: .jpeg is intentionally absent; the upload UI only emits .pdf/.jpg/.png.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
	"jpg": {},
	"png": {},
}

// ImageExtensions marks extensions submitted to OCR as photographs.
var ImageExtensions = map[string]struct{}{
	"jpg": {},
	"png": {},
}

// ErrInvalidExtension is the fixed error recorded in the ledger for files
// outside AllowedExtensions.
const ErrInvalidExtension = "Invalid file extension. Only .pdf, .jpg, .png allowed."

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// ExtensionAllowed reports whether a filename's extension is in the allowed set.
func ExtensionAllowed(filename string) bool {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 {
		return false
	}
	_, ok := AllowedExtensions[NormalizeExt(filename[idx:])]
	return ok
}

// IsImage reports whether a filename looks like a photographed bill.
func IsImage(filename string) bool {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 {
		return false
	}
	_, ok := ImageExtensions[NormalizeExt(filename[idx:])]
	return ok
}
