package filter

import (
	"net/url"
	"path"
	"strings"
)

// MaxExtensionLength is the longest extension a candidate file may have.
const MaxExtensionLength = 3

var allowedExtensions = []string{"jpg", "png"}

type FilenameError struct {
	explanation string
	URL         string
}

func (fe *FilenameError) Error() string {
	return fe.explanation + ": " + fe.URL
}

// Filename derives the on-disk name from the last path segment of rawURL.
// Only jpg and png images are accepted.
func Filename(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", &FilenameError{explanation: "invalid url", URL: rawURL}
	}

	name := path.Base(u.Path)
	if name == "/" || name == "." || name == "" {
		return "", &FilenameError{explanation: "url has no filename", URL: rawURL}
	}

	dot := strings.LastIndexByte(name, '.')
	if dot < 0 {
		return "", &FilenameError{explanation: "filename has no extension", URL: rawURL}
	}

	stem, ext := name[:dot], name[dot+1:]
	if len(ext) > MaxExtensionLength || !isAllowedExtension(ext) {
		return "", &FilenameError{explanation: "unsupported extension", URL: rawURL}
	}

	stem = removeForbiddenChars(stem)
	if stem == "" {
		return "", &FilenameError{explanation: "filename is empty", URL: rawURL}
	}

	return formatFilename(stem, ext), nil
}

func isAllowedExtension(ext string) bool {
	for _, e := range allowedExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

// formatFilename trims the name so that it stays within NTFS limits.
func formatFilename(filename, extension string) string {
	const MaxFilenameLength = 255 // This really only accounts for NTFS.

	totalLength := len(filename) + len(extension) + 1
	if totalLength > MaxFilenameLength {
		requiredLength := MaxFilenameLength - len(extension) - 1
		filename = filename[:requiredLength]
	}

	return filename + "." + extension
}

// removeForbiddenChars removes invalid characters for Linux/Windows filenames.
func removeForbiddenChars(name string) string {
	// Most of the characters are forbidden on Windows only.
	forbiddenChars := []rune{
		'#', '%', '&', '{', '}', '\\', '<', '>', '*', '?', '/', '$',
		'!', '\'', '"', ':', '@', '+', '`', '|', '=',
	}
	for _, c := range forbiddenChars {
		name = strings.ReplaceAll(name, string(c), "")
	}

	return name
}
