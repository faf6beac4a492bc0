// Package langdetect classifies asset files with go-enry: language, MIME
// type, and whether the content is binary, vendored or machine generated.
package langdetect

import (
	"bytes"
	"slices"
	"strings"

	"github.com/go-enry/go-enry/v2"
)

const langText = "text"

// webLanguages are preferred when an extension is shared by several
// languages, such as .html (HTML, Ecmarkup).
var webLanguages = []string{"HTML", "CSS", "JavaScript", "TypeScript", "JSON", "SVG", "XML"}

// Info describes an asset.
type Info struct {
	// Language is the lowercase language name, "text" when unknown.
	Language string `json:"language"`

	// MIMEType is the MIME type associated with the language.
	MIMEType string `json:"mime_type"`

	// Binary reports whether the content looks binary.
	Binary bool `json:"binary,omitempty"`

	// Vendored reports whether the path looks like third-party code
	// (node_modules/, vendor/, ...).
	Vendored bool `json:"vendored,omitempty"`

	// Generated reports whether the file looks machine generated,
	// such as minified bundles or source maps.
	Generated bool `json:"generated,omitempty"`
}

// Inspect classifies the asset at path with the given content.
func Inspect(path string, content []byte) Info {
	name := enryLanguage(path, content)

	info := Info{
		Language:  langText,
		MIMEType:  enry.GetMIMEType(path, name),
		Binary:    IsBinary(content),
		Vendored:  enry.IsVendor(strings.TrimPrefix(path, "/")),
		Generated: enry.IsGenerated(path, content),
	}
	if name != "" {
		info.Language = normalize(name)
	}
	return info
}

// Language returns the lowercase language of the file, using its name first
// and its content when the name is ambiguous or unknown.
func Language(path string, content []byte) string {
	if name := enryLanguage(path, content); name != "" {
		return normalize(name)
	}
	return langText
}

// IsBinary reports whether content looks like binary data.
func IsBinary(content []byte) bool {
	return enry.IsBinary(content)
}

// Detect returns the language of content alone. It returns "text" when no
// language can be determined with confidence.
func Detect(content []byte) string {
	if name := detectContent(content); name != "" {
		return normalize(name)
	}
	return langText
}

// enryLanguage returns the enry language name for the file, or "".
func enryLanguage(path string, content []byte) string {
	if lang, safe := enry.GetLanguageByExtension(path); safe {
		return lang
	}

	candidates := enry.GetLanguagesByExtension(path, content, nil)
	for _, candidate := range candidates {
		if slices.Contains(webLanguages, candidate) {
			return candidate
		}
	}
	if len(candidates) > 0 {
		return candidates[0]
	}

	return detectContent(content)
}

func detectContent(content []byte) string {
	if len(content) == 0 || IsBinary(content) {
		return ""
	}

	if lang, safe := enry.GetLanguageByShebang(content); safe {
		return lang
	}

	trimmed := bytes.TrimSpace(content)
	lower := bytes.ToLower(trimmed)
	switch {
	case bytes.HasPrefix(lower, []byte("<!doctype html")), bytes.Contains(lower, []byte("<html")):
		return "HTML"
	case bytes.HasPrefix(lower, []byte("<svg")):
		return "SVG"
	case (bytes.HasPrefix(trimmed, []byte("{")) || bytes.HasPrefix(trimmed, []byte("["))) &&
		bytes.Contains(trimmed, []byte(`"`)):
		return "JSON"
	}

	if lang, safe := enry.GetLanguageByClassifier(content, webLanguages); safe {
		return lang
	}
	return ""
}

// normalize converts go-enry language names to short lowercase tags.
func normalize(lang string) string {
	if lang == "Shell" {
		return "bash"
	}
	return strings.ToLower(lang)
}
