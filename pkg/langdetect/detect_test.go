package langdetect_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yaklabco/assetpack/pkg/langdetect"
)

func TestLanguage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path    string
		content string
		want    string
	}{
		{"/js/app.js", "const x = () => 42;", "javascript"},
		{"/js/app.mjs", "export default {};", "javascript"},
		{"/css/app.css", "body { margin: 0 }", "css"},
		{"/index.html", "<!DOCTYPE html>\n<html></html>", "html"},
		{"/data.json", `{"a": 1}`, "json"},
		{"/page.unknownext", "<!DOCTYPE html><html><body></body></html>", "html"},
		{"/notes.unknownext", "just words", "text"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, langdetect.Language(tt.path, []byte(tt.content)))
		})
	}
}

func TestDetect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"shebang", "#!/bin/sh\necho hello", "bash"},
		{"html doctype", "<!DOCTYPE html>\n<html>\n<body></body>\n</html>", "html"},
		{"json object", `{"key": "value"}`, "json"},
		{"svg", `<svg xmlns="http://www.w3.org/2000/svg"></svg>`, "svg"},
		{"empty", "", "text"},
		{"binary", "\x00\x01\x02\x03", "text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, langdetect.Detect([]byte(tt.content)))
		})
	}
}

func TestInspect(t *testing.T) {
	t.Parallel()

	t.Run("stylesheet", func(t *testing.T) {
		t.Parallel()
		info := langdetect.Inspect("/css/app.css", []byte("body{}"))
		assert.Equal(t, "css", info.Language)
		assert.Contains(t, info.MIMEType, "css")
		assert.False(t, info.Binary)
		assert.False(t, info.Vendored)
	})

	t.Run("vendored script", func(t *testing.T) {
		t.Parallel()
		info := langdetect.Inspect("/node_modules/lib/index.js", []byte("module.exports = {}"))
		assert.Equal(t, "javascript", info.Language)
		assert.True(t, info.Vendored)
	})

	t.Run("binary content", func(t *testing.T) {
		t.Parallel()
		info := langdetect.Inspect("/img/logo.js", []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"))
		assert.True(t, info.Binary)
	})
}

func TestIsBinary(t *testing.T) {
	t.Parallel()

	assert.True(t, langdetect.IsBinary([]byte("a\x00b")))
	assert.False(t, langdetect.IsBinary([]byte("console.log('hi')")))
}

func BenchmarkInspect(b *testing.B) {
	content := []byte("const add = (a, b) => a + b;\nconsole.log(add(1, 2));\n")
	b.ResetTimer()
	for range b.N {
		langdetect.Inspect("/js/app.js", content)
	}
}
