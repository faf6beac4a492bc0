package emit

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"go/format"
	"strconv"

	"github.com/klauspost/compress/zstd"

	"github.com/yaklabco/assetpack/pkg/config"
	"github.com/yaklabco/assetpack/pkg/pack"
)

// Generate renders bundle as a gofmt-formatted Go source file.
//
// The output depends only on the bundle contents and opts: index entries are
// written in sorted path order, so regenerating an unchanged tree yields
// identical bytes.
func Generate(bundle *pack.Bundle, opts Options) ([]byte, error) {
	if bundle == nil {
		bundle = pack.New()
	}
	opts = opts.withDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := bundle.Validate(); err != nil {
		return nil, err
	}

	literal, err := encodeData(bundle.Data, opts.Encoding)
	if err != nil {
		return nil, err
	}

	paths := bundle.Paths()
	var buf bytes.Buffer

	buf.WriteString(HeaderLine + "\n\n")
	fmt.Fprintf(&buf, "package %s\n\n", opts.Package)

	buf.WriteString("import (\n")
	if opts.Encoding != config.EncodingQuoted {
		buf.WriteString("\t\"encoding/base64\"\n")
	}
	buf.WriteString("\t\"errors\"\n")
	if opts.Encoding == config.EncodingZstd {
		fmt.Fprintf(&buf, "\n\t%q\n", zstdImport)
	}
	buf.WriteString(")\n\n")

	fmt.Fprintf(&buf, "// %s holds %d assets (%d bytes) packed back to back.\n",
		dataVar, len(paths), len(bundle.Data))
	if opts.Encoding == config.EncodingQuoted {
		fmt.Fprintf(&buf, "var %s = []byte(%s)\n\n", dataVar, literal)
	} else {
		fmt.Fprintf(&buf, "var %s = %s(%s)\n\n", dataVar, decodeFunc, literal)
	}

	fmt.Fprintf(&buf, "// %s is a half-open byte interval into %s.\n", rangeType, dataVar)
	fmt.Fprintf(&buf, "type %s struct{ begin, end int }\n\n", rangeType)

	fmt.Fprintf(&buf, "var %s = map[string]%s{\n", indexVar, rangeType)
	for _, path := range paths {
		r := bundle.Index[path]
		fmt.Fprintf(&buf, "\t%s: {%d, %d},\n", strconv.Quote(path), r.Start, r.End)
	}
	buf.WriteString("}\n\n")

	fmt.Fprintf(&buf, "// %s is returned for a path that was not bundled.\n", notFoundVar)
	fmt.Fprintf(&buf, "var %s = errors.New(\"not found\")\n\n", notFoundVar)

	fmt.Fprintf(&buf, "// %s returns the content of the asset stored under path, such as\n", opts.FuncName)
	buf.WriteString("// \"/js/app.js\". The returned slice shares memory with every other asset\n")
	buf.WriteString("// and must not be modified.\n")
	fmt.Fprintf(&buf, "func %s(path string) ([]byte, error) {\n", opts.FuncName)
	fmt.Fprintf(&buf, "\tr, ok := %s[path]\n", indexVar)
	buf.WriteString("\tif !ok {\n")
	fmt.Fprintf(&buf, "\t\treturn nil, %s\n", notFoundVar)
	buf.WriteString("\t}\n")
	fmt.Fprintf(&buf, "\treturn %s[r.begin:r.end:r.end], nil\n", dataVar)
	buf.WriteString("}\n\n")

	fmt.Fprintf(&buf, "// %s returns the bundled asset paths in sorted order.\n", pathsFunc)
	fmt.Fprintf(&buf, "func %s() []string {\n", pathsFunc)
	buf.WriteString("\treturn []string{\n")
	for _, path := range paths {
		fmt.Fprintf(&buf, "\t\t%s,\n", strconv.Quote(path))
	}
	buf.WriteString("\t}\n")
	buf.WriteString("}\n")

	if opts.Encoding != config.EncodingQuoted {
		writeDecoder(&buf, opts.Encoding)
	}

	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("format generated source: %w", err)
	}
	return formatted, nil
}

func writeDecoder(buf *bytes.Buffer, encoding config.Encoding) {
	buf.WriteString("\n")
	fmt.Fprintf(buf, "func %s(s string) []byte {\n", decodeFunc)
	buf.WriteString("\tdata, err := base64.StdEncoding.DecodeString(s)\n")
	buf.WriteString("\tif err != nil {\n")
	buf.WriteString("\t\tpanic(\"assetpack: decode assets: \" + err.Error())\n")
	buf.WriteString("\t}\n")

	if encoding == config.EncodingZstd {
		buf.WriteString("\tdecoder, err := zstd.NewReader(nil)\n")
		buf.WriteString("\tif err != nil {\n")
		buf.WriteString("\t\tpanic(\"assetpack: decode assets: \" + err.Error())\n")
		buf.WriteString("\t}\n")
		buf.WriteString("\tdefer decoder.Close()\n")
		buf.WriteString("\tdata, err = decoder.DecodeAll(data, nil)\n")
		buf.WriteString("\tif err != nil {\n")
		buf.WriteString("\t\tpanic(\"assetpack: decompress assets: \" + err.Error())\n")
		buf.WriteString("\t}\n")
	}

	buf.WriteString("\treturn data\n")
	buf.WriteString("}\n")
}

// encodeData returns the Go string literal that carries data.
func encodeData(data []byte, encoding config.Encoding) (string, error) {
	switch encoding {
	case config.EncodingQuoted:
		return strconv.Quote(string(data)), nil
	case config.EncodingBase64:
		return strconv.Quote(base64.StdEncoding.EncodeToString(data)), nil
	case config.EncodingZstd:
		compressed, err := compress(data)
		if err != nil {
			return "", err
		}
		return strconv.Quote(base64.StdEncoding.EncodeToString(compressed)), nil
	default:
		return "", fmt.Errorf("unknown encoding %q", encoding)
	}
}

// compress produces a single zstd frame. One encoder goroutine keeps the
// output stable across runs.
func compress(data []byte) ([]byte, error) {
	encoder, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.SpeedBestCompression),
		zstd.WithEncoderConcurrency(1),
		zstd.WithZeroFrames(true),
	)
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	defer encoder.Close()

	return encoder.EncodeAll(data, make([]byte, 0, len(data)/2)), nil
}

func decompress(data []byte) ([]byte, error) {
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	defer decoder.Close()

	out, err := decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress: %w", err)
	}
	return out, nil
}
