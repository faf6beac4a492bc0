package emit

import (
	"encoding/base64"
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"strconv"

	"github.com/yaklabco/assetpack/pkg/config"
	"github.com/yaklabco/assetpack/pkg/pack"
)

var (
	// ErrNotGenerated is returned by Parse when the source does not start
	// with the assetpack header line.
	ErrNotGenerated = errors.New("not an assetpack generated file")

	// ErrMalformed is returned by Parse when a generated declaration is
	// missing or has an unexpected shape.
	ErrMalformed = errors.New("malformed generated file")
)

// Parse recovers the bundle and header from source produced by Generate.
func Parse(src []byte) (*pack.Bundle, *Header, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "", src, parser.ParseComments)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	if len(file.Comments) == 0 || file.Comments[0].List[0].Text != HeaderLine {
		return nil, nil, ErrNotGenerated
	}

	header := &Header{
		Package:  file.Name.Name,
		Encoding: config.EncodingQuoted,
	}
	for _, spec := range file.Imports {
		if path, _ := strconv.Unquote(spec.Path.Value); path == zstdImport {
			header.Encoding = config.EncodingZstd
		}
	}

	var (
		data     []byte
		index    map[string]pack.Range
		haveData bool
	)

	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.GenDecl:
			if d.Tok != token.VAR {
				continue
			}
			for _, s := range d.Specs {
				spec, ok := s.(*ast.ValueSpec)
				if !ok || len(spec.Names) != 1 || len(spec.Values) != 1 {
					continue
				}
				switch spec.Names[0].Name {
				case dataVar:
					data, err = parseData(spec.Values[0], header)
					if err != nil {
						return nil, nil, err
					}
					haveData = true
				case indexVar:
					index, err = parseIndex(spec.Values[0])
					if err != nil {
						return nil, nil, err
					}
				}
			}
		case *ast.FuncDecl:
			if d.Recv == nil && isLookupFunc(d) {
				header.FuncName = d.Name.Name
			}
		}
	}

	switch {
	case !haveData:
		return nil, nil, fmt.Errorf("%w: no %s declaration", ErrMalformed, dataVar)
	case index == nil:
		return nil, nil, fmt.Errorf("%w: no %s declaration", ErrMalformed, indexVar)
	case header.FuncName == "":
		return nil, nil, fmt.Errorf("%w: no lookup function", ErrMalformed)
	}

	bundle := &pack.Bundle{Data: data, Index: index}
	if err := bundle.Validate(); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return bundle, header, nil
}

// parseData decodes the buffer initializer: either []byte("...") or
// mustDecodeAssets("...").
func parseData(expr ast.Expr, header *Header) ([]byte, error) {
	call, ok := expr.(*ast.CallExpr)
	if !ok || len(call.Args) != 1 {
		return nil, fmt.Errorf("%w: %s is not a conversion or decode call", ErrMalformed, dataVar)
	}

	literal, err := stringLiteral(call.Args[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformed, dataVar, err)
	}

	switch fun := call.Fun.(type) {
	case *ast.ArrayType:
		header.Encoding = config.EncodingQuoted
		return []byte(literal), nil
	case *ast.Ident:
		if fun.Name != decodeFunc {
			break
		}
		raw, err := base64.StdEncoding.DecodeString(literal)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrMalformed, dataVar, err)
		}
		if header.Encoding != config.EncodingZstd {
			header.Encoding = config.EncodingBase64
			return raw, nil
		}
		out, err := decompress(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrMalformed, dataVar, err)
		}
		return out, nil
	}

	return nil, fmt.Errorf("%w: unexpected %s initializer", ErrMalformed, dataVar)
}

func parseIndex(expr ast.Expr) (map[string]pack.Range, error) {
	lit, ok := expr.(*ast.CompositeLit)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a map literal", ErrMalformed, indexVar)
	}

	index := make(map[string]pack.Range, len(lit.Elts))
	for _, elt := range lit.Elts {
		kv, ok := elt.(*ast.KeyValueExpr)
		if !ok {
			return nil, fmt.Errorf("%w: %s entry is not key: value", ErrMalformed, indexVar)
		}

		key, err := stringLiteral(kv.Key)
		if err != nil {
			return nil, fmt.Errorf("%w: %s key: %w", ErrMalformed, indexVar, err)
		}

		value, ok := kv.Value.(*ast.CompositeLit)
		if !ok || len(value.Elts) != 2 {
			return nil, fmt.Errorf("%w: %s[%q] is not {begin, end}", ErrMalformed, indexVar, key)
		}
		start, err := intLiteral(value.Elts[0])
		if err != nil {
			return nil, fmt.Errorf("%w: %s[%q]: %w", ErrMalformed, indexVar, key, err)
		}
		end, err := intLiteral(value.Elts[1])
		if err != nil {
			return nil, fmt.Errorf("%w: %s[%q]: %w", ErrMalformed, indexVar, key, err)
		}

		if _, dup := index[key]; dup {
			return nil, fmt.Errorf("%w: %w: %s", ErrMalformed, pack.ErrDuplicatePath, key)
		}
		index[key] = pack.Range{Start: start, End: end}
	}
	return index, nil
}

// isLookupFunc matches func Name(path string) ([]byte, error).
func isLookupFunc(fn *ast.FuncDecl) bool {
	if fn.Name.Name == pathsFunc || fn.Name.Name == decodeFunc {
		return false
	}
	params, results := fn.Type.Params, fn.Type.Results
	if params == nil || len(params.List) != 1 || len(params.List[0].Names) != 1 {
		return false
	}
	if ident, ok := params.List[0].Type.(*ast.Ident); !ok || ident.Name != "string" {
		return false
	}
	return results != nil && len(results.List) == 2
}

func stringLiteral(expr ast.Expr) (string, error) {
	lit, ok := expr.(*ast.BasicLit)
	if !ok || lit.Kind != token.STRING {
		return "", errors.New("expected string literal")
	}
	return strconv.Unquote(lit.Value)
}

func intLiteral(expr ast.Expr) (int, error) {
	lit, ok := expr.(*ast.BasicLit)
	if !ok || lit.Kind != token.INT {
		return 0, errors.New("expected integer literal")
	}
	return strconv.Atoi(lit.Value)
}
