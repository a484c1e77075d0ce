package usecase

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"solclone/internal/entity"
	"solclone/internal/pkg/apperrors"
)

// defaultSourceName is used when a flat payload carries no contract name.
const defaultSourceName = "Contract"

// Normalize parses one getsourcecode response body into a canonical, ordered
// set of source files plus the metadata the explorer asserted about them.
//
// The explorer returns the SourceCode field in one of several historical
// shapes: a flat source string, a JSON document with a "sources" object
// (compiler standard input), or a bare {path: {content}} map. Standard-input
// payloads are additionally wrapped in an extra brace pair ("{{ ... }}") by
// some explorer versions. Which shape applies is decided by a trial parse;
// anything that does not parse as a nested document is treated as flat source.
func Normalize(body []byte) (*entity.ContractSource, error) {
	var envelope entity.ExplorerEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrMalformedEnvelope, err)
	}

	var entries []entity.ContractEntry
	if err := json.Unmarshal(envelope.Result, &entries); err != nil {
		return nil, fmt.Errorf("%w: result is not an array: %v", apperrors.ErrMalformedEnvelope, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: result array is empty", apperrors.ErrEmptySource)
	}

	entry := entries[0]
	if entry.SourceCode == "" {
		return nil, fmt.Errorf("%w: contract may not be verified", apperrors.ErrEmptySource)
	}

	files, err := normalizeSourceCode(entry.SourceCode, entry.ContractName)
	if err != nil {
		return nil, err
	}

	for i, f := range files {
		clean, err := sanitizePath(f.RelativePath)
		if err != nil {
			return nil, err
		}
		files[i].RelativePath = clean
	}

	return &entity.ContractSource{
		ContractName:    entry.ContractName,
		CompilerVersion: entry.CompilerVersion,
		LicenseType:     entry.LicenseType,
		Proxy:           entry.Proxy == "1",
		Implementation:  entry.Implementation,
		Files:           files,
	}, nil
}

func normalizeSourceCode(sourceCode, contractName string) ([]entity.SourceFile, error) {
	trimmed := strings.TrimSpace(sourceCode)
	if !strings.HasPrefix(trimmed, "{") {
		return []entity.SourceFile{flatFile(sourceCode, contractName)}, nil
	}

	// Standard-input payloads arrive double-braced on some explorer versions;
	// strip one layer before the nested parse.
	if strings.HasPrefix(trimmed, "{{") && strings.HasSuffix(trimmed, "}}") {
		trimmed = trimmed[1 : len(trimmed)-1]
	}

	files, ok := parseSourceMap([]byte(trimmed))
	if !ok {
		// Not a recognizable nested document, so the braces belong to the
		// source text itself.
		return []entity.SourceFile{flatFile(sourceCode, contractName)}, nil
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: nested source map has no entries", apperrors.ErrEmptySource)
	}
	return files, nil
}

func flatFile(sourceCode, contractName string) entity.SourceFile {
	name := contractName
	if name == "" {
		name = defaultSourceName
	}
	return entity.SourceFile{RelativePath: name + ".sol", Contents: sourceCode}
}

// sourceContent is one value of the {path: {content}} map.
type sourceContent struct {
	Content string `json:"content"`
}

// parseSourceMap extracts (path, contents) pairs from the embedded document,
// preserving the document's key enumeration order. It accepts both a compiler
// standard-input document (whose "sources" member holds the map) and a bare
// map. Returns ok=false when the bytes are not such a document.
func parseSourceMap(data []byte) ([]entity.SourceFile, bool) {
	pairs, ok := decodeOrderedObject(data)
	if !ok {
		return nil, false
	}

	// Standard input: {"language": ..., "sources": {...}, "settings": ...}.
	for _, p := range pairs {
		if p.key == "sources" {
			inner, ok := decodeOrderedObject(p.value)
			if !ok {
				return nil, false
			}
			pairs = inner
			break
		}
	}

	files := make([]entity.SourceFile, 0, len(pairs))
	for _, p := range pairs {
		var sc sourceContent
		if err := json.Unmarshal(p.value, &sc); err != nil {
			return nil, false
		}
		files = append(files, entity.SourceFile{RelativePath: p.key, Contents: sc.Content})
	}
	return files, true
}

type orderedMember struct {
	key   string
	value json.RawMessage
}

// decodeOrderedObject walks a JSON object token by token so that member order
// is preserved. encoding/json maps would lose it, and output determinism
// depends on emitting files in the payload's enumeration order.
func decodeOrderedObject(data []byte) ([]orderedMember, bool) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, false
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, false
	}

	var members []orderedMember
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, false
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, false
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, false
		}
		members = append(members, orderedMember{key: key, value: value})
	}
	if _, err := dec.Token(); err != nil {
		return nil, false
	}
	return members, true
}

// sanitizePath cleans a payload-supplied relative path and rejects anything
// that would resolve outside the destination project root. The payload comes
// from an external API and must be treated as hostile.
func sanitizePath(p string) (string, error) {
	slashed := strings.ReplaceAll(p, "\\", "/")
	clean := path.Clean(slashed)
	if clean == "." || clean == "" {
		return "", &apperrors.UnsafePathError{Path: p}
	}
	if path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", &apperrors.UnsafePathError{Path: p}
	}
	return clean, nil
}
