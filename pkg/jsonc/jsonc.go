// Package jsonc loads JSON documents that allow "//" line comments and
// "/* */" block comments, so human-edited config files can carry
// documentation without failing to parse.
package jsonc

import (
	"encoding/json"
	"fmt"
	"os"
)

// StripComments removes // and /* */ comments from JSONC source, taking
// care not to touch characters inside string literals.
func StripComments(src []byte) []byte {
	out := make([]byte, 0, len(src))
	inString := false
	escaped := false

	for i := 0; i < len(src); i++ {
		c := src[i]

		if inString {
			out = append(out, c)
			if escaped {
				escaped = false
			} else if c == '\\' {
				escaped = true
			} else if c == '"' {
				inString = false
			}
			continue
		}

		if c == '"' {
			inString = true
			out = append(out, c)
			continue
		}

		if c == '/' && i+1 < len(src) {
			switch src[i+1] {
			case '/':
				for i < len(src) && src[i] != '\n' {
					i++
				}
				out = append(out, '\n')
				continue
			case '*':
				i += 2
				for i+1 < len(src) && !(src[i] == '*' && src[i+1] == '/') {
					if src[i] == '\n' {
						out = append(out, '\n')
					}
					i++
				}
				i++ // consume the '/' of '*/'; loop's i++ consumes the rest
				continue
			}
		}

		out = append(out, c)
	}

	return out
}

// Load reads path, strips comments, and unmarshals the result into v.
func Load(path string, v any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return Parse(raw, v)
}

// Parse strips comments from src and unmarshals it into v.
func Parse(src []byte, v any) error {
	stripped := StripComments(src)
	if err := json.Unmarshal(stripped, v); err != nil {
		return fmt.Errorf("parse jsonc: %w", err)
	}
	return nil
}
