package hookio

import (
	"encoding/json"
	"fmt"
	"io"
)

// DecodeStopInput reads and parses a Stop hook payload from r.
func DecodeStopInput(r io.Reader) (StopInput, error) {
	var in StopInput
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return StopInput{}, fmt.Errorf("decode stop input: %w", err)
	}
	return in, nil
}

// DecodePreToolUseInput reads and parses a PreToolUse hook payload from r.
func DecodePreToolUseInput(r io.Reader) (PreToolUseInput, error) {
	var in PreToolUseInput
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return PreToolUseInput{}, fmt.Errorf("decode pretooluse input: %w", err)
	}
	return in, nil
}

// Emit writes v to w as a single JSON line.
func Emit(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	return enc.Encode(v)
}

// EmptyStopOutput is the safe fallback when stdin cannot be parsed: the
// host treats an empty decision as allow/continue.
func EmptyStopOutput() StopOutput {
	return StopOutput{}
}
