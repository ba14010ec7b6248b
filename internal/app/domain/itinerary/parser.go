package itinerary

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/FACorreiaa/triply/internal/app/models"
)

const opParse = "itinerary.ParseResponse"

// ParseResponse extracts the itinerary object from free-form model output.
// Models often wrap the JSON in markdown fences or chatter, so every
// balanced {...} span is tried in order and the first one that decodes as an
// object is used.
func ParseResponse(raw string) (*models.Itinerary, error) {
	obj, ok := firstJSONObject(raw)
	if !ok {
		return nil, models.NewError(models.KindMalformedResponse, opParse, models.ErrMalformedResponse.Err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(obj, &fields); err != nil {
		return nil, models.NewError(models.KindMalformedResponse, opParse, err)
	}
	days, ok := fields["days"]
	if !ok || !isJSONArray(days) {
		return nil, models.Errorf(models.KindInvalidStructure, opParse, "missing days array")
	}

	var it models.Itinerary
	if err := json.Unmarshal(obj, &it); err != nil {
		return nil, models.NewError(models.KindMalformedResponse, opParse, fmt.Errorf("decode itinerary: %w", err))
	}
	return &it, nil
}

func isJSONArray(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}

// firstJSONObject returns the first balanced {...} span of raw that is a
// valid JSON object.
func firstJSONObject(raw string) ([]byte, bool) {
	for start := strings.IndexByte(raw, '{'); start >= 0; {
		if end, ok := matchBrace(raw, start); ok {
			candidate := []byte(raw[start : end+1])
			if json.Valid(candidate) {
				return candidate, true
			}
		}
		next := strings.IndexByte(raw[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return nil, false
}

// matchBrace finds the brace closing the one at start, skipping braces inside
// string literals.
func matchBrace(s string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}
