// Copyright (c) 2026 Folio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package schema

import (
	"fmt"
	"strings"
)

// ValidationError collects every violated field so callers can render them
// together instead of failing on the first one.
type ValidationError struct {
	Fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, "; ")
}

// ValidateEntryData checks an entry's data bag against a collection schema.
// Required fields are only enforced when the entry is (or is becoming)
// published; drafts may be incomplete. Returns nil when valid.
func ValidateEntryData(c Collection, data map[string]any, status string) *ValidationError {
	var errs []string

	publishing := status == "published"

	for _, f := range c.Fields {
		v, present := data[f.Name]
		if !present || isEmpty(v) {
			if f.Required && publishing {
				errs = append(errs, fmt.Sprintf("%s: required field is missing", f.Name))
			}
			continue
		}
		if msg := checkType(f, v); msg != "" {
			errs = append(errs, msg)
		}
	}

	// Fields outside the schema pass through untouched: the data bag is
	// loosely typed and only declared fields are checked.

	if len(errs) == 0 {
		return nil
	}
	return &ValidationError{Fields: errs}
}

// isEmpty reports whether a present value still counts as missing for the
// required-field check.
func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []any:
		return len(t) == 0
	default:
		return false
	}
}

func checkType(f Field, v any) string {
	switch f.Type {
	case TypeString, TypeText:
		if _, ok := v.(string); !ok {
			return fmt.Sprintf("%s: expected a string", f.Name)
		}
	case TypeNumber:
		switch v.(type) {
		case float64, int, int64:
		default:
			return fmt.Sprintf("%s: expected a number", f.Name)
		}
	case TypeBool:
		if _, ok := v.(bool); !ok {
			return fmt.Sprintf("%s: expected a boolean", f.Name)
		}
	case TypeMedia:
		if _, ok := v.(string); !ok {
			return fmt.Sprintf("%s: expected a media id", f.Name)
		}
	case TypeList, TypeMediaList, TypeCategoryList:
		items, ok := v.([]any)
		if !ok {
			return fmt.Sprintf("%s: expected a list", f.Name)
		}
		for i, item := range items {
			if _, ok := item.(string); !ok {
				return fmt.Sprintf("%s[%d]: expected a string", f.Name, i)
			}
		}
	case TypeBlocks:
		items, ok := v.([]any)
		if !ok {
			return fmt.Sprintf("%s: expected a list of blocks", f.Name)
		}
		for i, item := range items {
			block, ok := item.(map[string]any)
			if !ok {
				return fmt.Sprintf("%s[%d]: expected a block object", f.Name, i)
			}
			if _, ok := block["type"].(string); !ok {
				return fmt.Sprintf("%s[%d]: block is missing a type", f.Name, i)
			}
		}
	case TypeObject:
		if _, ok := v.(map[string]any); !ok {
			return fmt.Sprintf("%s: expected an object", f.Name)
		}
	}
	return ""
}
