// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"fmt"
	"strings"
)

// ValidateUnit validates an EmbeddableUnit before it is sent for embedding.
//
// Validation rules:
//   - ID must not be empty
//   - Text must contain something other than whitespace
//   - Metadata must be flat (see ValidateMetadata)
func ValidateUnit(unit EmbeddableUnit) error {
	if unit.ID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidUnit, ErrEmptyID)
	}
	if strings.TrimSpace(unit.Text) == "" {
		return fmt.Errorf("%w: %s: %w", ErrInvalidUnit, unit.ID, ErrEmptyText)
	}
	if err := ValidateMetadata(unit.Metadata); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidUnit, unit.ID, err)
	}
	return nil
}

// ValidateMetadata checks that every value is a string, number, bool or a
// list of strings. Vector stores reject nested objects.
func ValidateMetadata(md map[string]any) error {
	for key, value := range md {
		switch value.(type) {
		case string, bool, int, int64, float32, float64, []string:
		default:
			return fmt.Errorf("%w: key %q has type %T", ErrNestedMetadata, key, value)
		}
	}
	return nil
}
