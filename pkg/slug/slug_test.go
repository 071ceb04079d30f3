// Copyright (c) 2026 StreamAdvisor. All rights reserved.

package slug_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/streamadvisor/streamadvisor/pkg/slug"
)

/*
TestFrom verifies the slug pipeline across representative inputs.
*/
func TestFrom(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple_title", "Midnight Light", "midnight-light"},
		{"accented", "Café au Lait", "cafe-au-lait"},
		{"punctuation", "The Time: Code!", "the-time-code"},
		{"multiple_spaces", "The   Path  of Dreams", "the-path-of-dreams"},
		{"leading_trailing", "  Frontiers  ", "frontiers"},
		{"numbers", "Area 51", "area-51"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, slug.From(tt.input))
		})
	}
}
