package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTreePrefix(t *testing.T) {
	tests := []struct {
		name        string
		institution string
		expected    string
	}{
		{"simple name", "Greenwood School", "GRE"},
		{"lowercase input", "acacia trust", "ACA"},
		{"digits stripped", "4H Club Kenya", "HCL"},
		{"punctuation stripped", "St. Mary's", "STM"},
		{"short after filtering", "A1", "A"},
		{"empty institution", "", "TRE"},
		{"whitespace only", "   ", "TRE"},
		{"non-latin letters", "木材研究所", "TRE"},
		{"exactly three letters", "Oak", "OAK"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TreePrefix(tt.institution))
		})
	}
}

func TestNextTreeID(t *testing.T) {
	tests := []struct {
		name     string
		prefix   string
		existing []string
		expected string
	}{
		{"first tree for institution", "GRE", nil, "GRE001"},
		{"increments highest suffix", "GRE", []string{"GRE001", "GRE003", "GRE005"}, "GRE006"},
		{"ignores ids without digits", "GRE", []string{"GRE", "GREX"}, "GRE001"},
		{"handles wide counters", "TRE", []string{"TRE999"}, "TRE1000"},
		{"mixed suffix lengths", "ACA", []string{"ACA007", "ACA12"}, "ACA013"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NextTreeID(tt.prefix, tt.existing))
		})
	}
}
