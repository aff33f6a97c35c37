package l1ions

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/composition.report/internal/apt"
)

func TestResolveSelection(t *testing.T) {
	tests := []struct {
		name    string
		tokens  []string
		size    int
		want    []SpeciesID
		wantErr bool
	}{
		{name: "single", tokens: []string{"1"}, size: 3, want: []SpeciesID{0}},
		{name: "space separated", tokens: []string{"3 1"}, size: 3, want: []SpeciesID{2, 0}},
		{name: "mixed tokens", tokens: []string{"2", " 3  1 "}, size: 3, want: []SpeciesID{1, 2, 0}},
		{name: "duplicates collapse", tokens: []string{"2 2", "2"}, size: 3, want: []SpeciesID{1}},
		{name: "non numeric", tokens: []string{"abc"}, size: 3, wantErr: true},
		{name: "zero", tokens: []string{"0"}, size: 3, wantErr: true},
		{name: "past catalog", tokens: []string{"4"}, size: 3, wantErr: true},
		{name: "negative", tokens: []string{"-1"}, size: 3, wantErr: true},
		{name: "empty", tokens: []string{"  "}, size: 3, wantErr: true},
		{name: "empty catalog", tokens: []string{"1"}, size: 0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveSelection(tt.tokens, tt.size)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, apt.ErrInvalidInput), "want invalid input, got %v", err)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSelectionMask(t *testing.T) {
	mask := SelectionMask([]SpeciesID{0, 2, 7}, 3)
	assert.Equal(t, []bool{true, false, true}, mask)
}
