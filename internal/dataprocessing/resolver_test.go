package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func codesOf(resolved []ResolvedCode) []string {
	out := make([]string, len(resolved))
	for i, r := range resolved {
		out[i] = r.Code
	}
	return out
}

func TestResolveCodes(t *testing.T) {
	tests := []struct {
		name string
		raw  []string
		want []string
	}{
		{
			name: "full codes accepted verbatim",
			raw:  []string{"A.1", "A.1.1", "B.2"},
			want: []string{"A.1", "A.1.1", "B.2"},
		},
		{
			name: "glued letter gets its separator",
			raw:  []string{"B4.3"},
			want: []string{"B.4.3"},
		},
		{
			name: "digits attach to the last section",
			raw:  []string{"B.4", "5", "5.1"},
			want: []string{"B.4", "B.5", "B.5.1"},
		},
		{
			name: "blank rows synthesize under the last full code",
			raw:  []string{"B.4.3", "", ""},
			want: []string{"B.4.3", "B.4.3.u1", "B.4.3.u2"},
		},
		{
			name: "leading rows fall back to section U",
			raw:  []string{"", "3", "A.1"},
			want: []string{"U.u1", "U.3", "A.1"},
		},
		{
			name: "malformed text synthesizes",
			raw:  []string{"A.2", "その他"},
			want: []string{"A.2", "A.2.u1"},
		},
		{
			name: "bare letter is not a full code",
			raw:  []string{"B.1", "A"},
			want: []string{"B.1", "B.1.u1"},
		},
		{
			name: "fullwidth codes are folded first",
			raw:  []string{"Ｂ．４", "Ｂ４.３"},
			want: []string{"B.4", "B.4.3"},
		},
		{
			name: "synthesized counters are scoped per parent",
			raw:  []string{"A.1", "", "A.2", "", ""},
			want: []string{"A.1", "A.1.u1", "A.2", "A.2.u1", "A.2.u2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveCodes(tt.raw)
			assert.Equal(t, tt.want, codesOf(got))
		})
	}
}

func TestResolveCodes_Deterministic(t *testing.T) {
	raw := []string{"A.1", "", "B2.1", "3", "", "その他", "C.1"}

	first := ResolveCodes(raw)
	second := ResolveCodes(raw)

	assert.Equal(t, first, second)
}

func TestResolveCodes_DisplayCode(t *testing.T) {
	got := ResolveCodes([]string{"B4.3", "", "メモ"})
	require.Len(t, got, 3)

	assert.Equal(t, "B4.3", got[0].DisplayCode, "rewritten codes keep the raw text")
	assert.False(t, got[0].Synthesized)

	assert.Empty(t, got[1].DisplayCode, "blank rows have no raw text to keep")
	assert.True(t, got[1].Synthesized)

	assert.Equal(t, "メモ", got[2].DisplayCode)
	assert.True(t, got[2].Synthesized)
}

func TestIsSyntheticSegment(t *testing.T) {
	assert.True(t, IsSyntheticSegment("u1"))
	assert.True(t, IsSyntheticSegment("u42"))
	assert.False(t, IsSyntheticSegment("u"))
	assert.False(t, IsSyntheticSegment("ux"))
	assert.False(t, IsSyntheticSegment("1"))
	assert.False(t, IsSyntheticSegment("U1"))
}
