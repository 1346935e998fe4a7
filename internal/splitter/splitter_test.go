package splitter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []string
	}{
		{name: "empty", in: "", want: nil},
		{name: "whitespace only", in: " \n\t ", want: nil},
		{name: "no terminal punctuation", in: "  Matter has mass  ", want: []string{"Matter has mass"}},
		{
			name: "two sentences",
			in:   "Matter is anything that occupies space. It has mass.",
			want: []string{"Matter is anything that occupies space.", "It has mass."},
		},
		{
			name: "all terminal marks",
			in:   "Is it solid? Yes! It is ice.",
			want: []string{"Is it solid?", "Yes!", "It is ice."},
		},
		{
			name: "newlines count as whitespace",
			in:   "Water boils.\nSteam rises.\n\n",
			want: []string{"Water boils.", "Steam rises."},
		},
		{
			name: "repeated marks stay attached",
			in:   "Really?! Wait... Go on.",
			want: []string{"Really?!", "Wait...", "Go on."},
		},
		{
			name: "closing quote stays with sentence",
			in:   `The teacher said "Heat expands metals." Then the class smiled.`,
			want: []string{`The teacher said "Heat expands metals."`, "Then the class smiled."},
		},
		{
			name: "decimal without space is not a boundary",
			in:   "Water is 1.5 times denser here. Ok.",
			want: []string{"Water is 1.5 times denser here.", "Ok."},
		},
		{
			name: "abbreviation is mis-split",
			in:   "Use e.g. water. Done.",
			want: []string{"Use e.g.", "water.", "Done."},
		},
		{
			name: "trailing text without mark",
			in:   "Plants need light. Animals need food",
			want: []string{"Plants need light.", "Animals need food"},
		},
		{
			name: "non ascii text",
			in:   "पाणी वाहते. It flows!",
			want: []string{"पाणी वाहते.", "It flows!"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Split(tc.in))
		})
	}
}

func TestSplit_Deterministic(t *testing.T) {
	in := "Light travels fast. Sound is slower! Why? Because of the medium."
	first := Split(in)
	for i := 0; i < 10; i++ {
		require.Equal(t, first, Split(in))
	}
}

func TestSplit_PiecesAreTrimmedAndNonEmpty(t *testing.T) {
	for _, s := range Split("  A.   B!  \n C?  ") {
		require.NotEmpty(t, s)
		require.Equal(t, strings.TrimSpace(s), s)
	}
}

