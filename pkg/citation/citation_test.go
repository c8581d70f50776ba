package citation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"two citations in order", "See (Smith 2020) and (Lee, 2019)", []string{"(Smith 2020)", "(Lee, 2019)"}},
		{"no year", "Results (see appendix) were mixed (n=12).", []string{}},
		{"duplicates kept", "(Doe 2001) then (Doe 2001)", []string{"(Doe 2001)", "(Doe 2001)"}},
		{"nested parentheses use innermost", "(outer (Kim 2018) text)", []string{"(Kim 2018)"}},
		{"year inside longer run", "(ISBN 978123)", []string{"(ISBN 978123)"}},
		{"empty text", "", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.text)
			raws := make([]string, 0, len(got))
			for _, c := range got {
				raws = append(raws, c.Raw)
			}
			assert.Equal(t, tt.want, raws)
		})
	}
}

func TestFormat(t *testing.T) {
	c := Citation{Raw: "(Smith 2020)"}

	got := Format(c, APA)
	assert.Contains(t, got, "APA")
	assert.Contains(t, got, "(Smith 2020)")

	assert.Equal(t, "MLA style: (Smith 2020)", Format(c, MLA))
	assert.Equal(t, "Chicago style: (Smith 2020)", Format(c, Chicago))
	assert.Equal(t, "(Smith 2020)", Format(c, Style("Harvard")))
}

func TestFormatAll(t *testing.T) {
	got := FormatAll(Extract("(A 1999) (B 2000)"), MLA)
	assert.Equal(t, []string{"MLA style: (A 1999)", "MLA style: (B 2000)"}, got)
}

func TestParseStyle(t *testing.T) {
	style, err := ParseStyle(" chicago ")
	require.NoError(t, err)
	assert.Equal(t, Chicago, style)

	_, err = ParseStyle("ieee")
	assert.Error(t, err)
}
