package styles

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"
)

func TestRenderSection(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)

	tests := []struct {
		name           string
		content        []string
		title          string
		hint           string
		width          int
		wantContains   []string
		wantNotContain []string
	}{
		{
			name:         "title only",
			content:      []string{"SEX  Sex"},
			title:        "Usage of variables",
			width:        40,
			wantContains: []string{"╭─ Usage of variables", "│SEX  Sex", "╰"},
		},
		{
			name:         "title and hint",
			content:      []string{"DE"},
			title:        "Participation of Countries",
			hint:         "3 dataflows",
			width:        50,
			wantContains: []string{"(3 dataflows)", "│DE"},
		},
		{
			name:           "no title",
			content:        []string{"x"},
			width:          10,
			wantContains:   []string{"╭────────╮", "╰────────╯"},
			wantNotContain: []string{"╭─ "},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RenderSection(tt.content, tt.title, tt.hint, tt.width, false)
			for _, want := range tt.wantContains {
				require.Contains(t, got, want)
			}
			for _, not := range tt.wantNotContain {
				require.NotContains(t, got, not)
			}
		})
	}
}

func TestRenderSection_LinesHaveUniformWidth(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)

	got := RenderSection([]string{"short", strings.Repeat("w", 60)}, "Detail", "", 30, true)
	for _, line := range strings.Split(got, "\n") {
		require.Equal(t, 30, lipgloss.Width(line), "line %q", line)
	}
	require.Contains(t, got, "…")
}
