package dashboard

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"

	"github.com/sentinel-sim/sentinel/internal/models"
	"github.com/sentinel-sim/sentinel/internal/output"
)

// Hex equivalents of the ANSI 256 colors in styles.go
const (
	colorPrimary   = "#FF87D7" // 212
	colorSecondary = "#AF87FF" // 141
	colorSuccess   = "#00D787" // 42
	colorWarning   = "#FFAF00" // 214
	colorMuted     = "#626262" // 241
	colorCyan      = "#00D7FF" // 45
	colorWhite     = "#EEEEEE" // 255
	colorBg        = "#3A3A3A" // 237
)

func ptrString(s string) *string { return &s }

func ptrBool(b bool) *bool { return &b }

func uintPtr(u uint) *uint { return &u }

// buildGlamourStyle is the markdown style for modal content and the intro
func buildGlamourStyle() ansi.StyleConfig {
	return ansi.StyleConfig{
		Document: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{Color: ptrString(colorWhite)},
			Margin:         uintPtr(0),
		},
		BlockQuote: ansi.StyleBlock{
			Indent:      uintPtr(1),
			IndentToken: ptrString("│ "),
			StylePrimitive: ansi.StylePrimitive{
				Color:  ptrString(colorMuted),
				Italic: ptrBool(true),
			},
		},
		List: ansi.StyleList{LevelIndent: 2},
		Heading: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{
				Color:       ptrString(colorWhite),
				Bold:        ptrBool(true),
				BlockSuffix: "\n",
			},
		},
		H1: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{
				Prefix:          " ",
				Suffix:          " ",
				Color:           ptrString(colorWhite),
				BackgroundColor: ptrString(colorPrimary),
				Bold:            ptrBool(true),
			},
		},
		H2: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{
				Prefix: "## ",
				Color:  ptrString(colorPrimary),
				Bold:   ptrBool(true),
			},
		},
		H3: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{
				Prefix: "### ",
				Color:  ptrString(colorSecondary),
				Bold:   ptrBool(true),
			},
		},
		Emph:   ansi.StylePrimitive{Italic: ptrBool(true)},
		Strong: ansi.StylePrimitive{Bold: ptrBool(true)},
		HorizontalRule: ansi.StylePrimitive{
			Color:  ptrString(colorMuted),
			Format: "\n────────\n",
		},
		Item:        ansi.StylePrimitive{BlockPrefix: "• "},
		Enumeration: ansi.StylePrimitive{BlockPrefix: ". "},
		Task: ansi.StyleTask{
			Ticked:   "[✓] ",
			Unticked: "[ ] ",
		},
		Link: ansi.StylePrimitive{
			Color:     ptrString(colorCyan),
			Underline: ptrBool(true),
		},
		LinkText: ansi.StylePrimitive{
			Color: ptrString(colorPrimary),
			Bold:  ptrBool(true),
		},
		Code: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{
				Color:           ptrString(colorWarning),
				BackgroundColor: ptrString(colorBg),
				Prefix:          " ",
				Suffix:          " ",
			},
		},
		CodeBlock: ansi.StyleCodeBlock{
			StyleBlock: ansi.StyleBlock{
				StylePrimitive: ansi.StylePrimitive{Color: ptrString(colorSuccess)},
				Margin:         uintPtr(0),
			},
		},
		Table: ansi.StyleTable{
			CenterSeparator: ptrString("┼"),
			ColumnSeparator: ptrString("│"),
			RowSeparator:    ptrString("─"),
		},
	}
}

func getGlamourOptions(width int) []glamour.TermRendererOption {
	return []glamour.TermRendererOption{
		glamour.WithStyles(buildGlamourStyle()),
		glamour.WithWordWrap(width),
	}
}

// renderMarkdown renders text once; on failure the raw text is returned
func renderMarkdown(text string, width int) string {
	if text == "" {
		return ""
	}
	renderer, err := glamour.NewTermRenderer(getGlamourOptions(width)...)
	if err != nil {
		return text
	}
	rendered, err := renderer.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(rendered, "\n\r\t ")
}

// renderMarkdownAsync renders in the background; key identifies the target
func renderMarkdownAsync(key, text string, width int) tea.Cmd {
	return func() tea.Msg {
		return MarkdownRenderedMsg{Key: key, Rendered: renderMarkdown(text, width)}
	}
}

// reportMarkdown is the report modal body for a campaign
func reportMarkdown(c models.Campaign, users []models.User) string {
	return output.CampaignMarkdown(c, users)
}

// onboardingMarkdown is the intro page body
func onboardingMarkdown(p OnboardingPage) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n%s\n", p.Title, p.Description)
	if len(p.Features) > 0 {
		sb.WriteString("\n")
		for _, f := range p.Features {
			fmt.Fprintf(&sb, "- [x] %s\n", f)
		}
	}
	return sb.String()
}
