package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vvka-141/cnxpopulate/pkg/cnx"
)

// abstractPreview is the number of runes of the abstract shown in summaries.
const abstractPreview = 200

// RenderMetadata renders a boxed summary of md and files for the terminal.
// files may be nil.
func RenderMetadata(md *cnx.Metadata, files *cnx.FileList) string {
	var rows []string
	row := func(label, value string) {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, LabelStyle.Render(label), value))
	}

	row("Collection", md.ModuleID+" "+MutedStyle.Render("v"+md.Version))
	row("Title", md.Name)
	row("Language", md.Language)
	row("License", licenseLine(md.License))
	row("Authors", listLine(md.Authors))
	row("Maintainers", listLine(md.Maintainers))
	row("Licensors", listLine(md.Licensors))
	if text := strings.TrimSpace(md.Abstract.String()); text != "" {
		row("Abstract", preview(text))
	}

	body := strings.Join(rows, "\n")
	if files != nil && files.Len() > 0 {
		var lines []string
		for _, f := range files.All() {
			lines = append(lines, fmt.Sprintf("%s %s %s", SymbolBullet, f.Filename,
				MutedStyle.Render(fmt.Sprintf("(%s, %d bytes)", orDash(f.MimeType), f.Size()))))
		}
		body += "\n\n" + TitleStyle.Render(fmt.Sprintf("Files (%d)", files.Len())) + "\n" + strings.Join(lines, "\n")
	}
	return BoxStyle.Render(body)
}

func licenseLine(l *cnx.License) string {
	if l == nil {
		return WarningStyle.Render("unregistered")
	}
	return fmt.Sprintf("%s %s", l.String(), MutedStyle.Render(l.URL))
}

func listLine(values []string) string {
	if len(values) == 0 {
		return MutedStyle.Render("-")
	}
	return strings.Join(values, ", ")
}

func preview(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	r := []rune(text)
	if len(r) <= abstractPreview {
		return text
	}
	return string(r[:abstractPreview]) + "…"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
