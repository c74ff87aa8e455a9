package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/deskgrid/pkg/desktop"
	"github.com/matzehuels/deskgrid/pkg/layout"
)

var (
	browseDimStyle  = lipgloss.NewStyle().Foreground(colorDim)
	browseDotStyle  = lipgloss.NewStyle().Foreground(colorDim)
	browseDotActive = lipgloss.NewStyle().Foreground(colorCyan)
)

// browseCommand creates the "browse" command.
func (c *CLI) browseCommand() *cobra.Command {
	var noCache bool

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Page through the layout interactively",
		Long:  `Page through the layout interactively with the arrow keys.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			labels, err := c.newLabeler(ctx, noCache)
			if err != nil {
				return err
			}
			defer labels.close()

			return c.withEngine(ctx, func(eng *desktop.Engine) error {
				m := NewPageBrowserModel(eng.Snapshot(), eng.CurrentPage(), labels.label)
				_, err := tea.NewProgram(m, tea.WithContext(ctx)).Run()
				return err
			})
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "do not look up display labels")
	return cmd
}

// =============================================================================
// PageBrowserModel - Interactive page browser
// =============================================================================

// PageBrowserModel is the bubbletea model of the page browser.
type PageBrowserModel struct {
	Snapshot *layout.Snapshot
	Page     int

	label func(layout.Item) string
}

// NewPageBrowserModel opens the browser on page.
func NewPageBrowserModel(s *layout.Snapshot, page int, label func(layout.Item) string) PageBrowserModel {
	if label == nil {
		label = shortName
	}
	return PageBrowserModel{
		Snapshot: s,
		Page:     max(0, min(page, s.PageCount-1)),
		label:    label,
	}
}

func (m PageBrowserModel) Init() tea.Cmd {
	return nil
}

func (m PageBrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "left", "h":
			if m.Page > 0 {
				m.Page--
			}
		case "right", "l":
			if m.Page < m.Snapshot.PageCount-1 {
				m.Page++
			}
		case "home", "g":
			m.Page = 0
		case "end", "G":
			m.Page = m.Snapshot.PageCount - 1
		}
	}
	return m, nil
}

func (m PageBrowserModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(fmt.Sprintf("Page %d/%d", m.Page+1, m.Snapshot.PageCount)))
	b.WriteString("\n")
	b.WriteString(browseDimStyle.Render("←/→ page  g/G first/last  q quit"))
	b.WriteString("\n\n")
	b.WriteString(renderPage(m.Snapshot, m.Page, m.label))
	b.WriteString("\n")
	b.WriteString(m.dots())
	b.WriteString("\n")
	return b.String()
}

// dots draws the page indicator below the grid.
func (m PageBrowserModel) dots() string {
	dots := make([]string, m.Snapshot.PageCount)
	for i := range dots {
		if i == m.Page {
			dots[i] = browseDotActive.Render("●")
		} else {
			dots[i] = browseDotStyle.Render("○")
		}
	}
	return "  " + strings.Join(dots, " ")
}
