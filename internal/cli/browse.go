package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/blockversemc/modfeed/pkg/feed"
)

var listDimStyle = lipgloss.NewStyle().Foreground(colorDim)

// browseCommand creates the browse command.
func (c *CLI) browseCommand() *cobra.Command {
	var (
		list    string
		loader  string
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Explore the feed in an interactive table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			builder, closeCache, err := c.newBuilder(ctx, builderOptions{list: list})
			if err != nil {
				return err
			}
			defer closeCache()

			spinner := newSpinnerWithContext(ctx, "Building feed...")
			spinner.Start()
			res, err := builder.Build(ctx, refresh)
			spinner.Stop()
			if err != nil {
				return err
			}

			model := NewFeedModel(res.Records)
			model.setLoader(loader)
			final, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
			if err != nil {
				return err
			}
			if m, ok := final.(FeedModel); ok && m.Selected != nil {
				fmt.Fprintln(c.out, m.Selected.Link)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&list, "list", "", "mod list URL or file (default from config)")
	cmd.Flags().StringVar(&loader, "loader", "", "start filtered to this loader")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass cached feed and API responses")

	return cmd
}

// =============================================================================
// FeedModel - Interactive feed browser
// =============================================================================

// FeedModel is the bubbletea model for browsing feed records.
//
// Keys: up/down (or k/j) move, tab cycles the loader filter, enter selects a
// record and quits, q quits.
type FeedModel struct {
	All      []feed.Record
	Visible  []feed.Record
	Loaders  []string // "" first, meaning all loaders
	Filter   int
	Cursor   int
	Offset   int
	Height   int
	Selected *feed.Record
}

// NewFeedModel creates a browser over records.
func NewFeedModel(records []feed.Record) FeedModel {
	m := FeedModel{
		All:     records,
		Visible: records,
		Loaders: append([]string{""}, feed.Loaders(records)...),
		Height:  15,
	}
	return m
}

func (m *FeedModel) setLoader(loader string) {
	loader = strings.ToLower(loader)
	for i, l := range m.Loaders {
		if l == loader {
			m.applyFilter(i)
			return
		}
	}
}

func (m *FeedModel) applyFilter(i int) {
	m.Filter = i
	m.Visible = feed.FilterLoader(m.All, m.Loaders[i])
	m.Cursor = 0
	m.Offset = 0
}

func (m FeedModel) Init() tea.Cmd {
	return nil
}

func (m FeedModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Visible)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "tab":
			m.applyFilter((m.Filter + 1) % len(m.Loaders))
		case "shift+tab":
			m.applyFilter((m.Filter + len(m.Loaders) - 1) % len(m.Loaders))
		case "enter":
			if len(m.Visible) == 0 {
				return m, nil
			}
			r := m.Visible[m.Cursor]
			m.Selected = &r
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
	}
	return m, nil
}

func (m FeedModel) View() string {
	var b strings.Builder

	loader := m.Loaders[m.Filter]
	if loader == "" {
		loader = "all loaders"
	}
	b.WriteString(StyleTitle.Render("Mod feed"))
	b.WriteString("  ")
	b.WriteString(loaderStyle(m.Loaders[m.Filter]).Render(loader))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  tab loader  ⏎ print link  q quit"))
	b.WriteString("\n\n")

	if len(m.Visible) == 0 {
		b.WriteString(StyleWarning.Render("No records"))
		b.WriteString("\n")
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.Visible))
	b.WriteString(renderRecordTable(m.Visible[m.Offset:end], m.Cursor-m.Offset))
	b.WriteString("\n")

	current := m.Visible[m.Cursor]
	b.WriteString(StyleLink.Render(current.Link))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Visible))))

	return b.String()
}
