package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/heightcompare/pkg/catalog"
	"github.com/matzehuels/heightcompare/pkg/units"
)

var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
	headerStyle  = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

// newTable returns a rounded table with the shared header style.
func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
}

// =============================================================================
// CharacterListModel - Interactive character picker
// =============================================================================

// CharacterListModel is the bubbletea model behind "browse". Typing filters
// by name, space toggles a character and enter confirms the selection.
type CharacterListModel struct {
	All      []catalog.Character
	Unit     units.DisplayUnit
	Filter   string
	Cursor   int
	Offset   int
	Height   int
	Picked   map[string]bool
	Done     bool
	visible  []catalog.Character
	aborted  bool
	maxPicks int
}

// NewCharacterListModel creates a picker over chars. maxPicks <= 0 means no
// limit.
func NewCharacterListModel(chars []catalog.Character, unit units.DisplayUnit, maxPicks int) CharacterListModel {
	m := CharacterListModel{
		All:      chars,
		Unit:     unit,
		Height:   15,
		Picked:   map[string]bool{},
		maxPicks: maxPicks,
	}
	m.refilter()
	return m
}

// Selection returns the picked characters in catalog order, or nil if the
// picker was aborted.
func (m CharacterListModel) Selection() []catalog.Character {
	if m.aborted || !m.Done {
		return nil
	}
	var out []catalog.Character
	for _, c := range m.All {
		if m.Picked[c.ID] {
			out = append(out, c)
		}
	}
	return out
}

func (m *CharacterListModel) refilter() {
	m.visible = catalog.Filter(m.All, catalog.Query{Text: m.Filter})
	m.Cursor = 0
	m.Offset = 0
}

func (m CharacterListModel) Init() tea.Cmd {
	return nil
}

func (m CharacterListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.aborted = true
			return m, tea.Quit
		case tea.KeyEnter:
			if len(m.Picked) == 0 && len(m.visible) > 0 {
				m.Picked[m.visible[m.Cursor].ID] = true
			}
			m.Done = true
			return m, tea.Quit
		case tea.KeyUp:
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case tea.KeyDown:
			if m.Cursor < len(m.visible)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case tea.KeySpace:
			if len(m.visible) == 0 {
				break
			}
			id := m.visible[m.Cursor].ID
			switch {
			case m.Picked[id]:
				delete(m.Picked, id)
			case m.maxPicks <= 0 || len(m.Picked) < m.maxPicks:
				m.Picked[id] = true
			}
		case tea.KeyBackspace:
			if m.Filter != "" {
				r := []rune(m.Filter)
				m.Filter = string(r[:len(r)-1])
				m.refilter()
			}
		case tea.KeyRunes:
			m.Filter += string(msg.Runes)
			m.refilter()
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
	}
	return m, nil
}

func (m CharacterListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Add Characters"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("type to filter  ↑/↓ navigate  space pick  ⏎ add  esc quit"))
	b.WriteString("\n")
	b.WriteString(StyleHighlight.Render("filter: ") + StyleValue.Render(m.Filter) + listDimStyle.Render("▏"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.visible))

	rows := make([][]string, 0, end-m.Offset)
	for i := m.Offset; i < end; i++ {
		c := m.visible[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		mark := " "
		if m.Picked[c.ID] {
			mark = iconSuccess
		}
		rows = append(rows, []string{cursor + mark, c.Name, units.FormatHeight(c.Height, m.Unit), c.Category, c.Gender})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Name", "Height", "Category", "Gender").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.Offset + row
			if idx >= len(m.visible) {
				return lipgloss.NewStyle()
			}
			base := lipgloss.NewStyle()
			if col >= 3 {
				base = base.Foreground(colorDim)
			}
			switch {
			case idx == m.Cursor:
				return base.Foreground(colorCyan).Bold(true)
			case m.Picked[m.visible[idx].ID]:
				return base.Foreground(colorGreen)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	pos := 0
	if len(m.visible) > 0 {
		pos = m.Cursor + 1
	}
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]  %d picked", pos, len(m.visible), len(m.Picked))))

	return b.String()
}
