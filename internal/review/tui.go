// Package review is the interactive terminal UI for triaging stored
// opportunities: browse the ranked list, inspect details, and move each
// opportunity through its status lifecycle.
package review

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/oppscout/oppscout/internal/model"
)

// Lines per opportunity item in the list view (title + subtitle + blank
// separator).
const itemHeight = 3

type viewState int

const (
	viewList viewState = iota
	viewDetail
)

// statusCycle is the order the f key walks the status filter through.
// Empty string means no filter.
var statusCycle = []string{
	"",
	model.StatusNew,
	model.StatusInterested,
	model.StatusApplied,
	model.StatusRejected,
	model.StatusArchived,
}

var (
	borderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("39"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Foreground(lipgloss.Color("39"))

	statusBarStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))

	itemTitleStyle = lipgloss.NewStyle().
			Bold(true)

	itemSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245"))

	selectedTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("24"))

	selectedSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252")).
				Background(lipgloss.Color("24"))

	detailLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				Width(14)

	detailValueStyle = lipgloss.NewStyle()

	detailTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				MarginBottom(1)

	dividerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Italic(true)

	bodyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	scoreHighStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42"))

	scoreLowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))
)

// statusUpdatedMsg is sent when an async status write completes.
type statusUpdatedMsg struct {
	hash   string
	status string
	err    error
}

type reviewModel struct {
	store        model.OpportunityStore
	opps         []model.Opportunity
	listViewport viewport.Model
	cursor       int
	width        int
	height       int
	filterIdx    int
	ready        bool
	statusError  string

	view           viewState
	detailViewport viewport.Model
	showRationale  bool
}

func (m reviewModel) Init() tea.Cmd {
	return nil
}

func (m reviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalcLayout()
		if m.view == viewDetail {
			m.detailViewport.Width = m.width - 4
			m.detailViewport.Height = m.height - 4
			m.detailViewport.SetContent(m.renderDetail())
		}
		return m, nil

	case statusUpdatedMsg:
		if msg.err != nil {
			m.statusError = fmt.Sprintf("status update failed: %v", msg.err)
		} else {
			m.statusError = ""
			m.applyStatus(msg.hash, msg.status)
		}
		m.recalcContent()
		if m.view == viewDetail {
			m.detailViewport.SetContent(m.renderDetail())
		}
		return m, nil

	case tea.KeyMsg:
		if m.view == viewDetail {
			return m.updateDetailView(msg)
		}
		return m.updateListView(msg)
	}

	return m, nil
}

func (m reviewModel) updateListView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		m.moveCursor(-1)
		m.recalcContent()
		m.ensureCursorVisible()
		return m, nil
	case "down", "j":
		m.moveCursor(1)
		m.recalcContent()
		m.ensureCursorVisible()
		return m, nil
	case "f":
		return m.cycleFilter()
	case "enter":
		return m.openDetailView()
	case "i", "a", "x", "z", "n":
		return m.setStatusKey(msg.String())
	}

	var cmd tea.Cmd
	m.listViewport, cmd = m.listViewport.Update(msg)
	return m, cmd
}

func (m reviewModel) updateDetailView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc", "backspace":
		m.view = viewList
		m.recalcContent()
		return m, nil
	case "o":
		if cur, ok := m.current(); ok && cur.Posting.URL != "" {
			openURL(cur.Posting.URL)
		}
		return m, nil
	case "r":
		if cur, ok := m.current(); ok && cur.Score.Rationale != "" {
			m.showRationale = !m.showRationale
			m.detailViewport.SetContent(m.renderDetail())
			m.detailViewport.SetYOffset(0)
		}
		return m, nil
	case "i", "a", "x", "z", "n":
		return m.setStatusKey(msg.String())
	}

	var cmd tea.Cmd
	m.detailViewport, cmd = m.detailViewport.Update(msg)
	return m, cmd
}

// keyStatus maps a triage key to the status it assigns.
var keyStatus = map[string]string{
	"i": model.StatusInterested,
	"a": model.StatusApplied,
	"x": model.StatusRejected,
	"z": model.StatusArchived,
	"n": model.StatusNew,
}

func (m reviewModel) setStatusKey(key string) (tea.Model, tea.Cmd) {
	cur, ok := m.current()
	if !ok {
		return m, nil
	}
	status := keyStatus[key]
	if cur.Status == status {
		return m, nil
	}
	return m, m.updateStatusCmd(cur.Hash, status)
}

func (m reviewModel) updateStatusCmd(hash, status string) tea.Cmd {
	store := m.store
	return func() tea.Msg {
		err := store.UpdateStatus(hash, status)
		return statusUpdatedMsg{hash: hash, status: status, err: err}
	}
}

func (m *reviewModel) applyStatus(hash, status string) {
	for i := range m.opps {
		if m.opps[i].Hash == hash {
			m.opps[i].Status = status
			return
		}
	}
}

func (m reviewModel) cycleFilter() (tea.Model, tea.Cmd) {
	m.filterIdx = (m.filterIdx + 1) % len(statusCycle)

	opps, err := m.store.ListRecent(0, statusCycle[m.filterIdx])
	if err != nil {
		m.statusError = fmt.Sprintf("reload failed: %v", err)
		return m, nil
	}
	m.statusError = ""
	m.opps = opps
	m.cursor = 0
	m.recalcContent()
	m.listViewport.SetYOffset(0)
	return m, nil
}

func (m *reviewModel) moveCursor(delta int) {
	m.cursor = clamp(m.cursor+delta, 0, max(len(m.opps)-1, 0))
}

func (m *reviewModel) ensureCursorVisible() {
	cursorTop := m.cursor * itemHeight
	cursorBottom := cursorTop + itemHeight - 1

	if cursorTop < m.listViewport.YOffset {
		m.listViewport.SetYOffset(cursorTop)
	} else if cursorBottom >= m.listViewport.YOffset+m.listViewport.Height {
		m.listViewport.SetYOffset(cursorBottom - m.listViewport.Height + 1)
	}
}

func (m reviewModel) openDetailView() (tea.Model, tea.Cmd) {
	if len(m.opps) == 0 {
		return m, nil
	}
	m.view = viewDetail
	m.showRationale = false
	m.detailViewport = viewport.New(m.width-4, m.height-4)
	m.detailViewport.SetContent(m.renderDetail())
	return m, nil
}

func (m reviewModel) current() (model.Opportunity, bool) {
	if len(m.opps) == 0 || m.cursor >= len(m.opps) {
		return model.Opportunity{}, false
	}
	return m.opps[m.cursor], true
}

func (m *reviewModel) recalcLayout() {
	paneWidth := max(m.width-2, 20)
	// Header (1) + border top/bottom (2) + status bar (1).
	paneHeight := max(m.height-4, 5)

	if !m.ready {
		m.listViewport = viewport.New(paneWidth, paneHeight)
		m.ready = true
	} else {
		m.listViewport.Width = paneWidth
		m.listViewport.Height = paneHeight
	}

	m.recalcContent()
}

func (m *reviewModel) recalcContent() {
	m.listViewport.SetContent(renderOpportunities(m.opps, m.cursor))
}

func (m reviewModel) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.view == viewDetail {
		return m.viewDetail()
	}
	return m.viewList()
}

func filterLabel(status string) string {
	if status == "" {
		return "all"
	}
	return status
}

func (m reviewModel) viewList() string {
	header := headerStyle.Render(fmt.Sprintf(" Opportunities (%d) · filter: %s",
		len(m.opps), filterLabel(statusCycle[m.filterIdx])))

	pane := borderStyle.Width(m.listViewport.Width).Render(m.listViewport.View())

	statusText := " ↑/↓ cursor  Enter detail  f filter  i/a/x/z/n status  q quit"
	if m.statusError != "" {
		statusText = " " + m.statusError
	}
	statusBar := statusBarStyle.Width(m.width).Render(statusText)

	return header + "\n" + pane + "\n" + statusBar
}

func (m reviewModel) viewDetail() string {
	title := detailTitleStyle.Render("Opportunity")

	content := borderStyle.Width(m.width - 2).Render(m.detailViewport.View())

	statusText := " o open URL  i/a/x/z/n status  esc back  ↑/↓ scroll  q quit"
	if cur, ok := m.current(); ok && cur.Score.Rationale != "" {
		statusText = " o open URL  r rationale  i/a/x/z/n status  esc back  ↑/↓ scroll  q quit"
	}
	if m.statusError != "" {
		statusText = " " + m.statusError
	}
	statusBar := statusBarStyle.Width(m.width).Render(statusText)

	return title + "\n" + content + "\n" + statusBar
}

func (m reviewModel) renderDetail() string {
	cur, ok := m.current()
	if !ok {
		return "  (nothing selected)"
	}

	var b strings.Builder
	addField := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(detailLabelStyle.Render(label))
		b.WriteString(detailValueStyle.Render(value))
		b.WriteByte('\n')
	}

	addField("Title", cur.Posting.Title)
	addField("Company", cur.Posting.Company)
	addField("Location", cur.Posting.Location)
	addField("Source", cur.Posting.Source)
	addField("Status", cur.Status)

	b.WriteByte('\n')

	scoreLine := fmt.Sprintf("%d / 100  (base %d, location %+d, company %+d)",
		cur.Score.Final, cur.Score.Base, cur.Score.LocationAdj, cur.Score.CompanyAdj)
	if cur.Score.Fallback {
		scoreLine += "  · neutral fallback"
	}
	addField("Score", scoreLine)

	if !cur.CreatedAt.IsZero() {
		addField("First Seen", cur.CreatedAt.Format("2006-01-02 15:04"))
	}

	b.WriteByte('\n')
	addField("URL", cur.Posting.URL)

	if len(cur.Contacts) > 0 {
		b.WriteByte('\n')
		b.WriteString(divider("── Contacts ", m.wrapWidth()) + "\n\n")
		for _, c := range cur.Contacts {
			line := "  • " + c.Name
			if c.ProfileURL != "" {
				line += "  " + c.ProfileURL
			}
			b.WriteString(detailValueStyle.Render(line) + "\n")
		}
	}

	if cur.Score.Rationale != "" {
		b.WriteByte('\n')
		if m.showRationale {
			b.WriteString(divider("── Score Rationale ", m.wrapWidth()) + "\n\n")
			b.WriteString(bodyStyle.Render(wordWrap(cur.Score.Rationale, m.wrapWidth())) + "\n")
		} else {
			b.WriteString(hintStyle.Render("  press r to read the score rationale") + "\n")
		}
	}

	if m.statusError != "" {
		b.WriteByte('\n')
		b.WriteString(errorStyle.Render("⚠ "+m.statusError) + "\n")
	}

	return b.String()
}

func (m reviewModel) wrapWidth() int {
	return max(m.width-8, 20)
}

func divider(label string, width int) string {
	fill := strings.Repeat("─", max(width-len(label), 3))
	return dividerStyle.Render(label + fill)
}

func renderOpportunities(opps []model.Opportunity, cursor int) string {
	if len(opps) == 0 {
		return "  (no opportunities)"
	}

	var b strings.Builder
	for i, o := range opps {
		isSelected := i == cursor

		titleSt := itemTitleStyle
		subtitleSt := itemSubtitleStyle
		prefix := "  "
		if isSelected {
			titleSt = selectedTitleStyle
			subtitleSt = selectedSubtitleStyle
			prefix = "> "
		}

		scoreSt := scoreLowStyle
		if o.Score.Final >= 70 {
			scoreSt = scoreHighStyle
		}

		b.WriteString(prefix)
		b.WriteString(scoreSt.Render(fmt.Sprintf("[%3d]", o.Score.Final)))
		b.WriteString(" ")
		b.WriteString(titleSt.Render(o.Posting.Title))
		b.WriteByte('\n')

		b.WriteString(prefix)
		b.WriteString(subtitleSt.Render(fmt.Sprintf("%s · %s · %s",
			o.Posting.Company, o.Posting.Location, o.Status)))
		b.WriteByte('\n')

		if i < len(opps)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func wordWrap(text string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) <= width {
			line += " " + w
		} else {
			lines = append(lines, line)
			line = w
		}
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// openURL opens url in the default system browser, fire-and-forget.
func openURL(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return
	}
	_ = cmd.Start()
}

// Run launches the interactive review TUI over the given store. The initial
// list is everything stored, newest first.
func Run(store model.OpportunityStore) error {
	opps, err := store.ListRecent(0, "")
	if err != nil {
		return fmt.Errorf("load opportunities: %w", err)
	}

	m := reviewModel{
		store: store,
		opps:  opps,
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
