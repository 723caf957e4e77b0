// Package tui is the terminal front end for playing rounds.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/danielpatrickdp/adaptive-guess/internal/game"
)

// statsShown is how many items and questions the stats panel lists.
const statsShown = 5

type sessionState int

const (
	statePlaying sessionState = iota
	stateReveal
	stateDone
	stateError
)

type model struct {
	state     sessionState
	engine    *game.Engine
	round     *game.Round
	prompt    game.Prompt
	textInput textinput.Model
	history   []string
	showStats bool
	stats     string
	outcome   string
	err       error
}

var (
	questionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Bold(true)

	answerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EEEEEE")).
			Background(lipgloss.Color("#5F5F87")).
			PaddingLeft(1).
			PaddingRight(1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#AAAAAA"))

	statsStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("#3C3C3C")).
			PaddingLeft(2).
			Foreground(lipgloss.Color("#AAAAAA"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500")).
			Bold(true).
			Underline(true)
)

// NewModel starts a round on eng.
func NewModel(eng *game.Engine) (tea.Model, error) {
	ti := textinput.New()
	ti.Placeholder = "Name it..."
	ti.CharLimit = 64
	ti.Width = 40

	m := model{engine: eng, textInput: ti}
	if err := m.restart(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m model) Init() tea.Cmd {
	return nil
}

// #region update
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		if m.state == stateReveal {
			var cmd tea.Cmd
			m.textInput, cmd = m.textInput.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	switch key.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.round.Abandon()
		return m, tea.Quit
	}

	if m.state == stateReveal {
		if key.Type != tea.KeyEnter {
			var cmd tea.Cmd
			m.textInput, cmd = m.textInput.Update(msg)
			return m, cmd
		}
		name := strings.TrimSpace(m.textInput.Value())
		if name == "" {
			return m, nil
		}
		m.textInput.Reset()
		m.textInput.Blur()
		m.history = append(m.history, answerStyle.Render("It was "+name))
		out, err := m.round.Reveal(name)
		return m.settled(out, err), nil
	}

	switch key.String() {
	case "q":
		m.round.Abandon()
		return m, tea.Quit
	case "r":
		m.round.Abandon()
		if err := m.restart(); err != nil {
			m.err, m.state = err, stateError
		}
		return m, nil
	case "s":
		m.showStats = !m.showStats
		if m.showStats {
			m.stats = m.renderStats()
		}
		return m, nil
	case "y", "n":
		if m.state == statePlaying {
			return m.answer(key.String() == "y"), nil
		}
	}
	return m, nil
}

func (m model) answer(yes bool) model {
	reply := "No"
	if yes {
		reply = "Yes"
	}
	m.history = append(m.history, questionStyle.Render(m.prompt.Text)+" "+answerStyle.Render(reply))

	switch m.prompt.Kind {
	case game.PromptQuestion:
		if _, err := m.round.Answer(yes); err != nil {
			m.err, m.state = err, stateError
			return m
		}
	case game.PromptGuess, game.PromptFinal:
		out, err := m.round.Confirm(yes)
		return m.settled(out, err)
	}
	return m.advance()
}

func (m model) settled(out game.Outcome, err error) model {
	if err != nil {
		m.err, m.state = err, stateError
		return m
	}
	if !out.Done {
		return m.advance()
	}
	switch out.Result {
	case game.ResultGuessed:
		m.outcome = fmt.Sprintf("Got it: %s, in %d questions.", out.Actual.Name, m.round.State().QuestionsAsked)
	case game.ResultRevealed:
		m.outcome = fmt.Sprintf("%s. I'll remember that.", out.Actual.Name)
	case game.ResultUnknown:
		m.outcome = "I don't know that one."
	}
	m.state = stateDone
	if m.showStats {
		m.stats = m.renderStats()
	}
	return m
}

func (m model) advance() model {
	m.prompt = m.round.Next()
	switch m.prompt.Kind {
	case game.PromptReveal:
		m.state = stateReveal
		m.textInput.Focus()
	case game.PromptDone:
		m.state = stateDone
	default:
		m.state = statePlaying
	}
	return m
}

func (m *model) restart() error {
	r, err := m.engine.NewRound()
	if err != nil {
		return err
	}
	m.round = r
	m.history = nil
	m.outcome = ""
	m.err = nil
	*m = m.advance()
	return nil
}

// #endregion update

// #region view
func (m model) View() string {
	var s string
	switch m.state {
	case stateError:
		return fmt.Sprintf("\n  Error: %v\n\nPress Esc to quit.\n", m.err)
	case statePlaying:
		s = m.renderPlaying()
	case stateReveal:
		s = lipgloss.JoinVertical(lipgloss.Left,
			m.renderHistory(),
			questionStyle.Render(m.prompt.Text),
			m.textInput.View(),
			helpStyle.Render("enter: submit  esc: quit"),
		)
	case stateDone:
		s = lipgloss.JoinVertical(lipgloss.Left,
			m.renderHistory(),
			titleStyle.Render(m.outcome),
			helpStyle.Render("r: play again  s: stats  q: quit"),
		)
	}
	if m.showStats {
		s = lipgloss.JoinHorizontal(lipgloss.Top, s, statsStyle.Render(m.stats))
	}
	return "\n" + s + "\n"
}

func (m model) renderPlaying() string {
	p := m.prompt
	status := statusStyle.Render(fmt.Sprintf("Question %d/%d, %d candidates left", p.Asked+1, p.MaxAsked, p.Remaining))
	lines := []string{m.renderHistory(), status, questionStyle.Render(p.Text)}
	if p.Kind == game.PromptQuestion && len(p.Candidates) > 0 {
		var names []string
		for _, it := range p.Candidates {
			names = append(names, it.Name)
		}
		lines = append(lines, statusStyle.Render("Narrowing down: "+strings.Join(names, ", ")))
	}
	if p.Kind == game.PromptFinal && len(p.Candidates) > 1 {
		var names []string
		for _, it := range p.Candidates[1:] {
			names = append(names, it.Name)
		}
		lines = append(lines, statusStyle.Render("Other possibilities: "+strings.Join(names, ", ")))
	}
	lines = append(lines, helpStyle.Render("y: yes  n: no  s: stats  r: restart  q: quit"))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m model) renderHistory() string {
	return strings.Join(m.history, "\n")
}

func (m model) renderStats() string {
	st, err := m.engine.Stats(statsShown)
	if err != nil {
		return "stats unavailable: " + err.Error()
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("POPULARITY") + "\n")
	fmt.Fprintf(&b, "%d items, avg %.3f, max %.3f\n", st.Popularity.Total, st.Popularity.Avg, st.Popularity.Max)
	for _, it := range st.Popularity.Top {
		fmt.Fprintf(&b, "%-12s %.3f\n", it.Name, it.Popularity)
	}
	b.WriteString("\n" + titleStyle.Render("QUESTIONS") + "\n")
	if len(st.Effectiveness.Top) == 0 {
		b.WriteString("(none yet)\n")
	}
	for _, r := range st.Effectiveness.Top {
		fmt.Fprintf(&b, "%-24s %.2f (%d)\n", r.Key, r.AvgReduction, r.Count)
	}
	return b.String()
}

// #endregion view

// Run plays rounds until the player quits.
func Run(eng *game.Engine) error {
	m, err := NewModel(eng)
	if err != nil {
		return err
	}
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
