package tui

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	errors "github.com/Laisky/errors/v2"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Laisky/word-association/internal/web/lwow/model"
	"github.com/Laisky/word-association/internal/web/lwow/service"
	"github.com/Laisky/word-association/library/assoc"
)

const requestTimeout = 10 * time.Second

// ViewState represents the current view state of the TUI
type ViewState int

const (
	// ViewLetter asks for the favorite letter
	ViewLetter ViewState = iota
	// ViewWords collects the 26 words of a round
	ViewWords
	// ViewSubmitting waits for the server
	ViewSubmitting
	// ViewRoundResult shows the AI answers of the last round
	ViewRoundResult
	// ViewFinished shows the whole game
	ViewFinished
)

// Game is the part of the game service the TUI drives.
type Game interface {
	StartGame(ctx context.Context, in *service.StartGameInput) (*model.Session, error)
	SubmitRound(ctx context.Context, id string, in *service.RoundInput) (*model.Session, error)
}

// sessionMsg carries the result of a StartGame or SubmitRound call
type sessionMsg struct {
	sess *model.Session
	err  error
}

// Model is the main TUI model following the Bubble Tea architecture
type Model struct {
	game  Game
	state ViewState

	input   textinput.Model
	words   []string
	session *model.Session
	// letters are the shuffled prompts of the first round
	letters []string

	spinner spinner.Model
	err     error

	width  int
	height int

	quitting bool
}

// keyMap defines the key bindings for the TUI
type keyMap struct {
	Enter key.Binding
	Undo  key.Binding
	Quit  key.Binding
	Abort key.Binding
}

var keys = keyMap{
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "confirm"),
	),
	Undo: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "drop last word"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q"),
		key.WithHelp("q", "quit"),
	),
	Abort: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "quit"),
	),
}

// NewModel creates a TUI model playing against game
func NewModel(game Game) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = GetProgressStyle()

	return Model{
		game:    game,
		state:   ViewLetter,
		input:   newInput("a", 1),
		spinner: sp,
	}
}

func newInput(placeholder string, limit int) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = limit
	in.Width = 30
	in.Prompt = "› "
	in.PromptStyle = GetInputLabelStyle()
	in.Focus()
	return in
}

// Init initializes the TUI model
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Abort) {
			m.quitting = true
			return m, tea.Quit
		}

		switch m.state {
		case ViewLetter:
			return m.handleLetter(msg)
		case ViewWords:
			return m.handleWords(msg)
		case ViewRoundResult:
			return m.handleRoundResult(msg)
		case ViewFinished:
			if key.Matches(msg, keys.Quit, keys.Enter) {
				m.quitting = true
				return m, tea.Quit
			}
		case ViewSubmitting:
			// Don't handle input while submitting
		}
		return m, nil

	case spinner.TickMsg:
		if m.state == ViewSubmitting {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case sessionMsg:
		return m.handleSession(msg)
	}

	return m, nil
}

func (m Model) handleLetter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !key.Matches(msg, keys.Enter) {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	letter := strings.TrimSpace(m.input.Value())
	if letter == "" {
		m.err = errors.New("please enter a letter")
		return m, nil
	}

	m.err = nil
	m.state = ViewSubmitting
	game := m.game
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		sess, err := game.StartGame(ctx, &service.StartGameInput{FavoriteLetter: letter})
		return sessionMsg{sess: sess, err: err}
	})
}

func (m Model) handleWords(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Undo):
		if len(m.words) > 0 {
			m.words = m.words[:len(m.words)-1]
		}
		return m, nil

	case key.Matches(msg, keys.Enter):
		word := strings.TrimSpace(m.input.Value())
		if word == "" {
			m.err = errors.Errorf("word %d cannot be empty", len(m.words)+1)
			return m, nil
		}

		m.err = nil
		m.words = append(m.words, word)
		m.input.Reset()
		if len(m.words) < assoc.ResponseCount {
			return m, nil
		}

		m.state = ViewSubmitting
		game, id, words := m.game, m.session.ID, append([]string(nil), m.words...)
		return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			defer cancel()
			sess, err := game.SubmitRound(ctx, id, &service.RoundInput{Words: words})
			return sessionMsg{sess: sess, err: err}
		})
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleRoundResult(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, keys.Enter):
		m.state = ViewWords
		m.words = nil
		m.input = newInput("word", 64)
	}

	return m, nil
}

func (m Model) handleSession(msg sessionMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.err = msg.err
		// retry from where the request was sent
		if m.session == nil {
			m.state = ViewLetter
		} else {
			m.state = ViewWords
			if len(m.words) > 0 {
				m.words = m.words[:len(m.words)-1]
			}
		}
		return m, nil
	}

	m.err = nil
	first := m.session == nil
	m.session = msg.sess
	switch {
	case msg.sess.Finished:
		m.state = ViewFinished
	case first:
		m.state = ViewWords
		m.words = nil
		m.letters = shuffledAlphabet()
		m.input = newInput("word", 64)
	default:
		m.state = ViewRoundResult
	}

	return m, nil
}

// View renders the TUI
func (m Model) View() string {
	if m.quitting {
		return GetSubtitleStyle().Render("Goodbye! 👋\n")
	}

	var body string
	switch m.state {
	case ViewLetter:
		body = m.renderLetter()
	case ViewWords:
		body = m.renderWords()
	case ViewSubmitting:
		body = m.spinner.View() + " Thinking..."
	case ViewRoundResult:
		body = m.renderRoundResult()
	case ViewFinished:
		body = m.renderFinished()
	default:
		body = "Unknown state"
	}

	if m.err != nil {
		body = lipgloss.JoinVertical(lipgloss.Left, body, "", GetErrorStyle().Render("❌ "+m.err.Error()))
	}

	return GetBoxStyle().Render(body)
}

func (m Model) renderLetter() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		GetHeaderStyle().Render("Word Association"),
		GetInputLabelStyle().Render("What is your favorite letter?"),
		m.input.View(),
		GetHelpStyle().Render("enter: start • ctrl+c: quit"),
	)
}

func (m Model) renderWords() string {
	title := fmt.Sprintf("Round %d of %d", m.session.Round, m.session.TotalRounds)

	// the first round answers letters, later rounds answer the AI's words
	cues := m.letters
	if len(m.session.LastAIWords) == assoc.ResponseCount {
		cues = m.session.LastAIWords
	}

	label := fmt.Sprintf("Word %d/%d", len(m.words)+1, assoc.ResponseCount)
	if idx := len(m.words); cues != nil && idx < len(cues) {
		label += " • respond to " + aiWordStyle.Render(cues[idx])
	}

	recent := m.words
	if len(recent) > 5 {
		recent = recent[len(recent)-5:]
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		GetHeaderStyle().Render(title),
		GetSubtitleStyle().Render(strings.Join(recent, " · ")),
		GetInputLabelStyle().Render(label),
		m.input.View(),
		GetHelpStyle().Render("enter: next word • esc: drop last word • ctrl+c: quit"),
	)
}

func (m Model) renderRoundResult() string {
	last := m.session.History[len(m.session.History)-1]
	return lipgloss.JoinVertical(lipgloss.Left,
		GetHeaderStyle().Render(fmt.Sprintf("Round %d answers", last.RoundNumber)),
		renderPairs(last),
		GetHelpStyle().Render("enter: next round • q: quit"),
	)
}

func (m Model) renderFinished() string {
	var sb strings.Builder
	for _, r := range m.session.History {
		sb.WriteString(GetInputLabelStyle().Render(fmt.Sprintf("Round %d", r.RoundNumber)) + "\n")
		sb.WriteString(renderPairs(r) + "\n")
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		GetHeaderStyle().Render("Game over"),
		sb.String(),
		GetHelpStyle().Render("enter/q: quit"),
	)
}

// renderPairs lays out user words next to the AI answers.
func renderPairs(r model.Round) string {
	lines := make([]string, 0, len(r.UserWords))
	for i, w := range r.UserWords {
		line := userWordStyle.Render(fmt.Sprintf("%2d. %-16s", i+1, w))
		if i < len(r.AIWords) {
			line += " → " + aiWordStyle.Render(r.AIWords[i])
		}
		lines = append(lines, line)
	}

	return strings.Join(lines, "\n")
}

func shuffledAlphabet() []string {
	letters := strings.Split("ABCDEFGHIJKLMNOPQRSTUVWXYZ", "")
	rand.Shuffle(len(letters), func(i, j int) {
		letters[i], letters[j] = letters[j], letters[i]
	})
	return letters
}
