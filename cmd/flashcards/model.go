package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sky-flux/flashcards/kana"
	"github.com/sky-flux/flashcards/review"
)

type keyMap struct {
	Submit key.Binding
	Undo   key.Binding
	Quit   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "answer / next"),
		),
		Undo: key.NewBinding(
			key.WithKeys("backspace"),
			key.WithHelp("backspace", "undo"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "esc"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

// model drives one review.Session in the terminal.
type model struct {
	session *review.Session
	keys    keyMap
	input   textinput.Model

	current  *review.Presentation
	verdict  *review.Judgement // last judgement of current; nil while waiting.
	typed    string            // answer submitted for verdict.
	message  string
	finished bool
	err      error
}

func newModel(s *review.Session) model {
	in := textinput.New()
	in.Placeholder = "answer"
	in.Prompt = "> "
	in.CharLimit = 200
	in.Focus()

	m := model{session: s, keys: defaultKeyMap(), input: in}
	m.advance()
	return m
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(keyMsg, m.keys.Quit):
		return m, tea.Quit
	case m.finished:
		return m, tea.Quit
	case m.verdict != nil:
		return m.updateJudged(keyMsg)
	case key.Matches(keyMsg, m.keys.Submit):
		m.answer()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(keyMsg)
	if m.current != nil && m.current.KanaInput() {
		if v := kana.ToKana(m.input.Value()); v != m.input.Value() {
			m.input.SetValue(v)
			m.input.CursorEnd()
		}
	}
	return m, cmd
}

// updateJudged handles keys while a judgement is shown.
func (m model) updateJudged(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Undo):
		if err := m.session.Undo(); err != nil {
			m.message = err.Error()
			return m, nil
		}
		m.verdict = nil
		m.message = ""
		m.input.SetValue(m.typed)
		m.input.CursorEnd()
	case key.Matches(msg, m.keys.Submit):
		m.advance()
		if m.finished {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *model) answer() {
	typed := strings.TrimSpace(m.input.Value())
	if typed == "" {
		return
	}
	if m.current.KanaInput() && strings.HasSuffix(typed, "n") {
		typed = strings.TrimSuffix(typed, "n") + "ん"
	}
	j, err := m.session.Answer(typed)
	if err != nil {
		m.message = err.Error()
		return
	}
	m.message = j.Message
	if j.SubmitErr != nil {
		m.err = j.SubmitErr
	}
	if j.State == review.Waiting {
		return
	}
	m.verdict = &j
	m.typed = typed
	m.input.SetValue("")
}

func (m *model) advance() {
	p, err := m.session.Next()
	switch {
	case errors.Is(err, review.ErrFinished):
		m.finished = true
		m.current = nil
	case err != nil:
		m.message = err.Error()
		return
	default:
		m.current = p
	}
	m.verdict = nil
	m.typed = ""
	m.message = ""
	m.input.SetValue("")
}

func (m model) View() string {
	if m.finished {
		return headerStyle.Render("Session complete.") + "\n"
	}
	var b strings.Builder
	done, total := m.session.Progress()
	fmt.Fprintf(&b, "%s\n\n", headerStyle.Render(fmt.Sprintf("%d / %d", done, total)))

	c := m.current.Card()
	b.WriteString(frontStyle.Render(c.Front))
	b.WriteString("\n")
	if c.Prompt != "" {
		b.WriteString(promptStyle.Render(c.Prompt))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if m.verdict == nil {
		b.WriteString(m.input.View())
		b.WriteString("\n")
	} else {
		style, label := incorrectStyle, "✗ "+m.typed
		if m.verdict.State == review.Correct {
			style, label = correctStyle, "✓ "+m.typed
		}
		b.WriteString(style.Render(label))
		b.WriteString("\n")
		if m.verdict.State == review.Incorrect || len(c.Synonyms) > 0 {
			fmt.Fprintf(&b, "answer: %s\n", strings.Join(c.Answers(), ", "))
		}
		if m.verdict.Audio != nil {
			fmt.Fprintf(&b, "audio: %s\n", m.verdict.Audio.URL)
		}
		if m.verdict.ShowNotes && c.Notes != "" {
			b.WriteString(notesStyle.Render(c.Notes))
			b.WriteString("\n")
		}
	}
	if m.message != "" {
		b.WriteString(messageStyle.Render(m.message))
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString(incorrectStyle.Render("saving failed: " + m.err.Error()))
		b.WriteString("\n")
	}

	help := []string{m.keys.Submit.Help().Key + " " + m.keys.Submit.Help().Desc}
	if m.verdict != nil {
		help = append(help, m.keys.Undo.Help().Key+" "+m.keys.Undo.Help().Desc)
	}
	help = append(help, m.keys.Quit.Help().Key+" "+m.keys.Quit.Help().Desc)
	b.WriteString("\n" + helpStyle.Render(strings.Join(help, " • ")))
	return b.String()
}
