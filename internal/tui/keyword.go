package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// KeywordEcho echoes whatever is typed. It never touches the network.
type KeywordEcho struct {
	input textinput.Model
}

func NewKeywordEcho() *KeywordEcho {
	ti := textinput.New()
	ti.Placeholder = "Type a keyword"
	ti.Prompt = "> "
	ti.CharLimit = 0
	return &KeywordEcho{input: ti}
}

func (k *KeywordEcho) Init() tea.Cmd { return nil }

func (k *KeywordEcho) Update(msg tea.Msg) (Unit, tea.Cmd) {
	var cmd tea.Cmd
	k.input, cmd = k.input.Update(msg)
	return k, cmd
}

func (k *KeywordEcho) View() string {
	return titleStyle.Render(k.Title()) + "\n" +
		k.input.View() + "\n\n" +
		"Keyword: " + k.input.Value()
}

// Value is the current keyword.
func (k *KeywordEcho) Value() string { return k.input.Value() }

func (k *KeywordEcho) Title() string        { return "Keyword" }
func (k *KeywordEcho) Focus() tea.Cmd       { return k.input.Focus() }
func (k *KeywordEcho) Blur()                { k.input.Blur() }
func (k *KeywordEcho) CapturesText() bool   { return true }
func (k *KeywordEcho) SetSize(width, _ int) { k.input.Width = max(10, width-4) }
func (k *KeywordEcho) Unmount()             {}
