package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"codeward/cmd/chat/ui/tui/styles"
	"codeward/cmd/chat/ui/types"
)

// maxToolOutputLines bounds how much of a tool result the card shows.
// The model still sees the full output; this is display only.
const maxToolOutputLines = 12

// Transcript renders the conversation as a list of cards inside a
// scrollable viewport. Streaming text is buffered by BufferDelta and
// only hits the open stream card on FlushPending, so the caller
// controls the re-render cadence. Cards always land after whatever has
// streamed so far: AppendCard flushes the buffer and closes the open
// stream region first, which keeps the on-screen order equal to the
// publish order.
type Transcript struct {
	viewport viewport.Model
	theme    *styles.Theme
	cards    []types.Card
	pending  strings.Builder
	markdown bool
	renderer *glamour.TermRenderer
	width    int
	height   int
}

func NewTranscript(theme *styles.Theme, markdown bool) *Transcript {
	vp := viewport.New(80, 20)
	vp.MouseWheelEnabled = true
	vp.KeyMap = viewport.DefaultKeyMap()

	t := &Transcript{
		viewport: vp,
		theme:    theme,
		markdown: markdown,
		width:    80,
		height:   20,
	}
	t.rebuildRenderer()
	return t
}

func (c *Transcript) Init() tea.Cmd {
	return nil
}

// Update handles viewport scrolling.
func (c *Transcript) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	c.viewport, cmd = c.viewport.Update(msg)
	return cmd
}

func (c *Transcript) View() string {
	return c.viewport.View()
}

// BufferDelta queues streamed assistant text. Nothing is rendered
// until the next FlushPending.
func (c *Transcript) BufferDelta(text string) {
	c.pending.WriteString(text)
}

// FlushPending moves buffered deltas into the open stream card,
// opening one when none is active.
func (c *Transcript) FlushPending() {
	if c.pending.Len() == 0 {
		return
	}
	text := c.pending.String()
	c.pending.Reset()

	if i := c.openStreamIndex(); i >= 0 {
		c.cards[i].Text += text
	} else {
		c.cards = append(c.cards, types.Card{
			Kind: types.CardStream,
			When: time.Now(),
			Text: text,
			Open: true,
		})
	}
	c.refresh()
}

// AppendCard adds a non-stream card. Buffered deltas are flushed and
// the open stream region is closed first, so a delta arriving after
// this card starts a fresh stream card below it.
func (c *Transcript) AppendCard(card types.Card) {
	c.FlushPending()
	c.closeOpenStream(false)
	if card.When.IsZero() {
		card.When = time.Now()
	}
	c.cards = append(c.cards, card)
	c.refresh()
}

// Finalize flushes and closes the open stream card, rendering it
// through glamour when markdown is on. Returns false when no stream
// card was open, which makes a stray stream_end harmless.
func (c *Transcript) Finalize() bool {
	c.FlushPending()
	return c.closeOpenStream(true)
}

// Reset drops every card and any buffered text.
func (c *Transcript) Reset() {
	c.cards = nil
	c.pending.Reset()
	c.refresh()
}

func (c *Transcript) Cards() []types.Card {
	return c.cards
}

func (c *Transcript) SetSize(width, height int) {
	c.width = width
	c.height = height
	c.viewport.Width = width
	c.viewport.Height = height
	c.rebuildRenderer()
	c.refresh()
}

func (c *Transcript) openStreamIndex() int {
	for i := len(c.cards) - 1; i >= 0; i-- {
		if c.cards[i].Kind == types.CardStream {
			if c.cards[i].Open {
				return i
			}
			return -1
		}
	}
	return -1
}

// closeOpenStream marks the active stream card done. render also runs
// it through glamour; mid-turn region breaks skip that because the
// text around a tool card is one logical reply and gets rendered piece
// by piece only at the end of the turn.
func (c *Transcript) closeOpenStream(render bool) bool {
	i := c.openStreamIndex()
	if i < 0 {
		return false
	}
	c.cards[i].Open = false
	if render {
		c.cards[i].Rendered = c.renderMarkdown(c.cards[i].Text)
	}
	c.refresh()
	return true
}

func (c *Transcript) renderMarkdown(text string) string {
	if !c.markdown || c.renderer == nil {
		return ""
	}
	out, err := c.renderer.Render(text)
	if err != nil {
		return ""
	}
	return strings.TrimRight(out, "\n")
}

func (c *Transcript) rebuildRenderer() {
	if !c.markdown {
		return
	}
	wrap := c.width - 4
	if wrap < 20 {
		wrap = 20
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		c.renderer = nil
		return
	}
	c.renderer = renderer
}

// refresh updates the viewport content
func (c *Transcript) refresh() {
	content := c.renderCards()
	c.viewport.SetContent(lipgloss.NewStyle().Width(c.viewport.Width).Render(content))
	c.viewport.GotoBottom()
}

func (c *Transcript) renderCards() string {
	if len(c.cards) == 0 {
		return c.theme.Status.TextStyle.Render("Type a message to start. F2 arms the session; Esc interrupts a running turn.")
	}

	var sb strings.Builder
	for i := range c.cards {
		card := &c.cards[i]
		switch card.Kind {
		case types.CardUser:
			sb.WriteString(c.renderUser(card))
		case types.CardStream:
			sb.WriteString(c.renderStream(card))
		case types.CardTool:
			sb.WriteString(c.renderTool(card))
		case types.CardPlan:
			sb.WriteString(c.renderPlan(card))
		case types.CardDecision:
			sb.WriteString(c.renderDecision(card))
		case types.CardVerify:
			sb.WriteString(c.renderVerify(card))
		case types.CardNotice:
			sb.WriteString(c.renderNotice(card))
		}
	}
	return sb.String()
}

func (c *Transcript) renderUser(card *types.Card) string {
	header := c.theme.User.HeaderStyle.Render("You:")
	body := c.theme.User.BodyStyle.Render(card.Text)

	boxWidth := c.viewport.Width - 4
	if boxWidth < 20 {
		boxWidth = 20
	}

	box := c.theme.User.BoxStyle.Width(boxWidth).Render(header + "\n" + body)
	return box + "\n"
}

func (c *Transcript) renderStream(card *types.Card) string {
	body := card.Text
	if !card.Open && card.Rendered != "" {
		body = card.Rendered
	} else {
		body = c.theme.Assistant.BodyStyle.Render(body)
	}

	header := c.theme.Assistant.HeaderStyle.Render("Assistant:")
	return c.theme.Assistant.BoxStyle.Render(header+"\n"+body) + "\n"
}

func (c *Transcript) renderTool(card *types.Card) string {
	header := c.theme.Tool.NameStyle.Render("🔧 " + card.Tool)
	args := c.theme.Tool.ArgsStyle.Render(types.FormatToolArgs(card.Tool, card.Args, 100))

	output := clampLines(card.Output, maxToolOutputLines)
	var body string
	if card.IsError {
		body = c.theme.Tool.ErrorStyle.Render(output)
	} else {
		body = c.theme.Tool.OutputStyle.Render(output)
	}

	return header + " " + args + "\n" + body + "\n\n"
}

func (c *Transcript) renderPlan(card *types.Card) string {
	header := c.theme.Plan.HeaderStyle.Render("→ next:")
	body := c.theme.Plan.BodyStyle.Render(card.Steps)
	return header + " " + body + "\n\n"
}

func (c *Transcript) renderDecision(card *types.Card) string {
	mark := "⛨"
	how := "auto"
	if card.Interactive {
		how = "asked"
	}
	line := fmt.Sprintf("%s %s · %s (%s, %s)", mark, card.Tool, card.Outcome, card.Category, how)
	return c.theme.Decision.BodyStyle.Render(line) + "\n\n"
}

func (c *Transcript) renderVerify(card *types.Card) string {
	mark := c.theme.Verify.HeaderStyle.Foreground(styles.ColorVerifyPass).Render("✓")
	if !card.Ok {
		mark = c.theme.Verify.HeaderStyle.Foreground(styles.ColorVerifyFail).Render("✗")
	}
	line := fmt.Sprintf("%s · %s", card.Command, card.Summary)
	return mark + " " + c.theme.Verify.BodyStyle.Render(line) + "\n\n"
}

func (c *Transcript) renderNotice(card *types.Card) string {
	return c.theme.Notice.BodyStyle.Render("! "+card.Text) + "\n\n"
}

func clampLines(s string, max int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= max {
		return s
	}
	kept := strings.Join(lines[:max], "\n")
	return kept + fmt.Sprintf("\n… (%d more lines)", len(lines)-max)
}
