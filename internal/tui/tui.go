package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/lox/boothjack/internal/game"
	"github.com/lox/boothjack/internal/session"
)

// TUIModel represents the Bubble Tea model for the booth
type TUIModel struct {
	logger *log.Logger

	// UI components
	logViewport viewport.Model
	actionInput textinput.Model
	help        help.Model
	keys        keyMap

	// State
	view         session.View
	views        chan session.View
	notices      chan string
	actionResult chan ActionResult
	quitSignal   chan bool
	quitting     bool
	focusedPane  pane
	status       string

	// Dimensions
	width       int
	height      int
	initialized bool

	testMode bool
}

// ActionResult represents the result of a user action
type ActionResult struct {
	Action   string
	Args     []string
	Continue bool
	Error    error
}

// QuitMsg is a custom message to signal quit
type QuitMsg struct{}

type viewMsg session.View

type noticeMsg string

// NewTUIModel creates a new TUI model
func NewTUIModel(logger *log.Logger) *TUIModel {
	return NewTUIModelWithOptions(logger, false)
}

// NewTUIModelWithOptions creates a new TUI model with test mode option
func NewTUIModelWithOptions(logger *log.Logger, testMode bool) *TUIModel {
	// Sized properly once a WindowSizeMsg arrives
	vp := viewport.New(10, 5)
	vp.SetContent("")

	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 60
	ti.Width = 60
	ti.PromptStyle = promptStyle
	ti.TextStyle = inputStyle
	ti.Prompt = "> "

	return &TUIModel{
		logger:       logger.WithPrefix("tui"),
		logViewport:  vp,
		actionInput:  ti,
		help:         help.New(),
		keys:         defaultKeyMap(),
		views:        make(chan session.View, 1),
		notices:      make(chan string, 4),
		actionResult: make(chan ActionResult, 1),
		quitSignal:   make(chan bool, 1),
		focusedPane:  paneInput,
		testMode:     testMode,
	}
}

// Init initializes the TUI model
func (m *TUIModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.listenForQuit(), m.listenForView(), m.listenForNotice())
}

func (m *TUIModel) listenForQuit() tea.Cmd {
	return func() tea.Msg {
		<-m.quitSignal
		return QuitMsg{}
	}
}

func (m *TUIModel) listenForView() tea.Cmd {
	return func() tea.Msg {
		return viewMsg(<-m.views)
	}
}

func (m *TUIModel) listenForNotice() tea.Cmd {
	return func() tea.Msg {
		return noticeMsg(<-m.notices)
	}
}

// Notify shows msg above the input until the next action. Safe from any
// goroutine.
func (m *TUIModel) Notify(msg string) {
	select {
	case m.notices <- msg:
	default:
	}
}

// PushView hands a new view to the UI. Only the latest view is kept when
// the UI falls behind.
func (m *TUIModel) PushView(v session.View) {
	for {
		select {
		case m.views <- v:
			return
		default:
		}
		select {
		case <-m.views:
		default:
		}
	}
}

// Update handles messages in the TUI
func (m *TUIModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case QuitMsg:
		m.quitting = true
		return m, tea.Sequence(tea.ClearScreen, tea.Quit)

	case viewMsg:
		m.SetView(session.View(msg))
		cmds = append(cmds, m.listenForView())

	case noticeMsg:
		m.status = string(msg)
		cmds = append(cmds, m.listenForNotice())

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.logger.Debug("Updating dimensions", "width", m.width, "height", m.height)

	case tea.KeyMsg:
		keys := m.keys.forPane(m.focusedPane)
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			m.sendAction(ActionResult{Action: "quit", Continue: false})
			return m, tea.Sequence(tea.ClearScreen, tea.Quit)
		case key.Matches(msg, keys.Focus):
			m.toggleFocus()
		case key.Matches(msg, keys.Submit):
			m.processAction(m.actionInput.Value())
			m.actionInput.SetValue("")
		case key.Matches(msg, keys.Up):
			m.logViewport.ScrollUp(1)
		case key.Matches(msg, keys.Down):
			m.logViewport.ScrollDown(1)
		case key.Matches(msg, keys.Top):
			m.logViewport.GotoTop()
		case key.Matches(msg, keys.Bottom):
			m.logViewport.GotoBottom()
		}
	}

	var cmd tea.Cmd
	if m.focusedPane == paneInput {
		m.actionInput, cmd = m.actionInput.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.logViewport, cmd = m.logViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// SetView replaces the displayed booth state.
func (m *TUIModel) SetView(v session.View) {
	m.view = v
	m.logViewport.SetContent(strings.Join(v.Log, "\n"))
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

// View renders the TUI
func (m *TUIModel) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	actionContent := m.renderActionPane()
	actionHeight := lipgloss.Height(actionContent)
	actionPane := paneStyle(true).
		Width(max(m.width-2, 1)).
		Height(max(actionHeight, 1)).
		Render(actionContent)

	paneHeight := max(m.height-actionHeight-4, 1)

	sidebarContent := m.renderSidebarPane()
	sidebarWidth := max(lipgloss.Width(sidebarContent), 28)
	sidebarPane := paneStyle(false).
		Width(sidebarWidth).
		Height(paneHeight).
		Render(sidebarContent)

	tableContent := m.renderTable()
	tableHeight := lipgloss.Height(tableContent)

	logWidth := max(m.width-sidebarWidth-4, 1)
	m.logViewport.Width = logWidth
	m.logViewport.Height = max(paneHeight-tableHeight-1, 1)
	if !m.initialized && logWidth > 1 && m.logViewport.Height > 1 {
		m.logViewport.GotoBottom()
		m.initialized = true
	}

	mainPane := paneStyle(m.focusedPane == paneLog).
		Width(logWidth).
		Height(paneHeight).
		Render(lipgloss.JoinVertical(lipgloss.Left, tableContent, "", m.logViewport.View()))

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, mainPane, sidebarPane)
	return lipgloss.JoinVertical(lipgloss.Top, topRow, actionPane)
}

// renderTable draws the dealer and player hands.
func (m *TUIModel) renderTable() string {
	v := m.view
	switch v.Stage {
	case session.StageName:
		return HeaderStyle.Render(" BOOTH BLACKJACK ") + "\n\n" +
			"Aces count 8 or 0, sevens are the workhorse, fifteen is the target.\n" +
			"Type your name to play."
	case session.StagePrestart:
		return HeaderStyle.Render(" READY ") + "\n\n" +
			fmt.Sprintf("%s, practice is over. Grow $%d as far as you can before the clock runs out.\nPress Enter to start.",
				v.Player, v.Table.Money)
	case session.StageResult:
		return m.renderResult()
	}

	t := v.Table
	var b strings.Builder
	dealer := fmt.Sprintf("Dealer: %s", formatCards(t.Dealer))
	if len(t.Dealer) > 0 {
		dealer += fmt.Sprintf("  (%d)", t.DealerValue)
	}
	b.WriteString(HandInfoStyle.Render(dealer))
	b.WriteString("\n\n")

	for i, h := range t.Hands {
		label := "You"
		if len(t.Hands) > 1 {
			label = fmt.Sprintf("Hand %d", i+1)
		}
		line := fmt.Sprintf("%s: %s", label, formatCards(h.Cards))
		if len(h.Cards) > 0 {
			line += fmt.Sprintf("  (%d)", h.Value)
		}
		if h.Bet > 0 {
			line += fmt.Sprintf("  bet $%d", h.Bet)
		}
		if h.Outcome != game.OutcomeNone {
			line += "  " + outcomeStyle(h.Outcome).Render(strings.ToUpper(string(h.Outcome)))
		} else if h.Result == game.ResultBust {
			line += "  " + ErrorStyle.Render("BUST")
		}
		if h.Active {
			line = "▸ " + line
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func (m *TUIModel) renderResult() string {
	r := m.view.Result
	if r == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(HeaderStyle.Render(" FINISHED "))
	b.WriteString("\n\n")
	reason := "Time is up"
	if r.Reason == session.FinishBroke {
		reason = "Out of money"
	}
	b.WriteString(fmt.Sprintf("%s. %s finished with $%d.\n\n", reason, r.Player, r.Money))

	switch {
	case r.SubmitError != "":
		b.WriteString(ErrorStyle.Render("Score not recorded: " + r.SubmitError))
	case !r.Submitted:
		b.WriteString(InfoStyle.Render("Submitting score..."))
	case r.Entered:
		b.WriteString(SuccessStyle.Render(fmt.Sprintf("You made the leaderboard at #%d!", r.Rank)))
	default:
		b.WriteString(WarningStyle.Render("Not quite enough for the leaderboard."))
	}
	b.WriteString("\n\nPress Enter for the next player.")
	return b.String()
}

// renderSidebarPane shows money, timer and the leaderboard
func (m *TUIModel) renderSidebarPane() string {
	v := m.view
	var content strings.Builder

	if v.Player != "" {
		content.WriteString(InfoStyle.Render("Player: "))
		content.WriteString(v.Player)
		content.WriteString("\n")
	}
	content.WriteString(WarningStyle.Render(fmt.Sprintf("Money: $%d", v.Table.Money)))
	content.WriteString("\n")
	if bet := v.Table.TableBet(); bet > 0 {
		content.WriteString(WarningStyle.Render(fmt.Sprintf("Bet:   $%d", bet)))
		content.WriteString("\n")
	}

	switch v.Stage {
	case session.StagePractice:
		content.WriteString(InfoStyle.Render(fmt.Sprintf("Practice rounds left: %d", v.PracticeLeft)))
		content.WriteString("\n")
	case session.StagePlay:
		clock := formatClock(v.Remaining)
		if v.TimeUp {
			content.WriteString(ErrorStyle.Render("TIME UP - finish this round"))
		} else {
			content.WriteString(HandInfoStyle.Render("Time: " + clock))
		}
		content.WriteString("\n")
	}

	board := v.Leaderboard
	if v.Result != nil && len(v.Result.Leaderboard) > 0 {
		board = v.Result.Leaderboard
	}
	if len(board) > 0 {
		content.WriteString("\n")
		content.WriteString(InfoStyle.Render("Leaderboard:"))
		content.WriteString("\n")
		for i, e := range board {
			content.WriteString(fmt.Sprintf("  %d. %-12s $%d\n", i+1, e.Player, e.Score))
		}
	}

	if v.Cue != "" {
		content.WriteString("\n")
		content.WriteString(InfoStyle.Render("♪ " + string(v.Cue)))
	}
	return content.String()
}

// renderActionPane renders the action input pane
func (m *TUIModel) renderActionPane() string {
	var content strings.Builder

	actions := m.renderAvailableActions()
	if actions != "" {
		content.WriteString(actions)
		content.WriteString("\n")
	}
	if m.status != "" {
		content.WriteString(ErrorStyle.Render(m.status))
		content.WriteString("\n")
	}

	m.actionInput.Placeholder = m.placeholder()
	content.WriteString(m.actionInput.View())
	content.WriteString("\n")

	content.WriteString(m.help.View(m.keys.forPane(m.focusedPane)))
	return content.String()
}

func (m *TUIModel) toggleFocus() {
	if m.focusedPane == paneLog {
		m.focusedPane = paneInput
		m.actionInput.Focus()
		return
	}
	m.focusedPane = paneLog
	m.actionInput.Blur()
}

func (m *TUIModel) placeholder() string {
	switch m.view.Stage {
	case session.StageName:
		return "Your name"
	case session.StagePrestart:
		return "Enter to start"
	case session.StageResult:
		return "Enter to continue"
	}
	switch m.view.Table.Phase {
	case game.PhaseBetting:
		if m.view.Table.Mode == game.ModePractice {
			return "deal"
		}
		return "bet 500, bet -500, allin, clear, deal"
	case game.PhaseResolvingSplit:
		return "split or no"
	case game.PhasePlaying:
		return "hit, stand, double"
	case game.PhaseRoundOver:
		return "Enter to continue"
	}
	return ""
}

// renderAvailableActions renders available action buttons based on the engine's actions
func (m *TUIModel) renderAvailableActions() string {
	switch m.view.Stage {
	case session.StagePractice, session.StagePlay:
	default:
		return ""
	}

	var actions []string
	for _, a := range m.view.Table.Actions {
		switch a {
		case game.ActionBet:
			actions = append(actions, WarningStyle.Render("[bet]"))
		case game.ActionDeal:
			actions = append(actions, SuccessStyle.Render("[deal]"))
		case game.ActionSplit:
			actions = append(actions, WarningStyle.Render("[split]"))
		case game.ActionDeclineSplit:
			actions = append(actions, ErrorStyle.Render("[no]"))
		case game.ActionHit:
			actions = append(actions, SuccessStyle.Render("[hit]"))
		case game.ActionStand:
			actions = append(actions, WarningStyle.Render("[stand]"))
		case game.ActionDouble:
			actions = append(actions, WarningStyle.Render("[double]"))
		case game.ActionProceed:
			actions = append(actions, SuccessStyle.Render("[enter]"))
		}
	}
	if len(actions) == 0 {
		return ActionsStyle.Render("Dealing...")
	}
	return ActionsStyle.Render("Actions: " + strings.Join(actions, " "))
}

// formatCards formats cards with colors. Face-down cards show as ??.
func formatCards(cards []game.CardView) string {
	if len(cards) == 0 {
		return ""
	}
	formatted := make([]string, 0, len(cards))
	for _, c := range cards {
		switch {
		case !c.FaceUp:
			formatted = append(formatted, HiddenCardStyle.Render("??"))
		case c.Card.IsAce():
			formatted = append(formatted, AceCardStyle.Render(c.Card.String()))
		default:
			formatted = append(formatted, CardStyle.Render(c.Card.String()))
		}
	}
	return "[" + strings.Join(formatted, " ") + "]"
}

func formatClock(d time.Duration) string {
	secs := int(d.Round(time.Second) / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

func outcomeStyle(o game.Outcome) lipgloss.Style {
	switch o {
	case game.OutcomeWin, game.OutcomeBlackjack:
		return SuccessStyle
	case game.OutcomePush:
		return WarningStyle
	default:
		return ErrorStyle
	}
}

func (m *TUIModel) processAction(input string) {
	parts := strings.Fields(input)
	var action string
	var args []string
	if len(parts) > 0 {
		action = parts[0]
		args = parts[1:]
	}
	m.status = ""
	m.sendAction(ActionResult{Action: action, Args: args, Continue: true})
}

func (m *TUIModel) sendAction(a ActionResult) {
	select {
	case m.actionResult <- a:
	default:
		m.logger.Debug("Dropping action, previous one still pending", "action", a.Action)
	}
}

// WaitForAction waits for user input
func (m *TUIModel) WaitForAction() (string, []string, bool, error) {
	result := <-m.actionResult
	return result.Action, result.Args, result.Continue, result.Error
}

// SendQuitSignal signals the TUI to quit gracefully
func (m *TUIModel) SendQuitSignal() {
	select {
	case m.quitSignal <- true:
	default:
	}
}

// InjectAction programmatically injects an action (test mode only)
func (m *TUIModel) InjectAction(action string, args []string) error {
	if !m.testMode {
		return fmt.Errorf("action injection only available in test mode")
	}

	select {
	case m.actionResult <- ActionResult{Action: action, Args: args, Continue: true}:
		return nil
	default:
		return fmt.Errorf("action channel full")
	}
}

// IsTestMode returns whether the TUI is in test mode
func (m *TUIModel) IsTestMode() bool {
	return m.testMode
}
