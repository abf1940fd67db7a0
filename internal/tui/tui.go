// Package tui is the terminal front end: a bubbletea program that renders a
// single session and maps keys onto its commands.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/blackjack/internal/config"
	"github.com/lox/blackjack/internal/countdown"
	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/ledger"
)

// TUIModel represents the Bubble Tea model for the blackjack table
type TUIModel struct {
	session   *game.Session
	countdown *countdown.Countdown
	chips     []int
	logger    *log.Logger

	logViewport viewport.Model
	gameLog     []string
	expired     chan uint64
	quitting    bool

	width  int
	height int

	// Test mode
	testMode    bool
	capturedLog []string
}

// ExpiredMsg is delivered when the idle countdown runs out
type ExpiredMsg struct {
	Generation uint64
}

// TickMsg redraws the countdown
type TickMsg time.Time

// Option configures a TUIModel
type Option func(*TUIModel)

// WithTestMode captures log lines instead of rendering them
func WithTestMode() Option {
	return func(m *TUIModel) { m.testMode = true }
}

// NewTUIModel creates a model that drives session. The countdown runs on
// clock and restarts after every settled round.
func NewTUIModel(session *game.Session, clock quartz.Clock, idle time.Duration, chips []int, logger *log.Logger, opts ...Option) *TUIModel {
	vp := viewport.New(10, 5)
	vp.SetContent("")

	m := &TUIModel{
		session:     session,
		chips:       chips,
		logger:      logger.WithPrefix("tui"),
		logViewport: vp,
		gameLog:     []string{},
		expired:     make(chan uint64, 1),
		capturedLog: []string{},
	}
	for _, opt := range opts {
		opt(m)
	}

	m.countdown = countdown.New(clock, idle, m.notifyExpired, logger)
	session.EventBus().Subscribe(m.countdown)
	session.EventBus().Subscribe(m)
	m.countdown.Start()
	return m
}

// Init initializes the TUI model
func (m *TUIModel) Init() tea.Cmd {
	return tea.Batch(m.listenForExpiry(), tick())
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// notifyExpired runs on the clock's goroutine and only signals the program
func (m *TUIModel) notifyExpired(gen uint64) {
	select {
	case m.expired <- gen:
	default:
	}
}

func (m *TUIModel) listenForExpiry() tea.Cmd {
	return func() tea.Msg {
		return ExpiredMsg{Generation: <-m.expired}
	}
}

// OnEvent appends round events to the log
func (m *TUIModel) OnEvent(event game.Event) {
	m.AddLogEntry(game.FormatEvent(event))
}

// Update handles messages in the TUI
func (m *TUIModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case ExpiredMsg:
		// A key handled before this message may have dealt already
		if m.countdown.Current(msg.Generation) {
			m.session.AbortToIdle()
		}
		cmds = append(cmds, m.listenForExpiry())

	case TickMsg:
		cmds = append(cmds, tick())

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.logger.Debug("Updating dimensions", "width", m.width, "height", m.height)

	case tea.KeyMsg:
		key := msg.String()
		if m.handleKey(key) {
			m.quitting = true
			m.countdown.Stop()
			return m, tea.Sequence(tea.ClearScreen, tea.Quit)
		}
		// Letter keys are table commands, only these scroll the log
		switch key {
		case "up", "down", "pgup", "pgdown":
		default:
			return m, tea.Batch(cmds...)
		}
	}

	var cmd tea.Cmd
	m.logViewport, cmd = m.logViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// handleKey applies a key press and reports whether the program should quit
func (m *TUIModel) handleKey(key string) bool {
	switch key {
	case "ctrl+c", "esc", "q":
		return true
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		i := int(key[0] - '1')
		if i < len(m.chips) {
			m.session.PlaceChip(m.chips[i])
		}
	case "c":
		m.session.ClearPendingBet()
	case "d", "enter":
		m.session.StartRound()
	case "h":
		m.session.Hit()
	case "s":
		m.session.Stand()
	case "x":
		m.session.DoubleDown()
	case "p":
		m.session.Split()
	case "[":
		m.configureDecks(m.session.Shoe().Decks() - 1)
	case "]":
		m.configureDecks(m.session.Shoe().Decks() + 1)
	}
	return false
}

func (m *TUIModel) configureDecks(decks int) {
	if decks < 1 || decks > config.MaxDecks {
		return
	}
	if err := m.session.ConfigureDecks(decks); err != nil {
		m.logger.Debug("Deck change rejected", "error", err)
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

	tableContent := m.renderTable()
	tablePane := PaneStyle.Width(max(m.width-2, 1)).Render(tableContent)

	logHeight := max(m.height-lipgloss.Height(tablePane)-2, 1)
	m.logViewport.Width = max(m.width-2, 1)
	m.logViewport.Height = logHeight
	logPane := LogPaneStyle.Width(max(m.width-2, 1)).Height(logHeight).Render(m.logViewport.View())

	return lipgloss.JoinVertical(lipgloss.Left, tablePane, logPane)
}

// renderTable renders hands, money and the available commands
func (m *TUIModel) renderTable() string {
	snap := m.session.Snapshot()
	var content strings.Builder

	content.WriteString(HeaderStyle.Render(fmt.Sprintf("Blackjack · %d decks · %d cards left", snap.Decks, snap.ShoeRemaining)))
	content.WriteString("\n\n")

	dealerHand, playerHand := snap.DealerHand, snap.PlayerHand
	dealerTotal, playerTotal := snap.DealerTotal, snap.PlayerTotal
	holeHidden := snap.DealerHoleHidden
	if !snap.InRound && snap.LastRound != nil {
		dealerHand, playerHand = snap.LastRound.DealerHand, snap.LastRound.PlayerHand
		dealerTotal, playerTotal = snap.LastRound.DealerTotal, snap.LastRound.PlayerTotal
		holeHidden = false
	}

	content.WriteString(HandInfoStyle.Render("Dealer: "))
	content.WriteString(m.formatCards(dealerHand, holeHidden))
	content.WriteString(fmt.Sprintf("  (%d)\n", dealerTotal))
	content.WriteString(HandInfoStyle.Render("You:    "))
	content.WriteString(m.formatCards(playerHand, false))
	content.WriteString(fmt.Sprintf("  (%d)\n\n", playerTotal))

	content.WriteString(WarningStyle.Render(fmt.Sprintf("Bankroll: $%d", snap.Bankroll)))
	content.WriteString(" | ")
	if snap.InRound {
		content.WriteString(WarningStyle.Render(fmt.Sprintf("Bet: $%d", snap.ActiveBet)))
	} else {
		content.WriteString(WarningStyle.Render(fmt.Sprintf("Next bet: $%d", snap.PendingBet)))
		if snap.PendingBet > 0 {
			content.WriteString(InfoStyle.Render(" " + formatChips(ledger.ChipStack(snap.PendingBet, m.chips))))
		}
	}
	if snap.CanAct {
		content.WriteString(" | ")
		content.WriteString(InfoStyle.Render(fmt.Sprintf("Bust: %d%%  Hint: %s", m.session.BustProbability(), m.session.ActionHint())))
	}
	content.WriteString("\n")

	if snap.LastMessage != "" {
		content.WriteString(m.messageStyle(snap).Render(snap.LastMessage))
		content.WriteString("\n")
	}
	if m.countdown.Running() {
		secs := int((m.countdown.Remaining() + time.Second - 1) / time.Second)
		content.WriteString(InfoStyle.Render(fmt.Sprintf("Next round in %ds", secs)))
		content.WriteString("\n")
	}

	content.WriteString("\n")
	content.WriteString(m.renderAvailableActions(snap))
	return content.String()
}

func (m *TUIModel) messageStyle(snap game.Snapshot) lipgloss.Style {
	if snap.InRound || snap.LastRound == nil {
		return InfoStyle
	}
	if snap.LastRound.Payout.Net > 0 {
		return SuccessStyle
	}
	if snap.LastRound.Payout.Net < 0 {
		return ErrorStyle
	}
	return WarningStyle
}

// renderAvailableActions lists only the keys the session would accept
func (m *TUIModel) renderAvailableActions(snap game.Snapshot) string {
	var actions []string

	if snap.CanAct {
		actions = append(actions, SuccessStyle.Render("[h]it"), SuccessStyle.Render("[s]tand"))
		if snap.CanDouble {
			actions = append(actions, WarningStyle.Render("[x] double"))
		}
		actions = append(actions, InfoStyle.Render("[p] split"))
	} else if !snap.InRound {
		for i, chip := range m.chips {
			if i >= 9 {
				break
			}
			style := InfoStyle
			if chip <= snap.Bankroll {
				style = WarningStyle
			}
			actions = append(actions, style.Render(fmt.Sprintf("[%d] $%d", i+1, chip)))
		}
		if snap.PendingBet > 0 {
			actions = append(actions, SuccessStyle.Render("[d]eal"), InfoStyle.Render("[c]lear"))
		}
		actions = append(actions, InfoStyle.Render("[ ] decks"))
	}
	actions = append(actions, InfoStyle.Render("[q]uit"))

	return ActionsStyle.Render("Actions: ") + strings.Join(actions, " ")
}

// formatCards formats cards with colors, masking the hole card
func (m *TUIModel) formatCards(cards []deck.Card, holeHidden bool) string {
	if len(cards) == 0 {
		return InfoStyle.Render("[]")
	}

	formatted := make([]string, 0, len(cards))
	for i, card := range cards {
		switch {
		case holeHidden && i == 1:
			formatted = append(formatted, HiddenCardStyle.Render("??"))
		case card.IsRed():
			formatted = append(formatted, RedCardStyle.Render(card.String()))
		default:
			formatted = append(formatted, BlackCardStyle.Render(card.String()))
		}
	}

	return "[" + strings.Join(formatted, " ") + "]"
}

// formatChips renders a chip stack as "(100+20)"
func formatChips(chips []int) string {
	parts := make([]string, len(chips))
	for i, c := range chips {
		parts[i] = fmt.Sprintf("%d", c)
	}
	return "(" + strings.Join(parts, "+") + ")"
}

// AddLogEntry adds an entry to the game log
func (m *TUIModel) AddLogEntry(entry string) {
	m.gameLog = append(m.gameLog, entry)

	if m.testMode {
		m.capturedLog = append(m.capturedLog, entry)
		return
	}

	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

// GetCapturedLog returns the captured log entries (test mode only)
func (m *TUIModel) GetCapturedLog() []string {
	if !m.testMode {
		return nil
	}
	result := make([]string, len(m.capturedLog))
	copy(result, m.capturedLog)
	return result
}

// Run starts the program on the alternate screen until the player quits or
// ctx is cancelled
func Run(ctx context.Context, m *TUIModel) error {
	defer m.countdown.Stop()
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}
