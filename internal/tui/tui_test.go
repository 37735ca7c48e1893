package tui

import (
	"io"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/lox/boothjack/internal/deck"
	"github.com/lox/boothjack/internal/game"
	"github.com/lox/boothjack/internal/leaderboard"
	"github.com/lox/boothjack/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

func sized(t *testing.T, m *TUIModel) *TUIModel {
	t.Helper()
	_, _ = m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m
}

func playingView() session.View {
	return session.View{
		Stage:  session.StagePlay,
		Player: "ada",
		Table: game.Snapshot{
			Phase: game.PhasePlaying,
			Mode:  game.ModePlay,
			Money: 9000,
			Dealer: []game.CardView{
				{Card: deck.NewCard(deck.Seven), FaceUp: true},
				{},
			},
			DealerValue: 7,
			Hands: []game.HandView{{
				Cards: []game.CardView{
					{Card: deck.NewCard(deck.Ace), FaceUp: true},
					{Card: deck.NewCard(deck.Three), FaceUp: true},
				},
				Value:  11,
				Bet:    1000,
				Active: true,
			}},
			Actions: []game.Action{game.ActionHit, game.ActionStand, game.ActionDouble},
		},
		Remaining:   75 * time.Second,
		Leaderboard: []leaderboard.Entry{{Player: "bob", Score: 15000}},
	}
}

func TestTUITestMode(t *testing.T) {
	t.Run("action injection works in test mode", func(t *testing.T) {
		tui := NewTUIModelWithOptions(quietLogger(), true)
		assert.True(t, tui.IsTestMode())

		require.NoError(t, tui.InjectAction("bet", []string{"500"}))

		action, args, cont, err := tui.WaitForAction()
		require.NoError(t, err)
		assert.Equal(t, "bet", action)
		assert.Equal(t, []string{"500"}, args)
		assert.True(t, cont)
	})

	t.Run("action injection fails in production mode", func(t *testing.T) {
		tui := NewTUIModel(quietLogger())

		err := tui.InjectAction("hit", nil)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "test mode")
	})
}

func TestEnterSendsTypedAction(t *testing.T) {
	tui := sized(t, NewTUIModelWithOptions(quietLogger(), true))
	tui.actionInput.SetValue("bet 500")

	_, _ = tui.Update(tea.KeyMsg{Type: tea.KeyEnter})

	action, args, cont, err := tui.WaitForAction()
	require.NoError(t, err)
	assert.Equal(t, "bet", action)
	assert.Equal(t, []string{"500"}, args)
	assert.True(t, cont)
	assert.Empty(t, tui.actionInput.Value())
}

func TestTabMovesFocusToLog(t *testing.T) {
	tui := sized(t, NewTUIModelWithOptions(quietLogger(), true))
	tui.actionInput.SetValue("hit")

	_, _ = tui.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, paneLog, tui.focusedPane)

	// enter is ignored while the log has focus
	_, _ = tui.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "hit", tui.actionInput.Value())
	select {
	case r := <-tui.actionResult:
		t.Fatalf("unexpected action %q", r.Action)
	default:
	}

	_, _ = tui.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, paneInput, tui.focusedPane)
}

func TestKeyMapScrollKeysFollowFocus(t *testing.T) {
	keys := defaultKeyMap()

	logKeys := keys.forPane(paneLog)
	assert.True(t, logKeys.Up.Enabled())
	assert.False(t, logKeys.Submit.Enabled())

	input := keys.forPane(paneInput)
	assert.False(t, input.Up.Enabled())
	assert.True(t, input.Submit.Enabled())
	assert.True(t, input.Quit.Enabled())
}

func TestCtrlCSendsQuit(t *testing.T) {
	tui := sized(t, NewTUIModelWithOptions(quietLogger(), true))

	_, cmd := tui.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.NotNil(t, cmd)

	action, _, cont, _ := tui.WaitForAction()
	assert.Equal(t, "quit", action)
	assert.False(t, cont)
	assert.Empty(t, tui.View())
}

func TestRenderPlayingTable(t *testing.T) {
	tui := sized(t, NewTUIModelWithOptions(quietLogger(), true))
	_, _ = tui.Update(viewMsg(playingView()))

	out := tui.View()
	assert.Contains(t, out, "Dealer: [7 ??]")
	assert.Contains(t, out, "You: [A 3]  (11)  bet $1000")
	assert.Contains(t, out, "Money: $9000")
	assert.Contains(t, out, "Time: 1:15")
	assert.Contains(t, out, "[double]")
	assert.Contains(t, out, "bob")
}

func TestRenderTimeUpAndResult(t *testing.T) {
	tui := sized(t, NewTUIModelWithOptions(quietLogger(), true))

	v := playingView()
	v.TimeUp = true
	tui.SetView(v)
	assert.Contains(t, tui.View(), "TIME UP")

	v = session.View{
		Stage: session.StageResult,
		Result: &session.Result{
			Player:    "ada",
			Money:     12500,
			Reason:    session.FinishTimeUp,
			Submitted: true,
			Entered:   true,
			Rank:      2,
		},
	}
	tui.SetView(v)
	out := tui.View()
	assert.Contains(t, out, "ada finished with $12500")
	assert.Contains(t, out, "#2")
}

func TestNoticeShownUntilNextAction(t *testing.T) {
	tui := sized(t, NewTUIModelWithOptions(quietLogger(), true))
	_, _ = tui.Update(noticeMsg("unknown action \"fold\""))
	assert.Contains(t, tui.View(), "unknown action")

	_, _ = tui.Update(tea.KeyMsg{Type: tea.KeyEnter})
	_, _, _, _ = tui.WaitForAction()
	assert.NotContains(t, tui.View(), "unknown action")
}

func TestPushViewKeepsLatest(t *testing.T) {
	tui := NewTUIModelWithOptions(quietLogger(), true)
	tui.PushView(session.View{Player: "first"})
	tui.PushView(session.View{Player: "second"})

	msg := tui.listenForView()()
	assert.Equal(t, "second", session.View(msg.(viewMsg)).Player)
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "2:00", formatClock(2*time.Minute))
	assert.Equal(t, "0:09", formatClock(9*time.Second))
	assert.Equal(t, "0:00", formatClock(0))
}
