package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Mohsinsiddi/andycoin/internal/dapp"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// AppController is the controller surface the dapp screen drives.
type AppController interface {
	View() dapp.View
	Subscribe(fn func(dapp.View)) (unsubscribe func())
	Start(ctx context.Context) error
	Connect(ctx context.Context) error
	LoadTokenInfo(ctx context.Context) error
	SetField(f dapp.Field, value string)
	Transfer(ctx context.Context) error
	Burn(ctx context.Context) error
	Mint(ctx context.Context) error
	Dismiss()
}

// AppInfo is static context shown in the header.
type AppInfo struct {
	Network  string
	Contract string
	RPC      string
}

type changedMsg struct{}

type actionDoneMsg struct {
	action dapp.Action
	err    error
}

type connectDoneMsg struct{ err error }

// control is one focusable element: an input, an action button or the
// connect button.
type control struct {
	field   dapp.Field
	action  dapp.Action
	connect bool
}

func (c control) isButton() bool { return c.action != "" || c.connect }

// AppModel is the Bubble Tea model for the interactive dapp screen.
type AppModel struct {
	ctx     context.Context
	ctrl    AppController
	info    AppInfo
	changes chan struct{}

	view       dapp.View
	focus      int
	frame      int
	width      int
	connecting bool
	quit       bool
}

// NewApp builds the screen. Wire notify to the controller's bus before
// running it; RunApp does both.
func NewApp(ctx context.Context, ctrl AppController, info AppInfo) *AppModel {
	return &AppModel{
		ctx:     ctx,
		ctrl:    ctrl,
		info:    info,
		changes: make(chan struct{}, 1),
		view:    ctrl.View(),
	}
}

// notify wakes the program; bursts of changes collapse into one redraw.
func (m *AppModel) notify(dapp.View) {
	select {
	case m.changes <- struct{}{}:
	default:
	}
}

func (m *AppModel) waitForChange() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.changes:
			return changedMsg{}
		case <-m.ctx.Done():
			return tea.Quit()
		}
	}
}

func (m *AppModel) Init() tea.Cmd {
	start := func() tea.Msg {
		_ = m.ctrl.Start(m.ctx)
		return changedMsg{}
	}
	return tea.Batch(m.waitForChange(), start, tick())
}

type tickMsg struct{}

func tick() tea.Cmd {
	return tea.Tick(120*time.Millisecond, func(time.Time) tea.Msg { return tickMsg{} })
}

func (m *AppModel) controls() []control {
	if !m.view.Session.Connected {
		return []control{{connect: true}}
	}
	cs := []control{
		{field: dapp.FieldWalletAddress},
		{field: dapp.FieldTransferAmount},
		{action: dapp.ActionTransfer},
	}
	if m.view.Token.IsOwner {
		cs = append(cs,
			control{field: dapp.FieldBurnAmount},
			control{action: dapp.ActionBurn},
			control{field: dapp.FieldMintAmount},
			control{action: dapp.ActionMint},
		)
	}
	return append(cs, control{connect: true})
}

func (m *AppModel) focused() control {
	cs := m.controls()
	if m.focus >= len(cs) {
		m.focus = len(cs) - 1
	}
	return cs[m.focus]
}

func (m *AppModel) move(delta int) {
	n := len(m.controls())
	m.focus = (m.focus + delta + n) % n
}

// connect asks the wallet for its account again, like the connect button
// of a browser dapp. A connect already running is not repeated.
func (m *AppModel) connect() tea.Cmd {
	if m.connecting {
		return nil
	}
	m.connecting = true
	return func() tea.Msg {
		return connectDoneMsg{err: m.ctrl.Connect(m.ctx)}
	}
}

// press activates a button control.
func (m *AppModel) press(c control) tea.Cmd {
	if c.connect {
		return m.connect()
	}
	return m.run(c.action)
}

func (m *AppModel) run(a dapp.Action) tea.Cmd {
	if m.view.Busy(a) {
		return nil
	}
	return func() tea.Msg {
		var err error
		switch a {
		case dapp.ActionTransfer:
			err = m.ctrl.Transfer(m.ctx)
		case dapp.ActionBurn:
			err = m.ctrl.Burn(m.ctx)
		case dapp.ActionMint:
			err = m.ctrl.Mint(m.ctx)
		}
		return actionDoneMsg{action: a, err: err}
	}
}

// actionFor returns the action submitted by pressing Enter in an amount field.
func actionFor(f dapp.Field) dapp.Action {
	switch f {
	case dapp.FieldTransferAmount:
		return dapp.ActionTransfer
	case dapp.FieldBurnAmount:
		return dapp.ActionBurn
	case dapp.FieldMintAmount:
		return dapp.ActionMint
	}
	return ""
}

func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case changedMsg:
		m.view = m.ctrl.View()
		return m, m.waitForChange()

	case actionDoneMsg:
		m.view = m.ctrl.View()
		return m, nil

	case connectDoneMsg:
		m.connecting = false
		m.view = m.ctrl.View()
		return m, nil

	case tickMsg:
		m.frame++
		return m, tick()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *AppModel) handleKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Type == tea.KeyCtrlC {
		m.quit = true
		return m, tea.Quit
	}

	// An open notification captures Enter and Esc.
	if m.view.Notification.Visible && (key.Type == tea.KeyEsc || key.Type == tea.KeyEnter) {
		m.ctrl.Dismiss()
		m.view = m.ctrl.View()
		return m, nil
	}

	c := m.focused()
	switch key.Type {
	case tea.KeyTab, tea.KeyDown:
		m.move(1)
	case tea.KeyShiftTab, tea.KeyUp:
		m.move(-1)
	case tea.KeyCtrlR:
		return m, func() tea.Msg {
			_ = m.ctrl.LoadTokenInfo(m.ctx)
			return changedMsg{}
		}
	case tea.KeyEnter:
		if c.isButton() {
			return m, m.press(c)
		}
		if a := actionFor(c.field); a != "" {
			return m, m.run(a)
		}
		m.move(1)
	case tea.KeyEsc:
		m.quit = true
		return m, tea.Quit
	case tea.KeyBackspace:
		if !c.isButton() {
			v := []rune(m.view.Form[c.field])
			if len(v) > 0 {
				m.setField(c.field, string(v[:len(v)-1]))
			}
		}
	case tea.KeyRunes, tea.KeySpace:
		if c.isButton() {
			if key.Type == tea.KeySpace {
				return m, m.press(c)
			}
			if key.String() == "q" {
				m.quit = true
				return m, tea.Quit
			}
			return m, nil
		}
		m.setField(c.field, m.view.Form[c.field]+string(key.Runes))
	}
	return m, nil
}

func (m *AppModel) setField(f dapp.Field, v string) {
	m.ctrl.SetField(f, v)
	m.view = m.ctrl.View()
}

// ── rendering ───────────────────────────────────────────────────────────────

var fieldLabels = map[dapp.Field]string{
	dapp.FieldWalletAddress:  "Recipient address",
	dapp.FieldTransferAmount: "Amount to transfer",
	dapp.FieldBurnAmount:     "Amount to burn",
	dapp.FieldMintAmount:     "Amount to mint",
}

var actionLabels = map[dapp.Action][2]string{
	dapp.ActionTransfer: {"Transfer", "Transferring"},
	dapp.ActionBurn:     {"Burn", "Burning"},
	dapp.ActionMint:     {"Mint", "Minting"},
}

func (m *AppModel) View() string {
	if m.quit {
		return ""
	}
	v := m.view

	var sb strings.Builder
	sb.WriteString(m.renderHeader())
	sb.WriteString("\n")

	switch {
	case v.AppLoading || (v.LoadingTokenInfo && !v.TokenLoaded):
		sb.WriteString(StyleToken.Render(spinnerFrames[m.frame%len(spinnerFrames)]) + " " + Meta("Loading the application…") + "\n")
	case !v.Session.Connected:
		sb.WriteString(Meta("No wallet connected.") + "\n")
		sb.WriteString(m.renderConnect() + "\n")
	default:
		sb.WriteString(m.renderSection("Transfer tokens", dapp.FieldWalletAddress, dapp.FieldTransferAmount, dapp.ActionTransfer))
		if v.Token.IsOwner {
			sb.WriteString(m.renderSection("Burn tokens", dapp.FieldBurnAmount, "", dapp.ActionBurn))
			sb.WriteString(m.renderSection("Mint tokens", dapp.FieldMintAmount, "", dapp.ActionMint))
		}
		sb.WriteString(m.renderConnect() + "\n")
	}

	if v.Notification.Visible {
		sb.WriteString("\n" + renderNotification(v.Notification) + "\n")
	}

	sb.WriteString("\n" + Meta("[Tab/↑↓] move  [Enter] submit  [Ctrl+R] refresh  [Esc] dismiss/quit") + "\n")
	return sb.String()
}

func (m *AppModel) renderHeader() string {
	v := m.view
	name := "Andy Coin"
	if v.TokenLoaded && v.Token.Name != "" {
		name = v.Token.Name
	}

	pairs := [][2]string{{"Wallet", "Not connected"}}
	if v.Session.Connected {
		pairs[0][1] = "Connected"
		pairs = append(pairs, [2]string{"Account", v.Session.Account.Hex()})
	}
	if v.TokenLoaded {
		pairs = append(pairs,
			[2]string{"Symbol", v.Token.Symbol},
			[2]string{"Total supply", v.Token.TotalSupply + " " + v.Token.Symbol},
			[2]string{"Owner", v.Token.Owner.Hex()},
		)
		if v.Balance != "" {
			pairs = append(pairs, [2]string{"Your balance", v.Balance + " " + v.Token.Symbol})
		}
	}
	if m.info.Network != "" {
		pairs = append(pairs, [2]string{"Network", m.info.Network})
	}
	if m.info.Contract != "" {
		pairs = append(pairs, [2]string{"Contract", m.info.Contract})
	}
	if m.info.RPC != "" {
		pairs = append(pairs, [2]string{"RPC", m.info.RPC})
	}
	if v.LastTx != "" {
		pairs = append(pairs, [2]string{"Last tx", TruncateAddr(v.LastTx)})
	}

	block := KeyValueBlock("", pairs)
	return TokenName(name) + "\n" + block + "\n"
}

func (m *AppModel) renderSection(title string, first, second dapp.Field, action dapp.Action) string {
	cs := m.controls()
	focused := -1
	if m.focus < len(cs) {
		focused = m.focus
	}
	isFocused := func(c control) bool {
		return focused >= 0 && cs[focused] == c
	}

	var body strings.Builder
	body.WriteString(StyleHeader.Render(title) + "\n")
	for _, f := range []dapp.Field{first, second} {
		if f == "" {
			continue
		}
		c := control{field: f}
		cursor := ""
		if isFocused(c) {
			cursor = "█"
		}
		style := StyleBorder
		if isFocused(c) {
			style = StyleFocused
		}
		body.WriteString(Meta(fieldLabels[f]) + "\n")
		body.WriteString(style.Width(m.inputWidth()).Render(m.view.Form[f]+cursor) + "\n")
	}
	body.WriteString(m.renderButton(action, isFocused(control{action: action})) + "\n")
	return body.String() + "\n"
}

func (m *AppModel) inputWidth() int {
	if m.width > 0 && m.width-4 < 48 {
		return max(m.width-4, 16)
	}
	return 48
}

func (m *AppModel) renderConnect() string {
	if m.connecting {
		frame := spinnerFrames[m.frame%len(spinnerFrames)]
		return StyleWarning.Render(frame + " Connecting…")
	}
	btn := "[ Connect Wallet 🔑 ]"
	if m.view.Session.Connected {
		btn = "[ Wallet Connected 🔒 ]"
	}
	cs := m.controls()
	if m.focus < len(cs) && cs[m.focus].connect {
		return StyleSelected.Render(btn)
	}
	return StyleValue.Render(btn)
}

func (m *AppModel) renderButton(a dapp.Action, focused bool) string {
	labels := actionLabels[a]
	if phase := m.view.Phases[a]; phase != dapp.PhaseIdle {
		frame := spinnerFrames[m.frame%len(spinnerFrames)]
		return StyleWarning.Render(fmt.Sprintf("%s %s… (%s)", frame, labels[1], phase))
	}
	btn := "[ " + labels[0] + " ]"
	if focused {
		return StyleSelected.Render(btn)
	}
	return StyleValue.Render(btn)
}

func renderNotification(n dapp.Notification) string {
	color := ColorSuccess
	if n.Kind == dapp.KindError {
		color = ColorError
	}
	header := lipgloss.NewStyle().Foreground(color).Bold(true).Render(n.Header)
	body := lipgloss.NewStyle().Foreground(ColorValue).Render(n.Body)
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Padding(0, 2).
		Render(header + "\n\n" + body + "\n\n" + Meta("[Enter/Esc] close"))
}

// RunApp runs the interactive dapp screen until the user quits or ctx ends.
func RunApp(ctx context.Context, ctrl AppController, info AppInfo) error {
	m := NewApp(ctx, ctrl, info)
	unsubscribe := ctrl.Subscribe(m.notify)
	defer unsubscribe()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("dapp screen: %w", err)
	}
	return nil
}
