package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func pickerItems() []PickerItem {
	return []PickerItem{
		{Label: "alice", Value: "alice"},
		{Label: "bob", Value: "bob", Current: true},
		{Label: "carol", Value: "carol"},
	}
}

func TestPickerStartsOnCurrent(t *testing.T) {
	m := newPicker("Wallets", pickerItems())
	assert.Equal(t, 1, m.cursor)
	assert.Contains(t, m.View(), "●")
}

func TestPickerNavigateAndSelect(t *testing.T) {
	var model tea.Model = newPicker("Wallets", pickerItems())
	model, _ = model.Update(keyMsg("down"))
	model, _ = model.Update(keyMsg("down"))
	model, cmd := model.Update(keyMsg("enter"))

	m := model.(pickerModel)
	require.NotNil(t, m.selected)
	assert.Equal(t, "carol", m.selected.Value)
	assert.NotNil(t, cmd)
}

func TestPickerCursorBounds(t *testing.T) {
	var model tea.Model = newPicker("Wallets", pickerItems())
	for i := 0; i < 5; i++ {
		model, _ = model.Update(keyMsg("up"))
	}
	assert.Equal(t, 0, model.(pickerModel).cursor)

	for i := 0; i < 5; i++ {
		model, _ = model.Update(keyMsg("j"))
	}
	assert.Equal(t, 2, model.(pickerModel).cursor)
}

func TestPickerCancel(t *testing.T) {
	var model tea.Model = newPicker("Wallets", pickerItems())
	model, _ = model.Update(keyMsg("esc"))

	m := model.(pickerModel)
	assert.True(t, m.quitting)
	assert.Nil(t, m.selected)
	assert.Empty(t, m.View())
}

func TestPickItemEmpty(t *testing.T) {
	_, err := PickItem("x", nil)
	assert.Error(t, err)
}
