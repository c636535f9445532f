package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MKhiriev/go-pim-sync/models"
)

type choice int

const (
	choiceDeny choice = iota
	choiceAllow
)

// promptModel is the Allow/Deny dialog. Deny is preselected.
type promptModel struct {
	peer       models.PeerInfo
	deviceName string

	cursor   choice
	answered bool
	allowed  bool
}

func newPromptModel(peer models.PeerInfo, deviceName string) promptModel {
	return promptModel{peer: peer, deviceName: deviceName, cursor: choiceDeny}
}

func (m promptModel) Init() tea.Cmd {
	return nil
}

func (m promptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, keys.allow):
		return m.answer(true)
	case key.Matches(keyMsg, keys.deny):
		return m.answer(false)
	case key.Matches(keyMsg, keys.enter):
		return m.answer(m.cursor == choiceAllow)
	case key.Matches(keyMsg, keys.left):
		m.cursor = choiceAllow
	case key.Matches(keyMsg, keys.right):
		m.cursor = choiceDeny
	case key.Matches(keyMsg, keys.quit):
		return m, tea.Quit
	}
	return m, nil
}

func (m promptModel) answer(allow bool) (tea.Model, tea.Cmd) {
	m.answered = true
	m.allowed = allow
	return m, tea.Quit
}

func (m promptModel) View() string {
	data := fmt.Sprintf("A desktop wants to synchronize with %s.\n\n", valueOrDash(m.deviceName))
	data += fmt.Sprintf("Client:    %s\n", fitText(valueOrDash(m.peer.ClientID), 48))
	data += fmt.Sprintf("Address:   %s\n", valueOrDash(m.peer.Remote))
	data += fmt.Sprintf("Transport: %s\n\n", valueOrDash(m.peer.Transport))

	allow, deny := "  Allow  ", "  Deny  "
	if m.cursor == choiceAllow {
		allow = "[ Allow ]"
	} else {
		deny = "[ Deny ]"
	}
	data += allow + "    " + deny

	return renderPage("Pair new desktop?", data, "y allow    n deny    enter confirm    esc cancel")
}
