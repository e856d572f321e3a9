// SPDX-License-Identifier: EPL-2.0

package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/ik5/voxmix/engine"
)

// Run shows the player until the user quits.
func Run(eng *engine.Engine) error {
	_, err := tea.NewProgram(NewModel(eng), tea.WithAltScreen()).Run()
	return err
}
