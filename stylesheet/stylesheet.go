/*************************************************************************
 * Copyright 2026 the servicenow-agent authors. All rights reserved.
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package stylesheet centralizes the visual styling shared by interactive and
// one-shot output.
package stylesheet

import (
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
)

var (
	Prompt  = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	Header  = lipgloss.NewStyle().Bold(true)
	ErrText = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	Hint    = lipgloss.NewStyle().Faint(true)
	Count   = lipgloss.NewStyle().Foreground(lipgloss.Color("246"))
)

// NewTI returns a text input styled consistently with the rest of the UI.
func NewTI(placeholder string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = "> "
	ti.PromptStyle = Prompt
	ti.CharLimit = 0
	return ti
}
