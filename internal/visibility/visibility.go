// Package visibility decides whether a damage text stays on screen.
package visibility

import "github.com/sparroh/disablefloatingtext/internal/model"

// Toggle is the part of the toggle state the policy reads.
type Toggle interface {
	IsEnabled() bool
}

// ShouldHide reports whether e must be reclaimed. Only active texts about damage to a
// known non-player target are hidden, and only while the toggle is off. Texts with no
// target or a player target always stay.
func ShouldHide(e *model.Entry, t Toggle) bool {
	if t.IsEnabled() {
		return false
	}
	if !e.Active() {
		return false
	}
	return e.Target != nil && !e.Target.IsPlayer()
}
