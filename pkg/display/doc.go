// Package display defines the plot progression that gates which UI actions
// are valid. It contains:
//
//   - State: what the plot surface currently shows
//   - Action: the user requests that move between states
//   - Next: the guard deciding whether an action applies
//
// These types are shared by the session, the plot surface and the terminal
// UI so the gating rules live in one place.
package display
