// Package viz draws the year grid in the terminal.
//
//   - [Grid]: the pool's canvas. It keeps one rendered block per year and
//     composes the visible window for a scroll offset.
//   - [Canvas]: braille dot canvas used for the particle overlay.
//   - [Toasts]: the single-slot notice presenter.
//   - [Theme] and [Styles]: the dark and light palettes as lipgloss styles.
package viz
