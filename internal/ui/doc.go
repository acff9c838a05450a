// Package ui implements the terminal panel using bubbletea's Elm architecture.
//
// The panel has four tabs, the first active on start:
//  1. [PlayerTab] : Current track, seek bar, playback state, volume, and flags
//  2. [PlaylistTab] : The play queue; enter plays the selected track
//  3. [BrowserTab] : Library directories, stored playlists, and files
//  4. [EventsTab] : The most recent events received on the event channel
//
// The header shows the tabs, the event channel's connection state, and a clock refreshed every second.
// Player changes, connection changes, and events arrive from other goroutines through tea.Program.Send
// using [PlayerChangedMsg], [ConnectionMsg], and [EventMsg]; everything else is produced by commands the
// [Model] issues itself.
//
// Keyboard navigation uses number keys and tab to switch views, vim-style bindings in lists, and
// single-key transport controls with contextual help displayed via charmbracelet/bubbles/help.
package ui
