package tui

import (
	"testing"

	"charm.land/bubbles/v2/key"
)

func TestViewHelpGroups(t *testing.T) {
	keys := newKeyMap()
	cases := []struct {
		name  string
		help  viewKeys
		short int
		full  int
	}{
		{name: "upload", help: keys.uploadHelp(), short: 6, full: 2},
		{name: "board", help: keys.boardHelp(), short: 6, full: 3},
		{name: "confirm", help: keys.confirmHelp(), short: 4, full: 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := len(tc.help.ShortHelp()); got != tc.short {
				t.Fatalf("short help = %d bindings, want %d", got, tc.short)
			}
			if got := len(tc.help.FullHelp()); got != tc.full {
				t.Fatalf("full help = %d groups, want %d", got, tc.full)
			}
		})
	}
}

func TestKeyMapBindings(t *testing.T) {
	keys := newKeyMap()
	cases := []struct {
		binding key.Binding
		msg     string
	}{
		{binding: keys.advanceTask, msg: "]"},
		{binding: keys.regressTask, msg: "["},
		{binding: keys.moveLeft, msg: "left"},
		{binding: keys.submit, msg: "enter"},
		{binding: keys.confirmNo, msg: "esc"},
		{binding: keys.switchView, msg: "tab"},
	}
	for _, tc := range cases {
		if !containsKey(tc.binding.Keys(), tc.msg) {
			t.Fatalf("binding %q missing key %q", tc.binding.Help().Key, tc.msg)
		}
	}
}

func containsKey(keys []string, want string) bool {
	for _, k := range keys {
		if k == want {
			return true
		}
	}
	return false
}
