package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandTilde(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		home     string
		expected string
	}{
		{name: "empty string", input: "", home: "/home/u", expected: ""},
		{name: "tilde alone", input: "~", home: "/home/u", expected: "/home/u"},
		{name: "tilde slash", input: "~/ssv.yaml", home: "/home/u", expected: "/home/u/ssv.yaml"},
		{name: "nested", input: "~/.config/ssv/config.yaml", home: "/home/u", expected: "/home/u/.config/ssv/config.yaml"},
		{name: "absolute unchanged", input: "/etc/ssv.yaml", home: "/home/u", expected: "/etc/ssv.yaml"},
		{name: "relative unchanged", input: "ssv.yaml", home: "/home/u", expected: "ssv.yaml"},
		{name: "other user unsupported", input: "~bob/ssv.yaml", home: "/home/u", expected: "~bob/ssv.yaml"},
		{name: "no home", input: "~/ssv.yaml", home: "", expected: "~/ssv.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExpandTilde(tt.input, tt.home))
		})
	}
}
