package ffmpeg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatDuration(t *testing.T) {
	testCases := []struct {
		desc    string
		seconds float64
		expect  string
	}{
		{desc: "zero", seconds: 0, expect: "0:0:0"},
		{desc: "seconds only", seconds: 42, expect: "0:0:42"},
		{desc: "minutes", seconds: 90, expect: "0:1:30"},
		{desc: "hours", seconds: 3600, expect: "1:0:0"},
		{desc: "mixed", seconds: 3723, expect: "1:2:3"},
		{desc: "fraction is truncated", seconds: 59.9, expect: "0:0:59"},
	}

	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			assert.Equal(t, tC.expect, FormatDuration(tC.seconds))
		})
	}
}
