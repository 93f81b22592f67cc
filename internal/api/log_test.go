package api

import (
	"testing"
)

func TestFormatLogLine(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "StandardLine",
			raw:  `time=2026-08-23T10:15:30Z level=INFO msg="Slide changed" slide=3`,
			want: "10:15:30 Slide changed (slide=3)",
		},
		{
			name: "DropsLongValues",
			raw:  `time=2026-08-23T10:15:30Z level=INFO msg="Relay: client attached" id=0b06b0d4-9f3e-4d8e-9c64-2d4f1a9be111 role=embed`,
			want: "10:15:30 Relay: client attached (role=embed)",
		},
		{
			name: "SortsParams",
			raw:  `time=2026-08-23T10:15:30Z level=INFO msg=Dispatch key=viewpoint dispatcher=scroll`,
			want: "10:15:30 Dispatch (dispatcher=scroll, key=viewpoint)",
		},
		{
			name: "NoMatchesPassthrough",
			raw:  "plain text line",
			want: "plain text line",
		},
		{
			name: "Empty",
			raw:  "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatLogLine(tt.raw); got != tt.want {
				t.Errorf("formatLogLine() = %q, want %q", got, tt.want)
			}
		})
	}
}
