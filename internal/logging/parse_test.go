package logging

import "testing"

func TestParseTextLine(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantLevel string
		wantMsg   string
	}{
		{
			name:      "slog text info",
			input:     `time=2025-01-01T10:00:00.000Z level=INFO msg="LED turned on" module=led brightness=40`,
			wantLevel: "info",
			wantMsg:   `msg="LED turned on" module=led brightness=40`,
		},
		{
			name:      "slog text warn",
			input:     `time=2025-01-01T10:00:00.000Z level=WARN msg="Tool call rejected" tool=set_led_color`,
			wantLevel: "warning",
			wantMsg:   `msg="Tool call rejected" tool=set_led_color`,
		},
		{
			name:      "slog text error",
			input:     `level=ERROR msg=boom`,
			wantLevel: "error",
			wantMsg:   `msg=boom`,
		},
		{
			name:      "slog json debug",
			input:     `{"time":"2025-01-01T10:00:00Z","level":"DEBUG","msg":"Tool call received","tool":"blink_led"}`,
			wantLevel: "debug",
			wantMsg:   "Tool call received",
		},
		{
			name:      "plain line",
			input:     "something happened",
			wantLevel: "info",
			wantMsg:   "something happened",
		},
		{
			name:      "level inside a value is ignored",
			input:     "msg=xlevel=ERROR",
			wantLevel: "info",
			wantMsg:   "msg=xlevel=ERROR",
		},
		{
			name:      "empty line",
			input:     "",
			wantLevel: "info",
			wantMsg:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotLevel, gotMsg := ParseTextLine(tt.input)
			if gotLevel != tt.wantLevel {
				t.Errorf("ParseTextLine() level = %q, want %q", gotLevel, tt.wantLevel)
			}
			if gotMsg != tt.wantMsg {
				t.Errorf("ParseTextLine() msg = %q, want %q", gotMsg, tt.wantMsg)
			}
		})
	}
}
