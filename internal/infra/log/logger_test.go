package log

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew_Levels(t *testing.T) {
	cases := []struct {
		env, level string
		want       zapcore.Level
	}{
		{"development", "", zapcore.DebugLevel},
		{"production", "", zapcore.InfoLevel},
		{"production", "warn", zapcore.WarnLevel},
		{"development", "nonsense", zapcore.DebugLevel},
	}
	for _, tc := range cases {
		l, err := New(tc.env, tc.level)
		if err != nil {
			t.Fatalf("New(%q, %q): %v", tc.env, tc.level, err)
		}
		if !l.Core().Enabled(tc.want) {
			t.Fatalf("%s/%s: %s must be enabled", tc.env, tc.level, tc.want)
		}
		if tc.want > zapcore.DebugLevel && l.Core().Enabled(tc.want-1) {
			t.Fatalf("%s/%s: below %s must be disabled", tc.env, tc.level, tc.want)
		}
	}
}
