package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func resetLogger() {
	Init(Options{})
}

func TestInit_LevelGating(t *testing.T) {
	cases := []struct {
		name          string
		opts          Options
		wantDebug     bool
		wantInfo      bool
		wantWarn      bool
		wantErrorOnly bool
	}{
		{name: "default is info level", opts: Options{}, wantDebug: false, wantInfo: true, wantWarn: true},
		{name: "debug flag lowers the floor", opts: Options{Debug: true}, wantDebug: true, wantInfo: true, wantWarn: true},
		{name: "quiet flag raises the floor to error", opts: Options{Quiet: true}, wantDebug: false, wantInfo: false, wantWarn: false, wantErrorOnly: true},
		{name: "quiet wins when both debug and quiet are set", opts: Options{Debug: true, Quiet: true}, wantDebug: false, wantInfo: false, wantWarn: false, wantErrorOnly: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			tc.opts.Output = buf
			Init(tc.opts)
			defer resetLogger()

			Debug("dbg-marker")
			gotDebug := strings.Contains(buf.String(), "dbg-marker")
			if gotDebug != tc.wantDebug {
				t.Errorf("debug logged = %v, want %v", gotDebug, tc.wantDebug)
			}

			buf.Reset()
			Info("info-marker")
			gotInfo := strings.Contains(buf.String(), "info-marker")
			if gotInfo != tc.wantInfo {
				t.Errorf("info logged = %v, want %v", gotInfo, tc.wantInfo)
			}

			buf.Reset()
			Warn("warn-marker")
			gotWarn := strings.Contains(buf.String(), "warn-marker")
			if gotWarn != tc.wantWarn {
				t.Errorf("warn logged = %v, want %v", gotWarn, tc.wantWarn)
			}

			buf.Reset()
			Error("error-marker")
			if !strings.Contains(buf.String(), "error-marker") {
				t.Error("error should always be logged regardless of level")
			}
		})
	}
}

func TestInit_HandlerFormat(t *testing.T) {
	t.Run("json handler emits structured fields", func(t *testing.T) {
		buf := &bytes.Buffer{}
		Init(Options{JSON: true, Output: buf})
		defer resetLogger()

		Info("structured", "count", 42)
		out := buf.String()
		for _, want := range []string{"{", "}", "level", "structured", "count", "42"} {
			if !strings.Contains(out, want) {
				t.Errorf("json output missing %q: %s", want, out)
			}
		}
	})

	t.Run("text handler emits a readable line", func(t *testing.T) {
		buf := &bytes.Buffer{}
		Init(Options{Output: buf})
		defer resetLogger()

		Info("plain message")
		out := buf.String()
		if !strings.Contains(out, "plain message") {
			t.Errorf("text output missing message: %s", out)
		}
		if !strings.Contains(strings.ToUpper(out), "INFO") {
			t.Errorf("text output missing level: %s", out)
		}
	})
}

func TestInit_CustomOutputWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	Init(Options{Output: buf})
	defer resetLogger()

	Info("routed to custom writer")
	if buf.Len() == 0 {
		t.Fatal("expected bytes written to the custom writer")
	}
}

func TestSetLogger_OverridesInit(t *testing.T) {
	buf := &bytes.Buffer{}
	custom := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	SetLogger(custom)
	defer resetLogger()

	Debug("from custom logger")
	if !strings.Contains(buf.String(), "from custom logger") {
		t.Error("SetLogger should make subsequent Debug calls use the supplied logger")
	}
}

func TestInit_LoggerOptionTakesPrecedence(t *testing.T) {
	buf := &bytes.Buffer{}
	custom := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	Init(Options{Logger: custom, JSON: true, Quiet: true})
	defer resetLogger()

	Debug("ignored the other fields")
	if !strings.Contains(buf.String(), "ignored the other fields") {
		t.Error("Options.Logger should short-circuit level/format options entirely")
	}
}

func TestWith_AttachesAttributes(t *testing.T) {
	buf := &bytes.Buffer{}
	Init(Options{Output: buf})
	defer resetLogger()

	l := With("request_id", "abc123")
	if l == nil {
		t.Fatal("With returned nil")
	}
	l.Info("handled request")

	out := buf.String()
	if !strings.Contains(out, "handled request") || !strings.Contains(out, "request_id") || !strings.Contains(out, "abc123") {
		t.Errorf("expected attributes carried into output: %s", out)
	}
}

func TestContextVariants_LogSameAsNonContext(t *testing.T) {
	ctx := context.Background()

	t.Run("DebugContext", func(t *testing.T) {
		buf := &bytes.Buffer{}
		Init(Options{Debug: true, Output: buf})
		defer resetLogger()
		DebugContext(ctx, "ctx debug")
		if !strings.Contains(buf.String(), "ctx debug") {
			t.Error("DebugContext did not log")
		}
	})

	t.Run("InfoContext", func(t *testing.T) {
		buf := &bytes.Buffer{}
		Init(Options{Output: buf})
		defer resetLogger()
		InfoContext(ctx, "ctx info")
		if !strings.Contains(buf.String(), "ctx info") {
			t.Error("InfoContext did not log")
		}
	})

	t.Run("ErrorContext", func(t *testing.T) {
		buf := &bytes.Buffer{}
		Init(Options{Output: buf})
		defer resetLogger()
		ErrorContext(ctx, "ctx error")
		if !strings.Contains(buf.String(), "ctx error") {
			t.Error("ErrorContext did not log")
		}
	})
}
