package main

import (
	"bytes"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/axin/api"
	"github.com/kbukum/axin/devserver"
	"github.com/kbukum/axin/logger"
)

// run executes the root command with args and returns what it printed.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	globalFlags = GlobalFlags{}
	appConfig = Config{}
	chatID, chatMode = "", modeSSE

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func newBackend(t *testing.T) string {
	t.Helper()
	s, err := devserver.New(devserver.Config{ChunkDelay: time.Millisecond}, logger.Nop())
	if err != nil {
		t.Fatalf("devserver.New() error: %v", err)
	}
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts.URL + "/api"
}

func TestConfigDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if cfg.API.BaseURL != api.DefaultBaseURL {
		t.Errorf("api.base_url = %q", cfg.API.BaseURL)
	}
	if cfg.Tracing.ServiceName != cfg.Base.Name {
		t.Errorf("tracing service name %q, want %q", cfg.Tracing.ServiceName, cfg.Base.Name)
	}
	if cfg.Tracing.Environment != cfg.Base.Environment {
		t.Errorf("tracing environment %q, want %q", cfg.Tracing.Environment, cfg.Base.Environment)
	}
	if cfg.Base.Version == "" {
		t.Error("base.version should default to the build version")
	}
	if cfg.Server.Port != 8123 {
		t.Errorf("server.port = %d", cfg.Server.Port)
	}
}

func TestConfigValidateRejectsBadSections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad base url", func(c *Config) { c.API.BaseURL = "not a url" }, "api:"},
		{"bad sample rate", func(c *Config) { c.Tracing.SampleRate = 2 }, "tracing:"},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var cfg Config
			cfg.ApplyDefaults()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestRoutesCommand(t *testing.T) {
	t.Run("table", func(t *testing.T) {
		out, err := run(t, "routes")
		if err != nil {
			t.Fatal(err)
		}
		for _, want := range []string{"PATH", "/plan-app", "/manus-app", "home"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("resolve", func(t *testing.T) {
		out, err := run(t, "routes", "/manus-app/?tab=1")
		if err != nil {
			t.Fatal(err)
		}
		if out != "/manus-app\tManusApp\tmanus-app\n" {
			t.Errorf("output = %q", out)
		}
	})

	t.Run("unknown", func(t *testing.T) {
		if _, err := run(t, "routes", "/nowhere"); err == nil {
			t.Error("expected error for unknown path")
		}
	})
}

func TestChatIDCommand(t *testing.T) {
	out, err := run(t, "chatid")
	if err != nil {
		t.Fatal(err)
	}
	if !regexp.MustCompile(`^chat_\d+_[0-9a-z]{9}\n$`).MatchString(out) {
		t.Errorf("output = %q", out)
	}
}

func TestAskCommand(t *testing.T) {
	base := newBackend(t)
	out, err := run(t, "--base-url", base, "ask", "--chat-id", "c1", "hello")
	if err != nil {
		t.Fatal(err)
	}
	if out != "[c1] hello\n" {
		t.Errorf("output = %q", out)
	}
}

func TestChatCommand(t *testing.T) {
	base := newBackend(t)
	for _, mode := range []string{modeSSE, modeServerSentEvent, modeEmitter} {
		t.Run(mode, func(t *testing.T) {
			out, err := run(t, "--base-url", base, "chat", "--mode", mode, "--chat-id", "c2", "hello there")
			if err != nil {
				t.Fatal(err)
			}
			if out != "[c2] hello there\n" {
				t.Errorf("output = %q", out)
			}
		})
	}

	t.Run("unknown mode", func(t *testing.T) {
		if _, err := run(t, "--base-url", base, "chat", "--mode", "ws", "hi"); err == nil {
			t.Error("expected error for unknown mode")
		}
	})
}

func TestManusCommand(t *testing.T) {
	base := newBackend(t)
	out, err := run(t, "--base-url", base, "manus", "tidy up")
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 steps, got %q", out)
	}
	if !strings.HasPrefix(lines[0], "Step 1") {
		t.Errorf("first step = %q", lines[0])
	}
}

func TestHealthCommand(t *testing.T) {
	base := newBackend(t)
	out, err := run(t, "--base-url", base, "health")
	if err != nil {
		t.Fatal(err)
	}
	if out != base+": healthy\n" {
		t.Errorf("output = %q", out)
	}

	_, err = run(t, "--base-url", "http://127.0.0.1:1/api", "health")
	if err == nil || !strings.Contains(err.Error(), "is unreachable") {
		t.Errorf("expected unreachable error, got %v", err)
	}
}

func TestBuildRegistry(t *testing.T) {
	appConfig = Config{}
	appConfig.ApplyDefaults()

	registry, err := buildRegistry(appConfig.Server)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, c := range registry.All() {
		names = append(names, c.Name())
	}
	if strings.Join(names, ",") != "telemetry,devserver" {
		t.Errorf("components = %v", names)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "axin dev") {
		t.Errorf("output = %q", out)
	}
}
