package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/homepanel/internal/events"
	"github.com/desertthunder/homepanel/internal/media"
	"github.com/desertthunder/homepanel/internal/models"
	"github.com/desertthunder/homepanel/internal/repositories"
	"github.com/desertthunder/homepanel/internal/services"
	"github.com/desertthunder/homepanel/internal/shared"
	tu "github.com/desertthunder/homepanel/internal/testing"
	"github.com/urfave/cli/v3"
)

// backend is a fake control server answering /execute from a table of action outputs.
type backend struct {
	mu       sync.Mutex
	outputs  map[string]any
	requests []models.Request
}

func newBackend(t *testing.T, outputs map[string]any) (*backend, *httptest.Server) {
	t.Helper()

	b := &backend{outputs: outputs}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req models.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}

		b.mu.Lock()
		b.requests = append(b.requests, req)
		output, ok := b.outputs[req.Action]
		b.mu.Unlock()

		errs := []any{}
		if !ok {
			errs = append(errs, "unknown action "+req.Action)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":       req.ID,
			"type":     "response",
			"response": map[string]any{"output": output, "errors": errs},
		})
	}))
	t.Cleanup(srv.Close)
	return b, srv
}

func (b *backend) last(t *testing.T) models.Request {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.requests) == 0 {
		t.Fatal("expected at least one request")
	}
	return b.requests[len(b.requests)-1]
}

var playingStatus = map[string]any{
	"state":  "play",
	"volume": "60",
	"random": "1",
	"repeat": "0",
	"time":   "75:562",
}

func testRunner(t *testing.T, srv *httptest.Server) (*Runner, *bytes.Buffer) {
	t.Helper()

	config := shared.DefaultConfig()
	config.Database.Path = filepath.Join(t.TempDir(), "events.db")

	output := &bytes.Buffer{}
	opts := RunnerOpts{
		Config: config,
		Output: output,
		Logger: shared.NewLogger(&bytes.Buffer{}),
		Clock:  tu.NewFakeClock(time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)),
	}
	if srv != nil {
		opts.API = services.NewAPIService(srv.URL, srv.Client())
	}
	return NewRunner(opts), output
}

func runCLI(r *Runner, args ...string) error {
	app := &cli.Command{Name: "homepanel", Commands: r.register(), Writer: &bytes.Buffer{}}
	return app.Run(context.Background(), append([]string{"homepanel"}, args...))
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			api := services.NewAPIService("http://example.com", httpClient)

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
				API:        api,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.api != api {
				t.Error("expected api to be set")
			}
		})

		t.Run("with nil options uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
			if runner.clock == nil {
				t.Error("expected default clock to be set")
			}
			if runner.httpClient.Timeout != runner.config.API.Timeout() {
				t.Errorf("expected timeout %v, got %v", runner.config.API.Timeout(), runner.httpClient.Timeout)
			}
		})

		t.Run("builds services from config", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.api == nil || runner.music == nil || runner.engine == nil {
				t.Fatal("expected services to be built")
			}
			if runner.api.BaseURL() != "http://localhost:8008" {
				t.Errorf("expected base URL from config, got %s", runner.api.BaseURL())
			}
			if names := runner.media.Names(); len(names) != 1 || names[0] != media.YouTubeName {
				t.Errorf("expected the youtube handler, got %v", names)
			}
		})

		t.Run("with configPath sets field", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{ConfigPath: "/test/path/config.toml"})

			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if output.String() != expected {
				t.Errorf("expected %q, got %q", expected, output.String())
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			err := runner.writeJSON(make(chan int), false)
			if err == nil || !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writeYAML", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		data := struct {
			Name  string `json:"name"`
			Count int    `json:"count"`
		}{"queue", 3}
		if err := runner.writeYAML(data); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		result := output.String()
		if !strings.Contains(result, "name: queue") || !strings.Contains(result, "count: 3") {
			t.Errorf("expected YAML keyed by json tags, got %q", result)
		}
	})

	t.Run("write", func(t *testing.T) {
		tests := []struct {
			format   string
			expected string
		}{
			{"json", `"a": 1`},
			{"yaml", "a: 1"},
			{"text", "plain"},
			{"", "plain"},
		}

		for _, tc := range tests {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.write(tc.format, map[string]int{"a": 1}, func() error {
				return runner.writePlain("plain")
			})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !strings.Contains(output.String(), tc.expected) {
				t.Errorf("format %q: expected %q in %q", tc.format, tc.expected, output.String())
			}
		}
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "hello world" {
				t.Errorf("expected 'hello world', got %q", output.String())
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		expected := []string{"setup", "api", "music", "events", "media", "open", "tui"}
		if len(commands) != len(expected) {
			t.Fatalf("expected %d commands, got %d", len(expected), len(commands))
		}
		for i, cmd := range commands {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			if cmd.Name != expected[i] {
				t.Errorf("expected command %q at index %d, got %q", expected[i], i, cmd.Name)
			}
		}
	})
}

func TestActionArgs(t *testing.T) {
	t.Run("merges object and pairs", func(t *testing.T) {
		args, err := actionArgs(`{"vol": 10, "name": "x"}`, []string{"vol=40", "resource=file.mp3", "flag=true"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if args["vol"] != float64(40) {
			t.Errorf("expected pair to override object, got %v", args["vol"])
		}
		if args["name"] != "x" {
			t.Errorf("expected name to be kept, got %v", args["name"])
		}
		if args["resource"] != "file.mp3" {
			t.Errorf("expected string value, got %v", args["resource"])
		}
		if args["flag"] != true {
			t.Errorf("expected boolean value, got %v", args["flag"])
		}
	})

	t.Run("empty input", func(t *testing.T) {
		args, err := actionArgs("", nil)
		if err != nil || len(args) != 0 {
			t.Errorf("expected empty args, got %v (%v)", args, err)
		}
	})

	t.Run("invalid input", func(t *testing.T) {
		for _, tc := range []struct {
			object string
			pairs  []string
		}{
			{`[1, 2]`, nil},
			{`{`, nil},
			{"", []string{"novalue"}},
			{"", []string{"=value"}},
		} {
			if _, err := actionArgs(tc.object, tc.pairs); !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput for %q %v, got %v", tc.object, tc.pairs, err)
			}
		}
	})
}

func TestParsePosition(t *testing.T) {
	tests := []struct {
		input    string
		expected int
		wantErr  bool
	}{
		{"90", 90, false},
		{"1:30", 90, false},
		{"0:05", 5, false},
		{"10:00", 600, false},
		{"-1", 0, true},
		{"1:60", 0, true},
		{"a:10", 0, true},
		{"abc", 0, true},
	}

	for _, tc := range tests {
		got, err := parsePosition(tc.input)
		if tc.wantErr {
			if !errors.Is(err, shared.ErrInvalidArgument) {
				t.Errorf("%q: expected ErrInvalidArgument, got %v", tc.input, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: expected no error, got %v", tc.input, err)
		}
		if got != tc.expected {
			t.Errorf("%q: expected %d, got %d", tc.input, tc.expected, got)
		}
	}
}

func TestMusicCommands(t *testing.T) {
	outputs := map[string]any{
		"music.mpd.status":      playingStatus,
		"music.mpd.currentsong": map[string]any{"file": "jazz/so_what.mp3", "artist": "Miles Davis", "title": "So What", "time": "562"},
		"music.mpd.playlistinfo": []any{
			map[string]any{"file": "a.mp3", "title": "First", "time": "61"},
			map[string]any{"file": "b.mp3", "artist": "B", "title": "Second"},
		},
		"music.mpd.lsinfo": []any{
			map[string]any{"directory": "jazz"},
			map[string]any{"playlist": "favourites"},
			map[string]any{"file": "intro.mp3"},
		},
		"music.mpd.pause":   map[string]any{"state": "pause", "volume": "60", "time": "75:562"},
		"music.mpd.play":    playingStatus,
		"music.mpd.setvol":  nil,
		"music.mpd.seekcur": map[string]any{"state": "play", "volume": "60", "time": "90:562"},
	}

	t.Run("status", func(t *testing.T) {
		_, srv := newBackend(t, outputs)
		runner, output := testRunner(t, srv)

		if err := runCLI(runner, "music", "status"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		result := output.String()
		for _, want := range []string{"State:    play", "Position: 1:15 / 9:22", "Volume:   60%", "Random:   on"} {
			if !strings.Contains(result, want) {
				t.Errorf("expected %q in %q", want, result)
			}
		}
	})

	t.Run("status json", func(t *testing.T) {
		_, srv := newBackend(t, outputs)
		runner, output := testRunner(t, srv)

		if err := runCLI(runner, "music", "status", "--format", "json"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		var status map[string]any
		if err := json.Unmarshal(output.Bytes(), &status); err != nil {
			t.Fatalf("expected JSON output, got %q: %v", output.String(), err)
		}
		if status["state"] != "play" {
			t.Errorf("expected state 'play', got %v", status["state"])
		}
	})

	t.Run("current", func(t *testing.T) {
		_, srv := newBackend(t, outputs)
		runner, output := testRunner(t, srv)

		if err := runCLI(runner, "music", "current"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if expected := "Miles Davis - So What (9:22)\n"; output.String() != expected {
			t.Errorf("expected %q, got %q", expected, output.String())
		}
	})

	t.Run("queue", func(t *testing.T) {
		_, srv := newBackend(t, outputs)
		runner, output := testRunner(t, srv)

		if err := runCLI(runner, "music", "queue"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		result := output.String()
		if !strings.Contains(result, "Play queue (2 tracks)") {
			t.Errorf("expected header, got %q", result)
		}
		if !strings.Contains(result, "  1. First (1:01)") || !strings.Contains(result, "  2. B - Second") {
			t.Errorf("expected numbered tracks, got %q", result)
		}
	})

	t.Run("browse", func(t *testing.T) {
		b, srv := newBackend(t, outputs)
		runner, output := testRunner(t, srv)

		if err := runCLI(runner, "music", "browse", "jazz"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if uri := b.last(t).Args["uri"]; uri != "jazz" {
			t.Errorf("expected uri 'jazz', got %v", uri)
		}

		result := output.String()
		for _, want := range []string{"📁 jazz", "☰  favourites", "♪  intro.mp3"} {
			if !strings.Contains(result, want) {
				t.Errorf("expected %q in %q", want, result)
			}
		}
	})

	t.Run("transport", func(t *testing.T) {
		b, srv := newBackend(t, outputs)
		runner, output := testRunner(t, srv)

		if err := runCLI(runner, "music", "pause"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if action := b.last(t).Action; action != "music.mpd.pause" {
			t.Errorf("expected music.mpd.pause, got %s", action)
		}
		if !strings.Contains(output.String(), "State:    pause") {
			t.Errorf("expected the resulting status, got %q", output.String())
		}
	})

	t.Run("play resource", func(t *testing.T) {
		b, srv := newBackend(t, outputs)
		runner, _ := testRunner(t, srv)

		if err := runCLI(runner, "music", "play", "jazz/so_what.mp3"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if resource := b.last(t).Args["resource"]; resource != "jazz/so_what.mp3" {
			t.Errorf("expected resource to be sent, got %v", resource)
		}
	})

	t.Run("volume", func(t *testing.T) {
		b, srv := newBackend(t, outputs)
		runner, output := testRunner(t, srv)

		if err := runCLI(runner, "music", "volume", "40"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if vol := b.last(t).Args["vol"]; vol != float64(40) {
			t.Errorf("expected vol 40, got %v", vol)
		}
		if output.String() != "Volume: 40%\n" {
			t.Errorf("unexpected output %q", output.String())
		}
	})

	t.Run("volume relative", func(t *testing.T) {
		b, srv := newBackend(t, outputs)
		runner, _ := testRunner(t, srv)

		if err := runCLI(runner, "music", "volume", "+50"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if vol := b.last(t).Args["vol"]; vol != float64(100) {
			t.Errorf("expected vol clamped to 100, got %v", vol)
		}
	})

	t.Run("volume invalid", func(t *testing.T) {
		_, srv := newBackend(t, outputs)
		runner, _ := testRunner(t, srv)

		if err := runCLI(runner, "music", "volume", "loud"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
		if err := runCLI(runner, "music", "volume"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("seek", func(t *testing.T) {
		b, srv := newBackend(t, outputs)
		runner, output := testRunner(t, srv)

		if err := runCLI(runner, "music", "seek", "1:30"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if value := b.last(t).Args["value"]; value != float64(90) {
			t.Errorf("expected value 90, got %v", value)
		}
		if !strings.Contains(output.String(), "Position: 1:30 / 9:22") {
			t.Errorf("expected the resulting position, got %q", output.String())
		}
	})

	t.Run("load", func(t *testing.T) {
		_, srv := newBackend(t, outputs)
		runner, output := testRunner(t, srv)

		if err := runCLI(runner, "music", "load"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		result := output.String()
		if !strings.Contains(result, "Queue:    2 tracks") {
			t.Errorf("expected queue summary, got %q", result)
		}
		if strings.Contains(result, "✗") {
			t.Errorf("expected no failures, got %q", result)
		}
	})

	t.Run("export", func(t *testing.T) {
		_, srv := newBackend(t, outputs)
		runner, output := testRunner(t, srv)
		path := filepath.Join(t.TempDir(), "queue.csv")

		if err := runCLI(runner, "music", "export", "--format", "csv", "--output", path); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		tu.AssertFileExists(t, path)
		if content := tu.MustReadFile(t, path); !strings.Contains(content, "Second") {
			t.Errorf("expected tracks in export, got %q", content)
		}
		if !strings.Contains(output.String(), "Exported 2 tracks") {
			t.Errorf("unexpected output %q", output.String())
		}
	})

	t.Run("playlists export", func(t *testing.T) {
		withPlaylist := map[string]any{"music.mpd.listplaylistinfo": []any{map[string]any{"file": "a.mp3", "title": "First"}}}
		for k, v := range outputs {
			withPlaylist[k] = v
		}
		_, srv := newBackend(t, withPlaylist)
		runner, output := testRunner(t, srv)
		dir := filepath.Join(t.TempDir(), "out")

		if err := runCLI(runner, "music", "playlists", "export", "--format", "json", "--output-dir", dir, "--rate", "100"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		tu.AssertFileExists(t, filepath.Join(dir, "favourites.json"))
		tu.AssertFileExists(t, filepath.Join(dir, "export_manifest.json"))
		if !strings.Contains(output.String(), "Exported 1/1 playlists") {
			t.Errorf("unexpected output %q", output.String())
		}
	})

	t.Run("backend errors", func(t *testing.T) {
		_, srv := newBackend(t, map[string]any{})
		runner, _ := testRunner(t, srv)

		if err := runCLI(runner, "music", "status"); !errors.Is(err, shared.ErrBackendResponse) {
			t.Errorf("expected ErrBackendResponse, got %v", err)
		}
	})
}

func TestAPICommands(t *testing.T) {
	t.Run("exec", func(t *testing.T) {
		b, srv := newBackend(t, map[string]any{"light.hue.on": map[string]any{"on": true}})
		runner, output := testRunner(t, srv)

		if err := runCLI(runner, "api", "exec", "--arg", "groups=[\"Living\"]", "light.hue.on"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		req := b.last(t)
		if req.Action != "light.hue.on" {
			t.Errorf("expected action light.hue.on, got %s", req.Action)
		}
		if groups, ok := req.Args["groups"].([]any); !ok || len(groups) != 1 || groups[0] != "Living" {
			t.Errorf("expected groups argument, got %v", req.Args["groups"])
		}
		if !strings.Contains(output.String(), `"on": true`) {
			t.Errorf("expected output JSON, got %q", output.String())
		}
	})

	t.Run("exec without action", func(t *testing.T) {
		runner, _ := testRunner(t, nil)

		if err := runCLI(runner, "api", "exec"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("send", func(t *testing.T) {
		var got map[string]any
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewDecoder(r.Body).Decode(&got)
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{}`))
		}))
		defer srv.Close()
		runner, output := testRunner(t, srv)

		if err := runCLI(runner, "api", "send", "--arg", "volume=30", events.VolumeChange); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		args, _ := got["args"].(map[string]any)
		if got["type"] != "event" || args["type"] != events.VolumeChange || args["volume"] != float64(30) {
			t.Errorf("unexpected event envelope %v", got)
		}
		if !strings.Contains(output.String(), "Sent") {
			t.Errorf("unexpected output %q", output.String())
		}
	})

	t.Run("get", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/status" {
				t.Errorf("expected path '/status', got %s", r.URL.Path)
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"ok":true}`))
		}))
		defer srv.Close()
		runner, output := testRunner(t, srv)

		if err := runCLI(runner, "api", "get", "--json", "/status"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if output.String() != `{"ok":true}`+"\n" {
			t.Errorf("expected compact JSON, got %q", output.String())
		}
	})
}

func TestMediaCommands(t *testing.T) {
	t.Run("handlers", func(t *testing.T) {
		runner, output := testRunner(t, nil)

		if err := runCLI(runner, "media", "handlers"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		result := output.String()
		if !strings.Contains(result, "youtube (fab fa-youtube)") || !strings.Contains(result, "  - View info") {
			t.Errorf("unexpected output %q", result)
		}
	})

	t.Run("run resolves handler", func(t *testing.T) {
		b, srv := newBackend(t, map[string]any{"media.play": nil})
		runner, _ := testRunner(t, srv)

		url := "https://www.youtube.com/watch?v=dQw4w9WgXcQ"
		if err := runCLI(runner, "media", "run", url); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		req := b.last(t)
		if req.Action != "media.play" || req.Args["resource"] != url {
			t.Errorf("unexpected request %+v", req)
		}
	})

	t.Run("run unknown resource", func(t *testing.T) {
		runner, _ := testRunner(t, nil)

		if err := runCLI(runner, "media", "run", "https://example.com/a.mp3"); !errors.Is(err, shared.ErrHandlerNotFound) {
			t.Errorf("expected ErrHandlerNotFound, got %v", err)
		}
	})

	t.Run("run not implemented item", func(t *testing.T) {
		runner, _ := testRunner(t, nil)

		err := runCLI(runner, "media", "run", "--item", media.ItemDownload, "youtube:video:abc")
		if !errors.Is(err, shared.ErrNotImplemented) {
			t.Errorf("expected ErrNotImplemented, got %v", err)
		}
	})
}

func TestEventsCommands(t *testing.T) {
	seed := func(t *testing.T, r *Runner, at ...time.Time) {
		t.Helper()
		db, repo, err := r.openJournal()
		if err != nil {
			t.Fatalf("failed to open journal: %v", err)
		}
		defer db.Close()

		for _, ts := range at {
			if err := repo.Create(models.NewEventRecord(events.MusicPlay, "pi", `{"type":"event"}`, ts)); err != nil {
				t.Fatalf("failed to seed event: %v", err)
			}
		}
	}
	now := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

	t.Run("history", func(t *testing.T) {
		runner, output := testRunner(t, nil)
		seed(t, runner, now.Add(-time.Hour), now)

		if err := runCLI(runner, "events", "history", "--format", "json"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		var rows []eventRow
		if err := json.Unmarshal(output.Bytes(), &rows); err != nil {
			t.Fatalf("expected JSON output, got %q: %v", output.String(), err)
		}
		if len(rows) != 2 || rows[0].Sequence != 2 {
			t.Errorf("expected 2 rows newest first, got %+v", rows)
		}
		var payload map[string]any
		if err := json.Unmarshal(rows[0].Payload, &payload); err != nil || payload["type"] != "event" {
			t.Errorf("expected the stored payload, got %s", rows[0].Payload)
		}
	})

	t.Run("history empty", func(t *testing.T) {
		runner, output := testRunner(t, nil)

		if err := runCLI(runner, "events", "history"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if output.String() != "No events recorded\n" {
			t.Errorf("unexpected output %q", output.String())
		}
	})

	t.Run("prune", func(t *testing.T) {
		runner, output := testRunner(t, nil)
		seed(t, runner, now.Add(-72*time.Hour), now.Add(-time.Hour))

		if err := runCLI(runner, "events", "prune", "--older-than", "24h"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "Removed 1 events") {
			t.Errorf("unexpected output %q", output.String())
		}

		db, repo, _ := runner.openJournal()
		defer db.Close()
		if n, _ := repo.Count(""); n != 1 {
			t.Errorf("expected 1 remaining event, got %d", n)
		}
	})

	t.Run("printEvent", func(t *testing.T) {
		runner, output := testRunner(t, nil)

		ev, err := events.Parse(`{"type":"event","origin":"pi","args":{"type":"` + events.NewPlayingTrack + `","track":{"file":"a.mp3","artist":"A","title":"T"}}}`)
		if err != nil {
			t.Fatalf("failed to parse event: %v", err)
		}
		runner.printEvent("text", ev)

		expected := "09:30:00 NewPlayingTrackEvent from pi: A - T\n"
		if output.String() != expected {
			t.Errorf("expected %q, got %q", expected, output.String())
		}
	})

	t.Run("journal handler", func(t *testing.T) {
		runner, _ := testRunner(t, nil)
		db, repo, err := runner.openJournal()
		if err != nil {
			t.Fatalf("failed to open journal: %v", err)
		}
		defer db.Close()

		d := events.NewDispatcher(runner.logger)
		d.HandleAll(repositories.NewJournal(repo, runner.clock, runner.logger).Record)
		d.Observe(map[string]any{"type": "event", "args": map[string]any{"type": events.MusicStop}})

		if n, _ := repo.Count(""); n != 1 {
			t.Errorf("expected 1 journaled event, got %d", n)
		}
	})
}
