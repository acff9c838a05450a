package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/homepanel/internal/clock"
	"github.com/desertthunder/homepanel/internal/media"
	"github.com/desertthunder/homepanel/internal/services"
	"github.com/desertthunder/homepanel/internal/shared"
	"github.com/desertthunder/homepanel/internal/tasks"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	api        *services.APIService
	music      *services.MusicService
	engine     *tasks.PanelEngine
	media      *media.Registry
	httpClient *http.Client
	clock      clock.Clock
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	API        *services.APIService // built from Config when nil
	HTTPClient *http.Client
	Clock      clock.Clock
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Config.API.Timeout()}
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}

	r := &Runner{
		configPath: opts.ConfigPath,
		httpClient: opts.HTTPClient,
		clock:      opts.Clock,
		logger:     opts.Logger,
		output:     opts.Output,
	}
	r.configure(opts.Config, opts.API)
	return r
}

// configure (re)builds the services from config. A nil api is built from the server settings.
func (r *Runner) configure(config *shared.Config, api *services.APIService) {
	if api == nil {
		api = services.NewAPIService(config.Server.HTTPURL(), r.httpClient,
			services.WithTarget(config.Server.Target),
			services.WithRateLimit(config.API.RequestsPerSecond, config.API.Burst),
			services.WithLogger(r.logger),
		)
	}

	r.config = config
	r.api = api
	r.music = services.NewMusicService(api)
	r.engine = tasks.NewPanelEngine(r.music)

	registry, err := media.NewRegistry(media.NewYouTubeHandler(api))
	if err != nil {
		r.logger.Warn("failed to register media handlers", "error", err)
	}
	r.media = registry
}

// SetLogger replaces the runner's logger, e.g. with a file logger while the TUI owns the terminal.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, apiCommand, musicCommand, eventsCommand, mediaCommand, openCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// write renders data as json, yaml, or (for anything else) through plain.
func (r *Runner) write(format string, data any, plain func() error) error {
	switch format {
	case "json":
		return r.writeJSON(data, true)
	case "yaml", "yml":
		return r.writeYAML(data)
	default:
		return plain()
	}
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

// writeYAML encodes data as YAML. Values are routed through JSON first so json tags and
// custom marshalers decide the field names.
func (r *Runner) writeYAML(data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return fmt.Errorf("failed to decode JSON: %w", err)
	}

	output, err := yaml.Marshal(generic)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
