package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/desertthunder/homepanel/internal/services"
	"github.com/desertthunder/homepanel/internal/shared"
	"github.com/urfave/cli/v3"
)

// APIGet makes a direct GET request to the control server
func (r *Runner) APIGet(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path", shared.ErrMissingArgument)
	}

	r.logger.Info("GET request", "path", path)

	resp, err := r.api.Get(ctx, path)
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
	}
	return r.writeRaw(resp, !cmd.Bool("json"))
}

// APIPost makes a direct POST request to the control server
func (r *Runner) APIPost(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	data := cmd.String("data")

	if path == "" {
		return fmt.Errorf("%w: path", shared.ErrMissingArgument)
	}
	if data == "" {
		return fmt.Errorf("%w: --data flag is required", shared.ErrMissingArgument)
	}

	r.logger.Info("POST request", "path", path)

	var jsonTest any
	if err := json.Unmarshal([]byte(data), &jsonTest); err != nil {
		return fmt.Errorf("%w: data is not valid JSON: %v", shared.ErrInvalidInput, err)
	}

	resp, err := r.api.Post(ctx, path, []byte(data))
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
	}
	return r.writeRaw(resp, true)
}

func (r *Runner) writeRaw(resp *services.APIResponse, pretty bool) error {
	if !resp.OK() {
		return fmt.Errorf("%w: status %d, body: %s", shared.ErrAPIRequest, resp.StatusCode, string(resp.Body))
	}

	if resp.IsJSON {
		return r.writeJSON(resp.JSONData, pretty)
	}

	r.output.Write(resp.Body)
	r.output.Write([]byte("\n"))
	return nil
}

// APIExec runs an action through /execute and prints its output.
func (r *Runner) APIExec(ctx context.Context, cmd *cli.Command) error {
	action := cmd.StringArg("action")
	if action == "" {
		return fmt.Errorf("%w: action", shared.ErrMissingArgument)
	}

	args, err := actionArgs(cmd.String("args"), cmd.StringSlice("arg"))
	if err != nil {
		return err
	}

	r.logger.Info("executing action", "action", action)
	resp, err := r.api.Execute(ctx, action, args)
	if err != nil {
		return err
	}

	var output any
	if len(resp.Response.Output) > 0 {
		if err := resp.Decode(&output); err != nil {
			return err
		}
	}
	return r.write(cmd.String("format"), output, func() error {
		return r.writeJSON(output, true)
	})
}

// APISend posts an event of the given class.
func (r *Runner) APISend(ctx context.Context, cmd *cli.Command) error {
	class := cmd.StringArg("class")
	if class == "" {
		return fmt.Errorf("%w: event class", shared.ErrMissingArgument)
	}

	args, err := actionArgs(cmd.String("args"), cmd.StringSlice("arg"))
	if err != nil {
		return err
	}

	if err := r.api.SendEvent(ctx, class, args); err != nil {
		return err
	}
	return r.writePlain("✓ Sent %s\n", class)
}

// actionArgs merges a JSON object with key=value pairs; pairs win. Values that parse as JSON
// keep their type, anything else is a string.
func actionArgs(object string, pairs []string) (map[string]any, error) {
	args := map[string]any{}

	if object != "" {
		if err := json.Unmarshal([]byte(object), &args); err != nil {
			return nil, fmt.Errorf("%w: --args is not a JSON object: %v", shared.ErrInvalidInput, err)
		}
	}

	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("%w: argument %q is not key=value", shared.ErrInvalidInput, pair)
		}

		var parsed any
		if err := json.Unmarshal([]byte(v), &parsed); err == nil {
			args[k] = parsed
		} else {
			args[k] = v
		}
	}

	if len(args) == 0 {
		return nil, nil
	}
	return args, nil
}
