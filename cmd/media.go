package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/homepanel/internal/media"
	"github.com/desertthunder/homepanel/internal/shared"
	"github.com/urfave/cli/v3"
)

type handlerRow struct {
	Name      string   `json:"name"`
	IconClass string   `json:"icon_class"`
	Items     []string `json:"items"`
}

// MediaHandlers lists the registered media handlers and their dropdown entries.
func (r *Runner) MediaHandlers(ctx context.Context, cmd *cli.Command) error {
	if r.media == nil {
		return fmt.Errorf("%w: no media handlers", shared.ErrServiceUnavailable)
	}

	var rows []handlerRow
	for _, name := range r.media.Names() {
		h, err := r.media.Get(name)
		if err != nil {
			return err
		}
		row := handlerRow{Name: h.Name, IconClass: h.IconClass}
		for _, it := range h.Items {
			row.Items = append(row.Items, it.Text)
		}
		rows = append(rows, row)
	}

	return r.write(cmd.String("format"), rows, func() error {
		for _, row := range rows {
			r.writePlain("%s (%s)\n", row.Name, row.IconClass)
			for _, it := range row.Items {
				r.writePlain("  - %s\n", it)
			}
		}
		return nil
	})
}

// MediaRun runs a handler's dropdown entry against a resource. Without --handler the first
// handler accepting the resource is used.
func (r *Runner) MediaRun(ctx context.Context, cmd *cli.Command) error {
	resource := cmd.StringArg("resource")
	if resource == "" {
		return fmt.Errorf("%w: resource", shared.ErrMissingArgument)
	}
	if r.media == nil {
		return fmt.Errorf("%w: no media handlers", shared.ErrServiceUnavailable)
	}

	var (
		h   *media.Handler
		err error
	)
	if name := cmd.String("handler"); name != "" {
		h, err = r.media.Get(name)
	} else {
		h, err = r.media.Resolve(resource)
	}
	if err != nil {
		return err
	}

	item := cmd.String("item")
	if err := h.Run(ctx, item, media.Item{Resource: resource}); err != nil {
		return err
	}

	r.logger.Info("media action", "handler", h.Name, "item", item, "resource", resource)
	return r.writePlain("✓ %s: %s\n", item, resource)
}

// Open launches the control server's web panel in the default browser.
func (r *Runner) Open(ctx context.Context, cmd *cli.Command) error {
	url := r.config.Server.HTTPURL()
	r.logger.Info("opening web panel", "url", url)
	return shared.OpenBrowser(url)
}
