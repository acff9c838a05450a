package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/homepanel/internal/formatter"
	"github.com/desertthunder/homepanel/internal/models"
	"github.com/desertthunder/homepanel/internal/shared"
	"github.com/desertthunder/homepanel/internal/tasks"
	"github.com/urfave/cli/v3"
)

// MusicStatus prints the player status.
func (r *Runner) MusicStatus(ctx context.Context, cmd *cli.Command) error {
	status, err := r.music.Status(ctx)
	if err != nil {
		return err
	}
	return r.write(cmd.String("format"), status, func() error {
		return r.printStatus(status)
	})
}

func (r *Runner) printStatus(s *models.MusicStatus) error {
	elapsed, length, hasLength, ok := s.Position()
	if s.PlayerState() == models.StateStop {
		ok = false
	}

	r.writePlain("State:    %s\n", s.PlayerState())
	r.writePlain("Position: %s / %s\n", formatter.Elapsed(elapsed, ok), formatter.Elapsed(length, ok && hasLength))
	r.writePlain("Volume:   %d%%\n", int(s.Volume))
	return r.writePlain("Random:   %s   Repeat: %s\n", onOff(s.Random != 0), onOff(s.Repeat != 0))
}

// MusicCurrent prints the current song.
func (r *Runner) MusicCurrent(ctx context.Context, cmd *cli.Command) error {
	track, err := r.music.CurrentSong(ctx)
	if err != nil {
		return err
	}
	return r.write(cmd.String("format"), track, func() error {
		if track.File == "" {
			return r.writePlain("Nothing is playing\n")
		}
		return r.writePlain("%s\n", trackLine(*track))
	})
}

// MusicQueue prints the play queue.
func (r *Runner) MusicQueue(ctx context.Context, cmd *cli.Command) error {
	tracks, err := r.music.PlaylistInfo(ctx)
	if err != nil {
		return err
	}
	return r.write(cmd.String("format"), tracks, func() error {
		r.writePlainHeader(fmt.Sprintf("Play queue (%d tracks)", len(tracks)))
		for i, t := range tracks {
			r.writePlain("%3d. %s\n", i+1, trackLine(t))
		}
		return nil
	})
}

// MusicBrowse lists a library directory, the root when no uri is given.
func (r *Runner) MusicBrowse(ctx context.Context, cmd *cli.Command) error {
	uri := cmd.StringArg("uri")
	listing, err := r.music.Browse(ctx, uri)
	if err != nil {
		return err
	}
	return r.write(cmd.String("format"), listing, func() error {
		for _, d := range listing.Directories {
			r.writePlain("📁 %s\n", d)
		}
		for _, p := range listing.Playlists {
			r.writePlain("☰  %s\n", p)
		}
		for _, f := range listing.Files {
			r.writePlain("♪  %s\n", f.File)
		}
		return nil
	})
}

// MusicPlay resumes playback, or plays the given resource.
func (r *Runner) MusicPlay(ctx context.Context, cmd *cli.Command) error {
	resource := cmd.StringArg("resource")
	if resource == "" {
		return r.transport(ctx, "play")
	}

	status, err := r.music.PlayFile(ctx, resource)
	if err != nil {
		return err
	}
	return r.printStatus(status)
}

// MusicTransport returns an action for an argument-less transport command.
func (r *Runner) MusicTransport(action string) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		return r.transport(ctx, action)
	}
}

func (r *Runner) transport(ctx context.Context, action string) error {
	status, err := r.music.Transport(ctx, action)
	if err != nil {
		return err
	}
	return r.printStatus(status)
}

// MusicVolume sets the volume, or adjusts it with a leading + or -.
func (r *Runner) MusicVolume(ctx context.Context, cmd *cli.Command) error {
	arg := cmd.StringArg("value")
	if arg == "" {
		return fmt.Errorf("%w: volume", shared.ErrMissingArgument)
	}

	vol, err := strconv.Atoi(arg)
	if err != nil {
		return fmt.Errorf("%w: volume %q", shared.ErrInvalidArgument, arg)
	}

	if strings.HasPrefix(arg, "+") || strings.HasPrefix(arg, "-") {
		status, err := r.music.Status(ctx)
		if err != nil {
			return err
		}
		vol = min(max(int(status.Volume)+vol, 0), 100)
	}

	if err := r.music.SetVolume(ctx, vol); err != nil {
		return err
	}
	return r.writePlain("Volume: %d%%\n", vol)
}

// MusicSeek moves the current track to the given position, in seconds or m:ss.
func (r *Runner) MusicSeek(ctx context.Context, cmd *cli.Command) error {
	arg := cmd.StringArg("position")
	if arg == "" {
		return fmt.Errorf("%w: position", shared.ErrMissingArgument)
	}

	value, err := parsePosition(arg)
	if err != nil {
		return err
	}

	status, err := r.music.SeekCur(ctx, value)
	if err != nil {
		return err
	}
	return r.printStatus(status)
}

// parsePosition accepts whole seconds or m:ss.
func parsePosition(s string) (int, error) {
	if m, sec, ok := strings.Cut(s, ":"); ok {
		minutes, err1 := strconv.Atoi(m)
		seconds, err2 := strconv.Atoi(sec)
		if err1 != nil || err2 != nil || minutes < 0 || seconds < 0 || seconds > 59 {
			return 0, fmt.Errorf("%w: position %q", shared.ErrInvalidArgument, s)
		}
		return minutes*60 + seconds, nil
	}

	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%w: position %q", shared.ErrInvalidArgument, s)
	}
	return v, nil
}

// MusicLoad fetches everything the panel shows and reports per-call progress.
func (r *Runner) MusicLoad(ctx context.Context, cmd *cli.Command) error {
	format := cmd.String("format")
	progress, wait := r.reportProgress(format == "text" || format == "")
	data, err := r.engine.Load(ctx, progress)
	wait()
	if err != nil {
		return err
	}

	summary := map[string]any{
		"status":  data.Status,
		"track":   data.Track,
		"queue":   len(data.Queue),
		"listing": data.Listing,
	}
	if !data.OK() {
		failed := map[string]string{}
		for _, e := range data.Errors {
			failed[e.Endpoint] = e.Error.Error()
		}
		summary["errors"] = failed
	}

	return r.write(format, summary, func() error {
		if data.Status != nil {
			r.printStatus(data.Status)
		}
		if data.Track != nil && data.Track.File != "" {
			r.writePlain("Track:    %s\n", trackLine(*data.Track))
		}
		r.writePlain("Queue:    %d tracks\n", len(data.Queue))
		for _, e := range data.Errors {
			r.writePlain("✗ %s: %v\n", e.Endpoint, e.Error)
		}
		return nil
	})
}

// MusicExport writes the play queue to a file.
func (r *Runner) MusicExport(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	tracks, err := r.music.PlaylistInfo(ctx)
	if err != nil {
		return err
	}

	export := &formatter.QueueExport{Name: "queue", ExportedAt: r.clock.Now(), Tracks: tracks}
	path, err := formatter.WriteExport(export, format, cmd.String("output"))
	if err != nil {
		return err
	}

	r.logger.Info("queue exported", "path", path, "tracks", len(tracks))
	return r.writePlain("✓ Exported %d tracks to %s\n", len(tracks), path)
}

// MusicPlaylists lists stored playlists.
func (r *Runner) MusicPlaylists(ctx context.Context, cmd *cli.Command) error {
	listing, err := r.music.Browse(ctx, "")
	if err != nil {
		return err
	}
	return r.write(cmd.String("format"), listing.Playlists, func() error {
		for _, p := range listing.Playlists {
			r.writePlain("%s\n", p)
		}
		return nil
	})
}

// MusicPlaylistsExport exports stored playlists, all of them when no names are given.
func (r *Runner) MusicPlaylistsExport(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	names := cmd.Args().Slice()
	if len(names) == 0 {
		listing, err := r.music.Browse(ctx, "")
		if err != nil {
			return err
		}
		names = listing.Playlists
	}

	progress, wait := r.reportProgress(true)
	result, err := r.engine.BulkExport(ctx, progress, names, tasks.BulkExportOpts{
		Format:     format,
		OutputDir:  cmd.String("output-dir"),
		NumWorkers: int(cmd.Int("workers")),
		RateLimit:  cmd.Float("rate"),
	})
	wait()
	if err != nil {
		return err
	}

	r.writePlainln("Exported %d/%d playlists to %s", result.SuccessfulExports, result.TotalPlaylists, result.OutputDirectory)
	if result.ManifestPath != "" {
		r.writePlain("Manifest: %s\n", result.ManifestPath)
	}
	return nil
}

// reportProgress drains task progress into the output, or into the debug log when print is false.
// wait closes the channel and blocks until every update is handled.
func (r *Runner) reportProgress(print bool) (chan<- tasks.ProgressUpdate, func()) {
	progress := make(chan tasks.ProgressUpdate, 32)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for u := range progress {
			if print {
				r.writePlain("%s\n", u.Message)
			} else {
				r.logger.Debug(u.Message, "phase", u.Phase, "step", u.Step, "total", u.Total)
			}
		}
	}()

	return progress, func() {
		close(progress)
		<-done
	}
}

func trackLine(t models.Track) string {
	line := t.DisplayTitle()
	if t.Artist != "" {
		line = t.Artist + " - " + line
	}
	if t.Time > 0 {
		line = fmt.Sprintf("%s (%s)", line, formatter.Duration(int(t.Time)))
	}
	return line
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
