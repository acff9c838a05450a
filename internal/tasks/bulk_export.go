package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/desertthunder/homepanel/internal/formatter"
	"github.com/desertthunder/homepanel/internal/shared"
	"golang.org/x/time/rate"
)

// BulkExportOpts contains configuration for bulk playlist exports.
type BulkExportOpts struct {
	Format     formatter.Format // Export format (default: json)
	OutputDir  string           // Base output directory (default: playlists_export_{epoch})
	NumWorkers int              // Concurrent workers (default: 3, max: 10)
	RateLimit  float64          // Playlist fetches per second (default: 5)
}

// PlaylistExportResult is the outcome of exporting one stored playlist.
type PlaylistExportResult struct {
	Name    string `json:"name"`
	Tracks  int    `json:"tracks"`
	File    string `json:"file,omitempty"`
	Success bool   `json:"success"`
	Error   error  `json:"-"`
}

// BulkExportResult summarizes a bulk export.
type BulkExportResult struct {
	TotalPlaylists    int                    `json:"total_playlists"`
	SuccessfulExports int                    `json:"successful_exports"`
	FailedExports     int                    `json:"failed_exports"`
	OutputDirectory   string                 `json:"output_directory"`
	ManifestPath      string                 `json:"-"`
	Results           []PlaylistExportResult `json:"results"`
}

type playlistExportJob struct {
	export *formatter.QueueExport
}

type manifestEntry struct {
	PlaylistExportResult
	Error string `json:"error,omitempty"`
}

// BulkExport exports stored playlists concurrently with rate limiting and progress tracking.
//
// Playlists are fetched one at a time under the rate limit and written by a pool of workers.
// Failed playlists are reported in the result; a manifest file summarizing the export is
// written to the output directory.
func (e *PanelEngine) BulkExport(ctx context.Context, prog chan<- ProgressUpdate, names []string, opts BulkExportOpts) (*BulkExportResult, error) {
	if e.music == nil {
		return nil, fmt.Errorf("%w: music service not initialized", shared.ErrServiceUnavailable)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no playlists to export", shared.ErrMissingArgument)
	}

	if opts.Format == "" {
		opts.Format = formatter.FormatJSON
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("playlists_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 3
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &BulkExportResult{
		TotalPlaylists:  len(names),
		OutputDirectory: opts.OutputDir,
		Results:         make([]PlaylistExportResult, 0, len(names)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan playlistExportJob, len(names))
	results := make(chan PlaylistExportResult, len(names))

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobs, results, opts)
	}

	go func() {
		defer close(jobs)
		for i, name := range names {
			if err := limiter.Wait(ctx); err != nil {
				return
			}

			e.sendProgress(prog, exportingPlaylistUpdate(i+1, len(names), name))
			tracks, err := e.music.ListPlaylistInfo(ctx, name)
			if err != nil {
				results <- PlaylistExportResult{Name: name, Error: fmt.Errorf("failed to fetch playlist: %w", err)}
				continue
			}

			jobs <- playlistExportJob{export: &formatter.QueueExport{
				Name:       name,
				ExportedAt: time.Now(),
				Tracks:     tracks,
			}}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Success {
			result.SuccessfulExports++
			e.sendProgress(prog, exportCompletedUpdate(completed, len(names), res.Name, res.Tracks))
		} else {
			result.FailedExports++
			e.sendProgress(prog, exportFailedUpdate(completed, len(names), res.Name, res.Error))
		}
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}

	sort.SliceStable(result.Results, func(i, j int) bool { return result.Results[i].Name < result.Results[j].Name })

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	e.sendProgress(prog, manifestUpdate(manifestPath))
	if err := writeManifest(result, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	return result, nil
}

// exportWorker is a worker goroutine that writes playlists from the jobs channel.
func (e *PanelEngine) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan playlistExportJob,
	results chan<- PlaylistExportResult,
	opts BulkExportOpts,
) {
	defer wg.Done()

	for job := range jobs {
		if ctx.Err() != nil {
			return
		}
		results <- exportSinglePlaylist(job, opts)
	}
}

func exportSinglePlaylist(j playlistExportJob, opts BulkExportOpts) PlaylistExportResult {
	result := PlaylistExportResult{Name: j.export.Name, Tracks: len(j.export.Tracks)}

	path := filepath.Join(opts.OutputDir, exportFileName(j.export.Name)+"."+string(opts.Format))
	written, err := formatter.WriteExport(j.export, opts.Format, path)
	if err != nil {
		result.Error = fmt.Errorf("%s export failed: %w", opts.Format, err)
		return result
	}

	result.File = written
	result.Success = true
	return result
}

// exportFileName turns a playlist name into a safe file name.
func exportFileName(name string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", " ", "_", ":", "_")
	name = r.Replace(strings.TrimSpace(name))
	if name == "" || name == "." || name == ".." {
		return "playlist"
	}
	return name
}

func writeManifest(result *BulkExportResult, path string) error {
	entries := make([]manifestEntry, 0, len(result.Results))
	for _, r := range result.Results {
		entry := manifestEntry{PlaylistExportResult: r}
		if r.Error != nil {
			entry.Error = r.Error.Error()
		}
		entries = append(entries, entry)
	}

	data, err := shared.MarshalJSON(struct {
		*BulkExportResult
		Results []manifestEntry `json:"results"`
	}{BulkExportResult: result, Results: entries}, true)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
