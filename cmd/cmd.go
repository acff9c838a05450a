// submodule cmd contains command definitions
package main

import (
	"time"

	"github.com/desertthunder/homepanel/internal/media"
	"github.com/urfave/cli/v3"
)

func formatFlag(usage string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   usage,
		Value:   "text",
	}
}

// setupCommand handles application setup operations
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and initialization commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Create the event journal database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:  "config",
				Usage: "Write an example configuration file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Path of the configuration file to write",
						Value:   "config.toml",
					},
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing file",
					},
				},
				Action: r.SetupConfig,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the last journal migration",
				Action: r.RollbackDatabase,
			},
		},
	}
}

// apiCommand handles direct calls to the control server
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct calls to the control server",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Direct GET to the control server, prints raw JSON",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.APIGet,
			},
			{
				Name:  "post",
				Usage: "Direct POST with JSON body",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "JSON body to send",
						Required: true,
					},
				},
				Action: r.APIPost,
			},
			{
				Name:  "exec",
				Usage: "Run a backend action through /execute",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "action",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "args",
						Usage: "Action arguments as a JSON object",
					},
					&cli.StringSliceFlag{
						Name:    "arg",
						Aliases: []string{"a"},
						Usage:   "Action argument as key=value; repeatable, overrides --args",
					},
					formatFlag("Output format (text, json, yaml)"),
				},
				Action: r.APIExec,
			},
			{
				Name:  "send",
				Usage: "Post an event of the given class",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "class",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "args",
						Usage: "Event arguments as a JSON object",
					},
					&cli.StringSliceFlag{
						Name:    "arg",
						Aliases: []string{"a"},
						Usage:   "Event argument as key=value; repeatable, overrides --args",
					},
				},
				Action: r.APISend,
			},
		},
	}
}

// musicCommand handles music player operations
func musicCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "music",
		Aliases: []string{"m"},
		Usage:   "Music player operations",
		Commands: []*cli.Command{
			{
				Name:   "status",
				Usage:  "Show the player status",
				Flags:  []cli.Flag{formatFlag("Output format (text, json, yaml)")},
				Action: r.MusicStatus,
			},
			{
				Name:   "current",
				Usage:  "Show the current song",
				Flags:  []cli.Flag{formatFlag("Output format (text, json, yaml)")},
				Action: r.MusicCurrent,
			},
			{
				Name:   "queue",
				Usage:  "List the play queue",
				Flags:  []cli.Flag{formatFlag("Output format (text, json, yaml)")},
				Action: r.MusicQueue,
			},
			{
				Name:  "browse",
				Usage: "List a library directory",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "uri",
					},
				},
				Flags:  []cli.Flag{formatFlag("Output format (text, json, yaml)")},
				Action: r.MusicBrowse,
			},
			{
				Name:  "play",
				Usage: "Resume playback, or play a file or URL",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "resource",
					},
				},
				Action: r.MusicPlay,
			},
			{Name: "pause", Usage: "Toggle pause", Action: r.MusicTransport("pause")},
			{Name: "stop", Usage: "Stop playback", Action: r.MusicTransport("stop")},
			{Name: "next", Usage: "Skip to the next track", Action: r.MusicTransport("next")},
			{Name: "previous", Aliases: []string{"prev"}, Usage: "Go back to the previous track", Action: r.MusicTransport("previous")},
			{Name: "random", Usage: "Toggle random playback", Action: r.MusicTransport("random")},
			{Name: "repeat", Usage: "Toggle repeat", Action: r.MusicTransport("repeat")},
			{
				Name:  "volume",
				Usage: "Set the volume (0-100), or adjust it with +N / -N",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "value",
					},
				},
				Action: r.MusicVolume,
			},
			{
				Name:  "seek",
				Usage: "Seek the current track to seconds or m:ss",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "position",
					},
				},
				Action: r.MusicSeek,
			},
			{
				Name:   "load",
				Usage:  "Fetch status, current song, queue, and library root",
				Flags:  []cli.Flag{formatFlag("Output format (text, json, yaml)")},
				Action: r.MusicLoad,
			},
			{
				Name:  "export",
				Usage: "Export the play queue to a file",
				Flags: []cli.Flag{
					formatFlag("Export format (csv, md, txt, json)"),
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path (default queue.<format>)",
					},
				},
				Action: r.MusicExport,
			},
			{
				Name:  "playlists",
				Usage: "Stored playlist operations",
				Commands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "List stored playlists",
						Flags:  []cli.Flag{formatFlag("Output format (text, json, yaml)")},
						Action: r.MusicPlaylists,
					},
					{
						Name:      "export",
						Usage:     "Export stored playlists, all of them when no names are given",
						ArgsUsage: "[name...]",
						Flags: []cli.Flag{
							formatFlag("Export format (csv, md, txt, json)"),
							&cli.StringFlag{
								Name:    "output-dir",
								Aliases: []string{"o"},
								Usage:   "Output directory (default playlists_export_<timestamp>)",
							},
							&cli.IntFlag{
								Name:  "workers",
								Usage: "Number of concurrent export workers",
								Value: 3,
							},
							&cli.FloatFlag{
								Name:  "rate",
								Usage: "Maximum playlist fetches per second",
								Value: 5,
							},
						},
						Action: r.MusicPlaylistsExport,
					},
				},
			},
		},
	}
}

// eventsCommand handles the event stream and journal
func eventsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "events",
		Aliases: []string{"ev"},
		Usage:   "Event stream and journal operations",
		Commands: []*cli.Command{
			{
				Name:  "listen",
				Usage: "Print events from the event stream until interrupted",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:  "class",
						Usage: "Only print events of this class; repeatable",
					},
					&cli.BoolFlag{
						Name:  "journal",
						Usage: "Record events in the journal database",
					},
					formatFlag("Output format (text, json)"),
				},
				Action: r.EventsListen,
			},
			{
				Name:  "history",
				Usage: "List journaled events, newest first",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of events; 0 lists all",
						Value: 50,
					},
					&cli.StringFlag{
						Name:  "class",
						Usage: "Only list events of this class",
					},
					formatFlag("Output format (text, json, yaml)"),
				},
				Action: r.EventsHistory,
			},
			{
				Name:  "prune",
				Usage: "Delete journaled events older than a duration",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "older-than",
						Usage: "Age of the oldest event to keep",
						Value: 30 * 24 * time.Hour,
					},
				},
				Action: r.EventsPrune,
			},
		},
	}
}

// mediaCommand handles media resource handlers
func mediaCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "media",
		Usage: "Media handler operations",
		Commands: []*cli.Command{
			{
				Name:   "handlers",
				Usage:  "List media handlers and their actions",
				Flags:  []cli.Flag{formatFlag("Output format (text, json, yaml)")},
				Action: r.MediaHandlers,
			},
			{
				Name:  "run",
				Usage: "Run a media handler action on a resource",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "resource",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "item",
						Usage: "Dropdown entry to run",
						Value: media.ItemPlay,
					},
					&cli.StringFlag{
						Name:  "handler",
						Usage: "Handler name; resolved from the resource when empty",
					},
				},
				Action: r.MediaRun,
			},
		},
	}
}

// openCommand opens the web panel
func openCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "open",
		Usage:  "Open the control server's web panel in a browser",
		Action: r.Open,
	}
}

// tuiCommand starts the interactive panel
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "tui",
		Usage:  "Start the interactive panel",
		Action: r.TUI,
	}
}
