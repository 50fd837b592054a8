// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func rootFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
			Value:   "config.toml",
			Sources: cli.EnvVars("TASKX_CONFIG"),
		},
		&cli.StringFlag{
			Name:  "env",
			Usage: "Path to a .env file with TASKX_* overrides",
			Value: ".env",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Enable debug logging",
		},
	}
}

// setupCommand initializes config and database
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize configuration and database",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Create the database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:  "config",
				Usage: "Write a config.toml populated with defaults",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing file",
					},
				},
				Action: r.SetupConfig,
			},
		},
	}
}

// taskCommand manages the task collection
func taskCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "task",
		Aliases: []string{"t"},
		Usage:   "Add, list, complete and remove tasks",
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Add a task",
				ArgsUsage: "<text...>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "due",
						Aliases: []string{"d"},
						Usage:   "Due date (YYYY-MM-DD, YYYY-MM-DD HH:MM or RFC 3339)",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.TaskAdd,
			},
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List tasks",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "status",
						Aliases: []string{"s"},
						Usage:   "Filter by status: all, pending, completed",
						Value:   "all",
					},
					&cli.StringFlag{
						Name:  "search",
						Usage: "Only tasks whose text contains this value",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.TaskList,
			},
			{
				Name:  "done",
				Usage: "Mark a task complete",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.TaskDone,
			},
			{
				Name:  "undo",
				Usage: "Mark a task incomplete",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.TaskUndo,
			},
			{
				Name:  "edit",
				Usage: "Change the text or due date of a task",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "text",
						Usage: "New text",
					},
					&cli.StringFlag{
						Name:    "due",
						Aliases: []string{"d"},
						Usage:   "New due date",
					},
					&cli.BoolFlag{
						Name:  "clear-due",
						Usage: "Remove the due date",
					},
				},
				Action: r.TaskEdit,
			},
			{
				Name:    "rm",
				Aliases: []string{"delete"},
				Usage:   "Delete a task",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.TaskRemove,
			},
			{
				Name:  "clear",
				Usage: "Delete every task (progress is kept)",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "yes",
						Aliases: []string{"y"},
						Usage:   "Do not ask for confirmation",
					},
				},
				Action: r.TaskClear,
			},
			{
				Name:  "export",
				Usage: "Export tasks to a file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path (default taskx-tasks-YYYY-MM-DD.<format> in the export dir)",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "json, yaml, csv or md",
						Value:   "json",
					},
					&cli.BoolFlag{
						Name:  "stdout",
						Usage: "Write to standard output instead of a file",
					},
				},
				Action: r.TaskExport,
			},
			{
				Name:  "import",
				Usage: "Replace all tasks with the contents of a JSON or YAML file",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Action: r.TaskImport,
			},
		},
	}
}

// statsCommand prints the progress card
func statsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Show level, points and streaks",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "reset",
				Usage: "Reset progress and lock every achievement",
			},
		},
		Action: r.Stats,
	}
}

// achievementsCommand lists achievements
func achievementsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "achievements",
		Usage: "List achievements and their progress",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Achievements,
	}
}

// analyticsCommand prints or exports the analytics report
func analyticsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "analytics",
		Usage: "Show task analytics",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "txt, md or csv (daily series)",
				Value:   "txt",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the report to a file",
			},
		},
		Action: r.Analytics,
	}
}

// serveCommand runs the dashboard API
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the dashboard JSON API",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "open",
				Usage: "Open the dashboard in the default browser",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on (overrides config)",
			},
		},
		Action: r.Serve,
	}
}

// tuiCommand launches the terminal dashboard
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "Interactive terminal dashboard",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "watch",
				Usage: "Reload when another process changes the database",
				Value: true,
			},
		},
		Action: r.TUI,
	}
}
