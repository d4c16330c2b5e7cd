// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// serveCommand starts the web application
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "Start the mood tracker web server",
		Flags:  []cli.Flag{configFlag()},
		Action: r.Serve,
	}
}

// setupCommand initializes the database
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Initialize database and run migrations",
		Flags:  []cli.Flag{configFlag()},
		Action: r.Setup,
	}
}

// configCommand manages configuration files
func configCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration helpers",
		Commands: []*cli.Command{
			{
				Name:   "init",
				Usage:  "Write an example config.toml",
				Flags:  []cli.Flag{configFlag()},
				Action: r.ConfigInit,
			},
		},
	}
}

// moodsCommand inspects mood logs from the terminal
func moodsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "moods",
		Usage: "Mood log operations",
		Commands: []*cli.Command{
			{
				Name:  "recent",
				Usage: "Show a user's most recent mood entries",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:     "user",
						Aliases:  []string{"u"},
						Usage:    "Username to inspect",
						Required: true,
					},
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum number of entries to show",
						Value:   5,
					},
				},
				Action: r.MoodsRecent,
			},
		},
	}
}
