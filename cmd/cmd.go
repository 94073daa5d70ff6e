// Package cmd implements the blockctl command line interface and the
// blocklistd daemon entry point.
package cmd

import (
	"fmt"
	"runtime"

	"github.com/urfave/cli"
)

// BuildArgs carries build-time version information injected by the linker.
type BuildArgs struct {
	Version   string
	BuildType string
	Date      string
	Commit    string
}

var currentBuildArgs BuildArgs

func Execute(args []string, bArgs BuildArgs) error {
	currentBuildArgs = bArgs
	app := cli.App{
		Name:                  "blocklistd",
		HelpName:              "blockctl",
		Usage:                 "Blocklist freshness and download daemon.",
		Version:               fmt.Sprintf("%s-%s", bArgs.Version, bArgs.BuildType),
		UsageText:             "blockctl <command> [arguments...]",
		Description:           DESCRIPTION,
		CustomAppHelpTemplate: HELP_TEMPL,
		OnUsageError:          usageErrorCallback,
		Commands: []cli.Command{
			{
				Name:   "daemon",
				Usage:  "run the blocklistd daemon in the foreground",
				Action: daemon,
			},
			{
				Name:                   "check",
				Aliases:                []string{"c"},
				Usage:                  "check whether a newer blocklist is published",
				Action:                 check,
				OnUsageError:           usageErrorCallback,
				CustomHelpTemplate:     CMD_HELP_TEMPL,
				Description:            CheckDescription,
				UseShortOptionHandling: true,
				Flags:                  checkFlags,
			},
			{
				Name:                   "update",
				Aliases:                []string{"u"},
				Usage:                  "download and install the latest blocklist",
				Action:                 update,
				OnUsageError:           usageErrorCallback,
				CustomHelpTemplate:     CMD_HELP_TEMPL,
				Description:            UpdateDescription,
				UseShortOptionHandling: true,
				Flags:                  updateFlags,
			},
			{
				Name:                   "cancel",
				Usage:                  "cancel an in-flight download pipeline",
				Action:                 cancel,
				OnUsageError:           usageErrorCallback,
				CustomHelpTemplate:     CMD_HELP_TEMPL,
				Description:            CancelDescription,
				UseShortOptionHandling: true,
				Flags:                  cancelFlags,
			},
			{
				Name:                   "status",
				Aliases:                []string{"s"},
				Usage:                  "show the daemon's current update status",
				Action:                 status,
				OnUsageError:           usageErrorCallback,
				CustomHelpTemplate:     CMD_HELP_TEMPL,
				Description:            StatusDescription,
				UseShortOptionHandling: true,
				Flags:                  statusFlags,
			},
			{
				Name:               "versions",
				Usage:              "show installed and latest blocklist versions",
				Action:             versions,
				OnUsageError:       usageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Description:        VersionsDescription,
			},
			{
				Name:                   "flush",
				Usage:                  "prune finished pipeline jobs from daemon state",
				Action:                 flush,
				OnUsageError:           usageErrorCallback,
				CustomHelpTemplate:     CMD_HELP_TEMPL,
				Description:            FlushDescription,
				UseShortOptionHandling: true,
				Flags:                  flushFlags,
			},
			{
				Name:    "help",
				Aliases: []string{"h"},
				Usage:   "prints the help message",
				Action:  help,
			},
			{
				Name:               "version",
				Aliases:            []string{"v"},
				Usage:              "prints the installed version",
				UsageText:          " ",
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Action:             getVersion,
			},
		},
		Action:                 status,
		UseShortOptionHandling: true,
		HideHelp:               true,
		HideVersion:            true,
	}
	versionCmdStr = fmt.Sprintf("%s %s (%s_%s)\nBuild: %s=%s\n",
		app.Name,
		app.Version,
		runtime.GOOS,
		runtime.GOARCH,
		bArgs.Date, bArgs.Commit,
	)
	return app.Run(args)
}
