package cmd

const HELP_TEMPL = `Usage: {{if .UsageText}}{{.UsageText}}{{else}}{{.HelpName}} {{if .VisibleFlags}}[global options]{{end}}{{if .Commands}} command [command options]{{end}} {{if .ArgsUsage}}{{.ArgsUsage}}{{else}}[arguments...]{{end}}{{end}}
{{.Description}}{{if .VisibleCommands}}
Commands:{{range .VisibleCategories}}{{if .Name}}

{{.Name}}:{{range .VisibleCommands}}
  {{join .Names ", "}}{{"\t"}}{{.Usage}}{{end}}{{else}}{{range .VisibleCommands}}
{{"\t"}}{{index .Names 0}}{{"\t:\t"}}{{.Usage}}{{end}}{{end}}{{end}}{{end}}{{if .VisibleFlags}}{{end}}

Use "{{.HelpName}} help <command>" for more information about any command.

`

const CMD_HELP_TEMPL = `{{if .Description}}{{.Description}}{{else}}{{.HelpName}} - {{.Usage}}

{{end}}Usage:
        {{.HelpName}} {{if .UsageText}}{{.UsageText}}{{else}}[arguments...]{{end}}{{if .VisibleFlags}}

Supported Flags:{{range .VisibleFlags}}
  {{.}}{{end}}{{end}}

`

const DESCRIPTION = `
Blocklistd keeps blocklist artifact sets fresh. It periodically asks the
publication authority whether a newer version exists, downloads the files
of a newer set in the background, and installs them atomically once the
whole batch has arrived.
`

const (
	CheckDescription = `The check command asks the daemon to query the publication
authority for the given artifact class and reports whether a newer
blocklist version is available.

Example:
        blockctl check local

`
	UpdateDescription = `The update command starts the download pipeline for the given
artifact class: stale partial downloads are purged, the batch is fetched
in the background and installed once complete. Use --check to run a
freshness check first and only download when something newer exists.

Example:
        blockctl update local
        blockctl update --check remote

`
	CancelDescription = `The cancel command terminates the in-flight download pipeline
of the given artifact class. Already-installed files are not touched.

Example:
        blockctl cancel local

`
	StatusDescription = `The status command prints the daemon's current update status.
With --follow it stays attached and prints every status change as it
happens.

Example:
        blockctl status
        blockctl status --follow

`
	VersionsDescription = `The versions command lists, per artifact class, the installed
blocklist version and the latest version known to the daemon.

Example:
        blockctl versions

`
	FlushDescription = `The flush command prunes finished pipeline job records from the
daemon's persisted state.

Example:
        blockctl flush

`
)
