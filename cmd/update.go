package cmd

import (
	"errors"
	"fmt"

	"github.com/urfave/cli"

	"github.com/blocklistd/blocklistd/pkg/blockcli"
	"github.com/blocklistd/blocklistd/pkg/blocklib"
)

var (
	updateForce bool
	updateCheck bool

	updateFlags = []cli.Flag{
		cli.BoolFlag{
			Name:        "force, f",
			Usage:       "re-download even when no newer version is known",
			Destination: &updateForce,
		},
		cli.BoolFlag{
			Name:        "check, c",
			Usage:       "run a freshness check first and only download when newer",
			Destination: &updateCheck,
		},
	}
)

func update(ctx *cli.Context) error {
	class := ctx.Args().First()
	if class == "" {
		return printErrWithCmdHelp(
			ctx,
			errors.New("no artifact class provided"),
		)
	} else if class == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	client, err := blockcli.NewClient()
	if err != nil {
		printRuntimeErr(ctx, "update", "new_client", err)
		return nil
	}
	defer client.Close()
	if updateCheck {
		r, err := client.Check(class, 0)
		if err != nil {
			printRuntimeErr(ctx, "update", "check", err)
			return nil
		}
		if blocklib.FreshnessOutcome(r.Outcome) != blocklib.OutcomeSuccess {
			fmt.Printf("Check did not succeed (%s), not downloading.\n",
				blocklib.FreshnessOutcome(r.Outcome))
			return nil
		}
		if r.Latest <= r.Installed && !updateForce {
			fmt.Printf("%s is already up to date (installed %s).\n",
				r.Class, fmtTimestamp(r.Installed))
			return nil
		}
	}
	d, err := client.Download(class, updateForce)
	if err != nil {
		printRuntimeErr(ctx, "update", "download", err)
		return nil
	}
	if !d.Started {
		fmt.Printf("No download started for %s: nothing newer, or a pipeline is already running.\n", d.Class)
		return nil
	}
	fmt.Printf("Downloading %s version %s in the background.\n",
		d.Class, fmtTimestamp(d.Target))
	fmt.Println("Use 'blockctl status --follow' to watch progress.")
	return nil
}
