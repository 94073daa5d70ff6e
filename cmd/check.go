package cmd

import (
	"errors"
	"fmt"

	"github.com/urfave/cli"

	"github.com/blocklistd/blocklistd/pkg/blockcli"
	"github.com/blocklistd/blocklistd/pkg/blocklib"
)

var (
	checkRetry int

	checkFlags = []cli.Flag{
		cli.IntFlag{
			Name:        "retry, r",
			Usage:       "number of extra attempts on transient authority errors",
			Destination: &checkRetry,
		},
	}
)

func check(ctx *cli.Context) error {
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
		printRuntimeErr(ctx, "check", "new_client", err)
		return nil
	}
	defer client.Close()
	r, err := client.Check(class, checkRetry)
	if err != nil {
		printRuntimeErr(ctx, "check", "check", err)
		return nil
	}
	fmt.Printf(`
Freshness Check
Class`+"\t\t"+`: %s
Outcome`+"\t"+`: %s
Latest`+"\t\t"+`: %s
Installed`+"\t"+`: %s
`,
		r.Class,
		blocklib.FreshnessOutcome(r.Outcome),
		fmtTimestamp(r.Latest),
		fmtTimestamp(r.Installed),
	)
	if r.Status != "" {
		fmt.Printf("Detail\t\t: %s\n", r.Status)
	}
	return nil
}
