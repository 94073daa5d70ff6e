package cmd

import (
	"errors"
	"fmt"

	"github.com/urfave/cli"

	"github.com/blocklistd/blocklistd/pkg/blockcli"
)

var cancelFlags = []cli.Flag{}

func cancel(ctx *cli.Context) error {
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
		printRuntimeErr(ctx, "cancel", "new_client", err)
		return nil
	}
	defer client.Close()
	r, err := client.Cancel(class)
	if err != nil {
		printRuntimeErr(ctx, "cancel", "cancel", err)
		return nil
	}
	if r.Cancelled {
		fmt.Printf("Cancelled the %s download pipeline.\n", r.Class)
	} else {
		fmt.Printf("No download pipeline running for %s.\n", r.Class)
	}
	return nil
}
