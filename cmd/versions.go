package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli"

	"github.com/blocklistd/blocklistd/pkg/blockcli"
)

func versions(ctx *cli.Context) error {
	client, err := blockcli.NewClient()
	if err != nil {
		printRuntimeErr(ctx, "versions", "new_client", err)
		return nil
	}
	defer client.Close()
	r, err := client.Versions()
	if err != nil {
		printRuntimeErr(ctx, "versions", "versions", err)
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "CLASS\tINSTALLED\tLATEST")
	for _, c := range r.Classes {
		fmt.Fprintf(w, "%s\t%s\t%s\n",
			c.Class,
			fmtTimestamp(c.Installed),
			fmtTimestamp(c.Latest),
		)
	}
	return w.Flush()
}
