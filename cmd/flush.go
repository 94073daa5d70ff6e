package cmd

import (
	"fmt"
	"strings"

	"github.com/urfave/cli"

	"github.com/blocklistd/blocklistd/pkg/blockcli"
)

var (
	forceFlush bool

	flushFlags = []cli.Flag{
		cli.BoolFlag{
			Name:        "force, f",
			Usage:       "skip the confirmation prompt (default: false)",
			Destination: &forceFlush,
		},
	}
)

func flush(ctx *cli.Context) error {
	if !confirmFlush(forceFlush) {
		return nil
	}
	client, err := blockcli.NewClient()
	if err != nil {
		printRuntimeErr(ctx, "flush", "new_client", err)
		return nil
	}
	defer client.Close()
	r, err := client.Flush()
	if err != nil {
		printRuntimeErr(ctx, "flush", "flush", err)
		return nil
	}
	fmt.Printf("Pruned %d finished pipeline job(s)!\n", r.Removed)
	return nil
}

func confirmFlush(force bool) bool {
	if force {
		return true
	}
	fmt.Print("Are you sure you want to prune finished pipeline jobs? (yes/no): ")
	var i string
	_, _ = fmt.Scanf("%s", &i)
	switch strings.ToLower(i) {
	case "yes", "y", "true", "1":
		return true
	default:
		fmt.Println("Cancelled flush operation!")
		return false
	}
}
