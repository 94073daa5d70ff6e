package cmd

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/urfave/cli"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/blocklistd/blocklistd/common"
	"github.com/blocklistd/blocklistd/pkg/blockcli"
	"github.com/blocklistd/blocklistd/pkg/blocklib"
)

var (
	followStatus bool

	statusFlags = []cli.Flag{
		cli.BoolFlag{
			Name:        "follow, f",
			Usage:       "stay attached and print every status change",
			Destination: &followStatus,
		},
	}
)

func status(ctx *cli.Context) error {
	client, err := blockcli.NewClient()
	if err != nil {
		printRuntimeErr(ctx, "status", "new_client", err)
		return nil
	}
	defer client.Close()
	if !followStatus {
		s, err := client.Status()
		if err != nil {
			printRuntimeErr(ctx, "status", "status", err)
			return nil
		}
		printStatus(s.Outcome, s.Status)
		return nil
	}
	return followStatusStream(ctx, client)
}

func printStatus(outcome int, text string) {
	fmt.Printf("Status\t: %s\n", blocklib.FreshnessOutcome(outcome))
	if text != "" {
		fmt.Printf("Detail\t: %s\n", text)
	}
}

// followStatusStream subscribes to the daemon's status broadcast and renders
// changes behind a spinner until the connection drops or the user interrupts.
func followStatusStream(ctx *cli.Context, client *blockcli.Client) error {
	cur, err := client.Watch()
	if err != nil {
		printRuntimeErr(ctx, "status", "watch", err)
		return nil
	}

	var (
		mu      sync.Mutex
		outcome = cur.Outcome
		text    = cur.Status
	)
	rr := time.Millisecond * 120
	p := mpb.New(mpb.WithWidth(1), mpb.WithRefreshRate(rr))
	spinner := p.New(0,
		mpb.SpinnerStyle(),
		mpb.AppendDecorators(
			decor.Any(func(decor.Statistics) string {
				mu.Lock()
				defer mu.Unlock()
				if text == "" {
					return fmt.Sprintf(" %s", blocklib.FreshnessOutcome(outcome))
				}
				return fmt.Sprintf(" %s: %s", blocklib.FreshnessOutcome(outcome), text)
			}),
		),
	)

	client.Dispatcher().Handle(
		common.UPDATE_STATUS,
		blockcli.HandlerFunc(func(m json.RawMessage) error {
			var su common.StatusUpdate
			if err := json.Unmarshal(m, &su); err != nil {
				return err
			}
			mu.Lock()
			outcome = su.Outcome
			text = su.Status
			mu.Unlock()
			return nil
		}),
	)

	err = client.Listen()
	spinner.Abort(true)
	p.Wait()
	if err != nil {
		printRuntimeErr(ctx, "status", "listen", err)
	}
	return nil
}
