package main

import (
	"fmt"
	"os"

	"github.com/blocklistd/blocklistd/cmd"
)

var (
	version   = "dev"
	buildType = "local"
	date      = "unknown"
	commit    = "none"
)

func main() {
	err := cmd.Execute(os.Args, cmd.BuildArgs{
		Version:   version,
		BuildType: buildType,
		Date:      date,
		Commit:    commit,
	})
	if err != nil {
		fmt.Printf("blockctl: %s\n", err.Error())
		os.Exit(1)
	}
}
