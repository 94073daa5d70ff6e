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
	err := cmd.RunDaemon(cmd.BuildArgs{
		Version:   version,
		BuildType: buildType,
		Date:      date,
		Commit:    commit,
	})
	if err != nil {
		fmt.Println("blocklistd:", err.Error())
		os.Exit(1)
	}
}
