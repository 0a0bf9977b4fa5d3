package main

import (
	"fmt"
	"os"

	"github.com/cloo-solutions/resumechat/internal/cli"
)

var version = "dev"

func main() {
	rootCmd := cli.NewRootCmd(version)
	rootCmd.SetArgs(cli.DefaultArgs(os.Args)[1:])

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
