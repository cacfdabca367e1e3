package main

import (
	"fmt"
	"os"

	"fintrack/cmd/add"
	"fintrack/cmd/budget"
	"fintrack/cmd/export"
	"fintrack/cmd/ingest"
	"fintrack/cmd/model"
	"fintrack/cmd/predict"
	"fintrack/cmd/root"
	"fintrack/cmd/serve"
	"fintrack/cmd/summary"
	"fintrack/cmd/train"
)

func init() {
	root.Cmd.AddCommand(serve.Cmd)
	root.Cmd.AddCommand(train.Cmd)
	root.Cmd.AddCommand(predict.Cmd)
	root.Cmd.AddCommand(ingest.Cmd)
	root.Cmd.AddCommand(add.Cmd)
	root.Cmd.AddCommand(budget.Cmd)
	root.Cmd.AddCommand(summary.Cmd)
	root.Cmd.AddCommand(model.Cmd)
	root.Cmd.AddCommand(export.Cmd)
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
