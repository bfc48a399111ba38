// Package main is the entrypoint for the shieldphish URL risk-analysis service
package main

import "github.com/theopenlane/shieldphish/cmd"

func main() {
	cmd.Execute()
}
