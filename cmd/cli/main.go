// streamplot - event stream timeline plotter
//
// streamplot parses the input and high-level activity streams of an activity
// recognition system and renders them as two timelines.
package main

import (
	"os"

	"github.com/ccollicutt/streamplot/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
