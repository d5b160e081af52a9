// Command docuscout crawls a documentation site and writes the pages it
// retains, as Markdown, to an output directory.
package main

import (
	"os"

	"github.com/jmylchreest/docuscout/cmd/docuscout/commands"
)

func main() {
	os.Exit(commands.Execute())
}
