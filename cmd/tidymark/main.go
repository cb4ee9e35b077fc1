package main

import "github.com/nikbrunner/tidymark/cmd/tidymark/cmd"

func main() {
	cmd.Execute()
}
