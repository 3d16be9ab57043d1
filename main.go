package main

import "github.com/shandysiswandi/goanalyzer/cmd"

func main() {
	cmd.Execute()
}
