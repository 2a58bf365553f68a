package main

import "github.com/theirongolddev/finburn/cmd"

func main() {
	cmd.Execute()
}
