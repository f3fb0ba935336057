package main

import "github.com/theirongolddev/gemaudit/cmd"

func main() {
	cmd.Execute()
}
