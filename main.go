package main

import "github.com/naka-gawa/issue-sweeper/cmd"

func main() {
	cmd.Execute()
}
