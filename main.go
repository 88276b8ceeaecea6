package main

import "github.com/jobseek-id/auto-emailer/cmd"

func main() {
	cmd.Execute()
}
