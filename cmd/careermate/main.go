package main

import "github.com/careermate/careermate/cmd/careermate/cli"

func main() {
	cli.Execute()
}
