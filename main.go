package main

import "github.com/quocvuong92/lake-cli/cmd"

func main() {
	cmd.Execute()
}
