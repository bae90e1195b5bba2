package main

import "github.com/ValentinKolb/tsched/cmd"

func main() {
	cmd.Execute()
}
