package main

import "github.com/MeKo-Tech/photoflow/cmd/photoflow/cmd"

func main() {
	cmd.Execute()
}
