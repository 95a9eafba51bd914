package main

import "github.com/EO-DataHub/eodhp-user-sync/cmd"

func main() {
	cmd.Execute()
}
