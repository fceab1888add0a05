package main

import "github.com/daticahealth/datisession/cmd"

func main() {
	cmd.Execute()
}
