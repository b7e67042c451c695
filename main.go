package main

import "github.com/rizkypratama/crm-management/cmd"

func main() {
	cmd.Execute()
}
