// main is the entry point of the prdash CLI.
package main

import (
	"github.com/cloudstack-dashboard/prdash/cmd"
	"github.com/cloudstack-dashboard/prdash/internal/contract"
	"github.com/cloudstack-dashboard/prdash/internal/store"
)

func main() {
	defer store.CloseStore()

	if err := cmd.Execute(); err != nil {
		contract.LogFatal("Command failed", err)
	}
}
