// Command rgaalint audits web pages against RGAA accessibility criteria.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/raysh454/rgaalint/internal/cli"
)

func main() {
	if err := cli.Execute(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}
