package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/oakwood-commons/kvtree/cmd"
	"github.com/oakwood-commons/kvtree/pkg/jsonvalue"
	"github.com/oakwood-commons/kvtree/pkg/logger"
	"github.com/oakwood-commons/kvtree/pkg/settings"
)

// exitMalformedInput is returned when the document could not be read as a
// tree of JSON values.
const exitMalformedInput = 2

func main() {
	os.Exit(run())
}

func run() int {
	defer logger.Sync()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", settings.CliBinaryName, err)
		if errors.Is(err, jsonvalue.ErrMalformedInput) {
			return exitMalformedInput
		}
		return 1
	}
	return 0
}
