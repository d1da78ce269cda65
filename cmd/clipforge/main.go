package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"clipforge/internal/services"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) && !services.IsCancellation(err) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
