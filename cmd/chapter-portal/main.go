package main

import (
	"fmt"
	"os"

	"github.com/MalavS298/basiscpk/pkg/logger"
)

func main() {
	log := logger.NewFromEnv()
	if err := newRootCmd(log).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
