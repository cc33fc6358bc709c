package main

import (
	"os"

	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	if err := newRootCmd(prometheus.DefaultRegisterer).Execute(); err != nil {
		os.Exit(1)
	}
}
