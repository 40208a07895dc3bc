// Command recrai ranks candidates for jobs and jobs for candidates, over the
// recruiting backend or a directory of job and CV files.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
