// Command parsort-bench times every sorting strategy over generated datasets.
//
// Usage:
//
//	parsort-bench --types ints,points --shape random --arrays 100 --size 1000
//	parsort-bench --strategies sequential,forkjoin --workers 4 --runs 50
//
// Each strategy first sorts the dataset --warmup times untimed, then --runs
// times timed, and reports the aggregate duration.
package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
