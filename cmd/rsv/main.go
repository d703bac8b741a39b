// Command rsv computes statistics, row counts and frequency tables over large
// delimited files in a single streaming pass.
//
// Usage:
//
//	rsv stats data.csv
//	rsv stats -c 0,2-4 --median -o json data.csv.gz
//	rsv count data.csv
//	rsv frequency -c city,kind -n 10 data.csv
//	rsv headers report.xlsx --sheet Q4
//	rsv stats --config job.json --export postgres --dsn ... --table rsv_stats
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/KimMachineGun/automemlimit/memlimit"
	"go.uber.org/automaxprocs/maxprocs"
)

func init() {
	// Size the worker pool and heap limit to the container, not the host.
	if _, err := maxprocs.Set(maxprocs.Logger(func(string, ...any) {})); err != nil {
		fmt.Fprintf(os.Stderr, "failed to set maxprocs: %v\n", err)
	}
	_, err := memlimit.SetGoMemLimitWithOpts(
		memlimit.WithRatio(0.8),
		memlimit.WithProvider(
			memlimit.ApplyFallback(
				memlimit.FromCgroup,
				memlimit.FromSystem,
			),
		),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set memory limit: %v\n", err)
	}
}

func main() {
	log.SetFlags(log.LstdFlags)
	log.SetOutput(os.Stderr)

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
