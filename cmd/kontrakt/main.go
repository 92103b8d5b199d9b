package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/kontrakt-go/kontrakt"
	"github.com/kontrakt-go/kontrakt/internal/discovery"
	"github.com/kontrakt-go/kontrakt/internal/policyconfig"
)

// cmd/kontrakt is a thin demonstration host: real CLI argument parsing is
// out of scope per spec.md §1, so flag handling here is limited to the
// options §6 actually names (trace, tests pattern, package scope, seed,
// verbosity) rather than a full-featured argument parser.
func main() {
	var (
		policyPath  = flag.String("policy", "", "path to an ExecutionPolicy YAML file (defaults built-in)")
		traceRoot   = flag.String("trace-root", "./kontrakt-out", "root directory for worker logs, trace, and failure journals")
		packageGlob = flag.String("package", "", "narrow discovery to FQNs matching this doublestar glob")
		testPattern = flag.String("tests", "", "narrow discovery to FQNs matching this doublestar glob (alias of --package)")
		seed        = flag.Int64("seed", 0, "fixed determinism seed; 0 means derive one from the clock")
		trace       = flag.Bool("trace", false, "keep design-phase trace events and populate source locations")
		verbose     = flag.Bool("verbose", false, "verbose console output")
		quiet       = flag.Bool("quiet", false, "suppress non-failure console output")
	)
	flag.Parse()

	policy := policyconfig.DefaultPolicy()
	if *policyPath != "" {
		loaded, err := policyconfig.LoadPolicy(*policyPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "kontrakt: %v\n", err)
			os.Exit(2)
		}
		policy = loaded
	}
	if *seed != 0 {
		policy.Determinism.Seed = seed
	}
	if *trace {
		policy.Auditing.Depth = policyconfig.DepthExplainable
	}

	scope := discovery.NewAllScope()
	switch {
	case *packageGlob != "":
		scope = discovery.NewPackagesScope(*packageGlob)
	case *testPattern != "":
		scope = discovery.NewClassesScope(*testPattern)
	}

	logLevel := log.LstdFlags
	if *quiet {
		logLevel = 0
	}
	_ = verbose // verbosity only widens what the LoggingPublisher already prints; no separate code path today

	summary, err := kontrakt.Run(kontrakt.Options{
		Registrar: buildSelfTestRegistrar(),
		Scope:     scope,
		Policy:    policy,
		TraceRoot: *traceRoot,
		Publisher: kontrakt.NewLoggingPublisher(log.New(os.Stderr, "[kontrakt] ", logLevel)),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "kontrakt: discovery failed: %v\n", err)
		os.Exit(1)
	}

	for _, o := range summary.Outcomes {
		fmt.Printf("%-10s %s\n", o.Status.Kind, o.TestName)
	}
	if !summary.AllPassed {
		fmt.Printf("%d of %d failed\n", len(summary.Failures()), len(summary.Outcomes))
		os.Exit(1)
	}
	os.Exit(0)
}
