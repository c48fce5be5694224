package main

import (
	"flag"
	"fmt"
	"os"

	"grimm.is/floe/cmd"
	"grimm.is/floe/internal/brand"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "check":
		checkFlags := flag.NewFlagSet("check", flag.ExitOnError)
		libDir := checkFlags.String("lib-dir", "", "Override builtin config root")
		etcDir := checkFlags.String("etc-dir", "", "Override custom config root")
		verbose := checkFlags.Bool("verbose", false, "List every object")
		checkFlags.BoolVar(verbose, "v", false, "List every object (short)")
		checkFlags.Parse(os.Args[2:])

		if err := cmd.RunCheck(*libDir, *etcDir, *verbose); err != nil {
			fmt.Fprintf(os.Stderr, "Check failed: %v\n", err)
			os.Exit(1)
		}

	case "list":
		listFlags := flag.NewFlagSet("list", flag.ExitOnError)
		libDir := listFlags.String("lib-dir", "", "Override builtin config root")
		etcDir := listFlags.String("etc-dir", "", "Override custom config root")
		listFlags.Parse(os.Args[2:])

		if err := cmd.RunList(*libDir, *etcDir, listFlags.Arg(0)); err != nil {
			fmt.Fprintf(os.Stderr, "List failed: %v\n", err)
			os.Exit(1)
		}

	case "show":
		showFlags := flag.NewFlagSet("show", flag.ExitOnError)
		libDir := showFlags.String("lib-dir", "", "Override builtin config root")
		etcDir := showFlags.String("etc-dir", "", "Override custom config root")
		showFlags.Parse(os.Args[2:])

		if showFlags.NArg() < 2 {
			fmt.Fprintf(os.Stderr, "Usage: %s show <kind> <name>\n", brand.LowerName)
			os.Exit(1)
		}
		if err := cmd.RunShow(*libDir, *etcDir, showFlags.Arg(0), showFlags.Arg(1)); err != nil {
			fmt.Fprintf(os.Stderr, "Show failed: %v\n", err)
			os.Exit(1)
		}

	case "reset":
		resetFlags := flag.NewFlagSet("reset", flag.ExitOnError)
		libDir := resetFlags.String("lib-dir", "", "Override builtin config root")
		etcDir := resetFlags.String("etc-dir", "", "Override custom config root")
		confirm := resetFlags.Bool("confirm", false, "Required; reset discards custom configuration")
		resetFlags.BoolVar(confirm, "y", false, "Required (short)")
		resetFlags.Parse(os.Args[2:])

		if err := cmd.RunReset(*libDir, *etcDir, *confirm); err != nil {
			fmt.Fprintf(os.Stderr, "Reset failed: %v\n", err)
			os.Exit(1)
		}

	case "watch":
		watchFlags := flag.NewFlagSet("watch", flag.ExitOnError)
		libDir := watchFlags.String("lib-dir", "", "Override builtin config root")
		etcDir := watchFlags.String("etc-dir", "", "Override custom config root")
		watchFlags.Parse(os.Args[2:])

		if err := cmd.RunWatch(*libDir, *etcDir); err != nil {
			fmt.Fprintf(os.Stderr, "Watch failed: %v\n", err)
			os.Exit(1)
		}

	case "help", "--help", "-h":
		printUsage()

	case "version", "--version":
		fmt.Printf("%s %s\n", brand.Name, brand.Version)

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf(`%s - %s

Usage: %s <command> [options]

Commands:
  check     Validate both configuration trees
            Options: --verbose (-v), --lib-dir, --etc-dir
  list      List objects, optionally for one kind
            Usage: %s list [kind]
  show      Display one object as YAML
            Usage: %s show <kind> <name>
  reset     Reset the permanent configuration to vendor defaults
            Options: --confirm (-y) required
  watch     Follow external edits to the config trees

Kinds: addrsets, helpers, icmptypes, services, zones, policies

Examples:
  %s check -v
  %s list zones
  %s show service ssh
  %s reset --confirm
`,
		brand.Name, brand.Description,
		brand.LowerName,
		brand.LowerName, brand.LowerName,
		brand.LowerName, brand.LowerName, brand.LowerName, brand.LowerName)
}
