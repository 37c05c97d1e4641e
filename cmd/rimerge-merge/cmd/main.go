// Package cmd wires rimerge-merge's subcommands onto v.io/x/lib/cmdline,
// the same CLI library and *cmdline.Command + cmdutil.RunnerFunc shape
// cmd/bio-pamtool/cmd uses.
package cmd

import (
	"log"

	"github.com/marco-oliva/rimerge/internal/rlog"
	"v.io/x/lib/cmdline"
)

// Run parses os.Args and dispatches to the matching subcommand.
func Run() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile)
	if err := rlog.ConfigureFromFlags(); err != nil {
		log.Fatalf("rimerge-merge: configure logging: %v", err)
	}
	cmdline.HideGlobalFlagsExcept()
	cmdline.Main(
		&cmdline.Command{
			Name:     "rimerge-merge",
			Short:    "Merge run-length BWT r-indexes",
			LookPath: false,
			Children: []*cmdline.Command{
				newCmdMerge(),
				newCmdStats(),
				newCmdVerify(),
				newCmdDumpRLE(),
			},
		})
}
