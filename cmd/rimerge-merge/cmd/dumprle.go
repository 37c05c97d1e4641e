package cmd

import (
	"context"
	"fmt"

	"github.com/grailbio/base/cmdutil"
	"github.com/marco-oliva/rimerge/internal/rle"
	"v.io/x/lib/cmdline"
)

func newCmdDumpRLE() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "dump-rle",
		Short:    "Print the runs of a .rle segment, one per line",
		ArgsName: "segpath metapath",
	}
	limit := cmd.Flags.Int("limit", 0, "Stop after this many runs (0 means unlimited)")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 2 {
			return fmt.Errorf("dump-rle takes segpath and metapath, but got %v", argv)
		}
		return runDumpRLE(argv[0], argv[1], *limit)
	})
	return cmd
}

func runDumpRLE(segPath, metaPath string, limit int) error {
	ctx := context.Background()
	dec, err := rle.LoadDecoder(ctx, segPath, metaPath)
	if err != nil {
		return err
	}
	meta := dec.Meta()
	fmt.Printf("# size=%d runs=%d\n", meta.Size, meta.Runs)

	n := 0
	for !dec.End() {
		run, err := dec.Next()
		if err != nil {
			return err
		}
		fmt.Printf("%d\t%c\t%d\n", run.Offset, run.Character, run.Length)
		n++
		if limit > 0 && n >= limit {
			break
		}
	}
	return nil
}
