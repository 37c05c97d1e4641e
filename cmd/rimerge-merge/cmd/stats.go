package cmd

import (
	"context"
	"fmt"

	"github.com/grailbio/base/cmdutil"
	"github.com/marco-oliva/rimerge/internal/rindex"
	"github.com/marco-oliva/rimerge/internal/rlebwt"
	"v.io/x/lib/cmdline"
)

func newCmdStats() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "stats",
		Short:    "Print size, run, and sequence counts for an r-index",
		ArgsName: "dir",
	}
	blockSize := cmd.Flags.Int("block-size", rlebwt.DefaultBlockSize, "Run-index sampling interval")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 1 {
			return fmt.Errorf("stats takes one directory argument, but got %v", argv)
		}
		return runStats(argv[0], *blockSize)
	})
	return cmd
}

func runStats(dir string, blockSize int) error {
	ctx := context.Background()
	idx, err := rindex.Load(ctx, dir, blockSize)
	if err != nil {
		return err
	}
	n := idx.Size()
	r := idx.Runs()
	ratio := 0.0
	if n > 0 {
		ratio = float64(n) / float64(r)
	}
	fmt.Printf("n (length):     %d\n", n)
	fmt.Printf("r (runs):       %d\n", r)
	fmt.Printf("n/r:            %.2f\n", ratio)
	fmt.Printf("sequences:      %d\n", idx.Sequences())
	fmt.Printf("sigma:          %d\n", idx.Sigma())
	fmt.Printf("samples:        %d\n", idx.Samples.Len())
	return nil
}
