package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/grailbio/base/cmdutil"
	"github.com/marco-oliva/rimerge/internal/merge"
	"github.com/marco-oliva/rimerge/internal/pipeline"
	"github.com/marco-oliva/rimerge/internal/rlebwt"
	"github.com/marco-oliva/rimerge/internal/rlog"
	"v.io/x/lib/cmdline"
)

// tmpDirEnv names the environment variable used to override the
// default spill directory, read directly since no env-binding library
// appears anywhere in the retrieved pack.
const tmpDirEnv = "RIMERGE_TMPDIR"

func defaultSpillDir() string {
	if d := os.Getenv(tmpDirEnv); d != "" {
		return d
	}
	return os.TempDir()
}

type mergeFlags struct {
	left          *string
	right         *string
	out           *string
	mergeJobs     *int
	searchJobs    *int
	posBufferMB   *int
	threadBufMB   *int
	compressSpill *bool
	tmpDir        *string
	blockSize     *int
	config        *string
	mmap          *bool
}

func newCmdMerge() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:  "merge",
		Short: "Merge a right r-index into a left r-index",
	}
	flags := mergeFlags{
		left:          cmd.Flags.String("a", "", "Left r-index directory"),
		right:         cmd.Flags.String("b", "", "Right r-index directory"),
		out:           cmd.Flags.String("o", "", "Output r-index directory"),
		mergeJobs:     cmd.Flags.Int("merge-jobs", pipeline.DefaultJobs, "Number of interleaving/output jobs"),
		searchJobs:    cmd.Flags.Int("search-jobs", pipeline.DefaultJobs, "Number of rank-array search threads"),
		posBufferMB:   cmd.Flags.Int("pos-buffer-mb", pipeline.DefaultPosBufferSize>>20, "Per-thread position buffer size, in MB"),
		threadBufMB:   cmd.Flags.Int("thread-buffer-mb", pipeline.DefaultThreadBufferSize>>20, "Per-slot buffer size, in MB"),
		compressSpill: cmd.Flags.Bool("c", false, "Compress spill files with zstd"),
		tmpDir:        cmd.Flags.String("tmp-dir", "", "Spill directory (default: $"+tmpDirEnv+" or the OS temp directory)"),
		blockSize:     cmd.Flags.Int("block-size", rlebwt.DefaultBlockSize, "Run-index sampling interval"),
		config:        cmd.Flags.String("config", "", "Configuration file supplying any flag not given on the command line"),
		mmap:          cmd.Flags.Bool("mmap", true, "Memory-map L and R instead of reading them into heap buffers; disable for non-local directories"),
	}
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 0 {
			return fmt.Errorf("merge takes no positional arguments, but got %v", argv)
		}
		if *flags.config != "" {
			if err := applyConfigFile(&cmd.Flags, *flags.config); err != nil {
				return err
			}
		}
		return runMerge(flags)
	})
	return cmd
}

func runMerge(flags mergeFlags) error {
	if *flags.left == "" || *flags.right == "" || *flags.out == "" {
		return fmt.Errorf("merge: -a, -b, and -o are all required")
	}

	spillDir := *flags.tmpDir
	if spillDir == "" {
		spillDir = defaultSpillDir()
	}

	opts := merge.DefaultOptions(spillDir)
	opts.MergeJobs = *flags.mergeJobs
	opts.SearchJobs = *flags.searchJobs
	opts.BlockSize = *flags.blockSize
	opts.Pipeline.PosBufferSize = *flags.posBufferMB << 20
	opts.Pipeline.ThreadBufferSize = *flags.threadBufMB << 20
	opts.Pipeline.CompressSpill = *flags.compressSpill
	opts.UseMMap = *flags.mmap

	ctx := context.Background()
	if err := merge.Merge(ctx, *flags.left, *flags.right, *flags.out, opts); err != nil {
		return err
	}
	rlog.Infof("merge: %v + %v -> %v", *flags.left, *flags.right, *flags.out)
	return nil
}
