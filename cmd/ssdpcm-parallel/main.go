// This command line tool is cmd/ssdpcm's multithreaded sibling: it only
// encodes, always through EncodeSSDPCMChannelsParallel, and always forces
// a reference sample on every block since that's the precondition for
// splitting the work across workers (§5).
package main

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/kagamiin/ssdpcm-go"
)

var errUsage = errors.New("usage: ssdpcm-parallel [flags] MODE infile outfile")

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func run(args []string) (err error) {
	flags := pflag.NewFlagSet("ssdpcm-parallel", pflag.ContinueOnError)

	blockLength := flags.Uint16("block-length", 0, "samples per block (0 = mode default)")
	bitsPerSample := flags.Uint8("bits-per-sample", 8, "output sample width in bits (8 or 16)")
	bruteForce := flags.Bool("bruteforce", false, "use exhaustive palette search instead of coarse-to-fine")
	workers := flags.Int("workers", 0, "worker count (0 = GOMAXPROCS)")

	if err := flags.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}

	positional := flags.Args()
	if len(positional) != 3 {
		return errUsage
	}

	modeArg, inPath, outPath := positional[0], positional[1], positional[2]

	mode, err := parseMode(modeArg)
	if err != nil {
		return err
	}

	if *blockLength == 0 {
		*blockLength = uint16(mode.DefaultBlockLength())
	}

	in, err := os.Open(inPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer in.Close()

	dec := wav.NewDecoder(in)
	if err := dec.FwdToPCM(); err != nil {
		return fmt.Errorf("failed to read input wav: %w", err)
	}

	pcm, err := dec.FullPCMBuffer()
	if err != nil {
		return fmt.Errorf("failed to read pcm data: %w", err)
	}

	numChans := pcm.Format.NumChannels
	channels := make([][]wav.Sample, numChans)
	for c := range channels {
		channels[c] = make([]wav.Sample, 0, len(pcm.Data)/numChans)
	}

	for i, v := range pcm.Data {
		channels[i%numChans] = append(channels[i%numChans], wav.Sample(v))
	}

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close output file: %w", cerr)
		}
	}()

	enc := wav.NewEncoder(out, int(dec.SampleRate), int(*bitsPerSample), numChans, 0)
	chunk := wav.NewSSDPCMChunk(mode, *bitsPerSample, *blockLength, true)

	w := *workers
	if w <= 0 {
		w = runtime.GOMAXPROCS(0)
	}

	log.Infof("encoding with %d workers", w)

	hist, err := wav.EncodeSSDPCMChannelsParallel(enc, chunk, channels, wav.NewGenericSigmaTracker, *bruteForce, w)
	if err != nil {
		return fmt.Errorf("failed to encode: %w", err)
	}

	hist.Log(mode)

	return nil
}

func parseMode(name string) (wav.Mode, error) {
	for m := wav.Mode(0); m < wav.NumModes(); m++ {
		if m.String() == name {
			return m, nil
		}
	}

	return 0, fmt.Errorf("%w: unrecognized mode %q", wav.ErrSSDPCMUnrecognizedMode, name)
}
