// This command line tool encodes and decodes SSDPCM streams, following
// the "encoder MODE infile.wav outfile.aud" / "encoder decode ..."
// surface: a single positional mode selector followed by the two file
// paths, with GNU-style long flags for everything else.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/go-audio/audio"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/kagamiin/ssdpcm-go"
)

var errUsage = errors.New("usage: ssdpcm [flags] MODE infile outfile")

// presetConfig is the optional YAML preset file (§10.3): per-mode
// default block lengths and the log level, kept out of flags so a
// deployment can pin defaults without touching invocation scripts. The
// workers key is parsed into Workers but this command does not use it.
type presetConfig struct {
	BlockLengths map[string]uint16 `yaml:"block_lengths"`
	Workers      int               `yaml:"workers"`
	LogLevel     string            `yaml:"log_level"`
}

func loadPresetConfig(path string) (*presetConfig, error) {
	if path == "" {
		return &presetConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &presetConfig{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

func applyLogLevel(level string, quiet bool) {
	if quiet {
		log.SetLevel(log.FatalLevel)
		return
	}

	switch level {
	case "debug":
		log.SetLevel(log.DebugLevel)
	case "warn":
		log.SetLevel(log.WarnLevel)
	case "error":
		log.SetLevel(log.ErrorLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := pflag.NewFlagSet("ssdpcm", pflag.ContinueOnError)

	configPath := flags.String("config", "", "optional YAML preset file")
	blockLength := flags.Uint16("block-length", 0, "samples per block (0 = mode default)")
	bitsPerSample := flags.Uint8("bits-per-sample", 8, "output sample width in bits (8 or 16)")
	referenceEveryBlock := flags.Bool("reference-every-block", false, "carry an explicit reference sample on every block")
	bruteForce := flags.Bool("bruteforce", false, "use exhaustive palette search instead of coarse-to-fine")
	logLevel := flags.String("log-level", "", "log level: debug, info, warn, error")
	quiet := flags.Bool("quiet", false, "suppress all but fatal diagnostics")
	useMmap := flags.Bool("mmap", false, "memory-map the input file instead of reading it into memory (decode only)")

	if err := flags.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}

	cfg, err := loadPresetConfig(*configPath)
	if err != nil {
		return err
	}

	if *logLevel == "" {
		*logLevel = cfg.LogLevel
	}
	applyLogLevel(*logLevel, *quiet)

	positional := flags.Args()
	if len(positional) != 3 {
		return errUsage
	}

	modeArg, inPath, outPath := positional[0], positional[1], positional[2]

	if modeArg == "decode" {
		return runDecode(inPath, outPath, *useMmap)
	}

	return runEncode(modeArg, inPath, outPath, *blockLength, *bitsPerSample, *referenceEveryBlock, *bruteForce, cfg)
}

func parseMode(name string) (wav.Mode, error) {
	for m := wav.Mode(0); m < wav.NumModes(); m++ {
		if m.String() == name {
			return m, nil
		}
	}

	return 0, fmt.Errorf("%w: unrecognized mode %q", wav.ErrSSDPCMUnrecognizedMode, name)
}

func runEncode(modeArg, inPath, outPath string, blockLength uint16, bitsPerSample uint8, referenceEveryBlock, bruteForce bool, cfg *presetConfig) (err error) {
	mode, err := parseMode(modeArg)
	if err != nil {
		return err
	}

	if blockLength == 0 {
		if cfg != nil && cfg.BlockLengths[modeArg] != 0 {
			blockLength = cfg.BlockLengths[modeArg]
		} else {
			blockLength = uint16(mode.DefaultBlockLength())
		}
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

	enc := wav.NewEncoder(out, int(dec.SampleRate), int(bitsPerSample), numChans, 0)
	chunk := wav.NewSSDPCMChunk(mode, bitsPerSample, blockLength, referenceEveryBlock)

	// Sequential encode only; cmd/ssdpcm-parallel is the dedicated
	// multithreaded front end (§5).
	hist, err := wav.EncodeSSDPCMChannels(enc, chunk, channels, wav.NewGenericSigmaTracker, bruteForce)
	if err != nil {
		return fmt.Errorf("failed to encode: %w", err)
	}

	hist.Log(mode)

	return nil
}

func runDecode(inPath, outPath string, useMmap bool) (err error) {
	var in io.ReadSeeker

	if useMmap {
		m, err := wav.OpenMmapReader(inPath)
		if err != nil {
			return fmt.Errorf("failed to open input file: %w", err)
		}
		defer m.Close()

		in = m
	} else {
		f, err := os.Open(inPath)
		if err != nil {
			return fmt.Errorf("failed to open input file: %w", err)
		}
		defer f.Close()

		in = f
	}

	dec := wav.NewDecoder(in)
	if err := dec.FwdToPCM(); err != nil {
		return fmt.Errorf("failed to read input wav: %w", err)
	}

	if dec.SSDPCM == nil {
		return wav.ErrSSDPCMNotSSDPCM
	}

	if dec.CompressedSamples == 0 {
		return fmt.Errorf("%w: missing fact chunk with sample count", wav.ErrSSDPCMInvalidArg)
	}

	channels, hist, err := wav.DecodeSSDPCMChannels(dec, int(dec.CompressedSamples))
	if err != nil {
		return fmt.Errorf("failed to decode: %w", err)
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

	width := int(dec.SSDPCM.BitsPerOutputSample)
	enc := wav.NewEncoder(out, int(dec.SampleRate), width, len(channels), 1)

	buf := &audio.Float32Buffer{
		Format: &audio.Format{
			NumChannels: len(channels),
			SampleRate:  int(dec.SampleRate),
		},
		Data:           make([]float32, len(channels)*len(channels[0])),
		SourceBitDepth: width,
	}

	for i := range channels[0] {
		for c := range channels {
			var normalized float32
			if width == 8 {
				normalized = (float32(channels[c][i]) - 127.5) / 127.5
			} else {
				normalized = float32(channels[c][i]) / 32768.0
			}

			buf.Data[i*len(channels)+c] = normalized
		}
	}

	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("failed to write decoded pcm: %w", err)
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finalize output file: %w", err)
	}

	hist.Log(dec.SSDPCM.Mode)

	return nil
}
