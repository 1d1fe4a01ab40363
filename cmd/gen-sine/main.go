package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"

	"github.com/kagamiin/ssdpcm-go"
)

func main() {
	err := run(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
}

func run(args []string) (err error) {
	flagSet := flag.NewFlagSet("gen-sine", flag.ContinueOnError)

	output := flagSet.String("output", "output.wav", "filename to write to")
	frequency := flagSet.Float64("frequency", 440, "frequency in hertz to generate")
	length := flagSet.Float64("length", 5, "length in seconds of output file")
	ssdpcmMode := flagSet.String("ssdpcm-mode", "", "encode straight to an SSDPCM mode (ss1, ss1c, ss1.6, ss2, ss2.3, ss3) instead of plain PCM")

	err = flagSet.Parse(args)
	if err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}

	log.Printf("generating a %f sec sine wav at %f hz", *length, *frequency)

	const sampleRate = 48000

	numSamples := int(sampleRate * *length)

	if *ssdpcmMode != "" {
		return genSineSSDPCM(*output, *ssdpcmMode, *frequency, sampleRate, numSamples)
	}

	file, err := os.Create(*output)
	if err != nil {
		return fmt.Errorf("error creating %s: %w", *output, err)
	}

	defer func() {
		cerr := file.Close()
		if cerr != nil && err == nil {
			err = fmt.Errorf("failed to close file: %w", cerr)
		}
	}()

	wavOut := wav.NewEncoder(file, sampleRate, 16, 1, 1)

	for i := range numSamples {
		fv := math.Sin(float64(i) / sampleRate * *frequency * 2 * math.Pi)

		v := float32(fv)

		err = wavOut.WriteFrame(v)
		if err != nil {
			return fmt.Errorf("failed to write frame: %w", err)
		}
	}

	err = wavOut.Close()
	if err != nil {
		return fmt.Errorf("failed to close encoder: %w", err)
	}

	return nil
}

func genSineSSDPCM(output, modeName string, frequency float64, sampleRate, numSamples int) (err error) {
	mode, perr := parseMode(modeName)
	if perr != nil {
		return perr
	}

	samples := make([]wav.Sample, numSamples)
	for i := range samples {
		fv := math.Sin(float64(i)/float64(sampleRate)*frequency*2*math.Pi)
		samples[i] = wav.Sample(math.Round((fv + 1) * 32767.5))
	}

	file, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("error creating %s: %w", output, err)
	}

	defer func() {
		cerr := file.Close()
		if cerr != nil && err == nil {
			err = fmt.Errorf("failed to close file: %w", cerr)
		}
	}()

	enc := wav.NewEncoder(file, sampleRate, 16, 1, 0)
	chunk := wav.NewSSDPCMChunk(mode, 16, uint16(mode.DefaultBlockLength()), false)

	if _, err = wav.EncodeSSDPCMChannels(enc, chunk, [][]wav.Sample{samples}, wav.NewGenericSigmaTracker, false); err != nil {
		return fmt.Errorf("failed to encode ssdpcm: %w", err)
	}

	return nil
}

func parseMode(name string) (wav.Mode, error) {
	for m := wav.Mode(0); m < wav.NumModes(); m++ {
		if m.String() == name {
			return m, nil
		}
	}

	return 0, fmt.Errorf("%w: unrecognized ssdpcm mode %q", wav.ErrSSDPCMUnrecognizedMode, name)
}
