//
// main.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Command expand runs the OT extension expand-transpose step on a
// random square seed matrix, transfers the result over an in-memory
// connection and prints a timing report.
package main

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"runtime/pprof"

	"github.com/markkurossi/text/superscript"

	"github.com/markkurossi/otbits/otext"
	"github.com/markkurossi/otbits/p2p"
	"github.com/markkurossi/otbits/prg"
)

var (
	errVerify = errors.New("received matrix differs from sent matrix")
)

type config struct {
	rows       int
	sid        string
	seed       string
	prg        string
	workers    int
	output     string
	verbose    bool
	timing     bool
	cpuprofile string
}

func main() {
	var cfg config
	flag.IntVar(&cfg.rows, "rows", 1024, "number of output rows")
	flag.StringVar(&cfg.sid, "sid", "test", "session ID")
	flag.StringVar(&cfg.seed, "seed", "",
		"hex-encoded 32-byte seed for the seed matrix")
	flag.StringVar(&cfg.prg, "prg", "cshake", "expander: cshake or blake2x")
	flag.IntVar(&cfg.workers, "workers", 0,
		"number of workers, 0 for sequential")
	flag.StringVar(&cfg.output, "o", "",
		"write the marshaled output matrix to file")
	flag.BoolVar(&cfg.verbose, "v", false, "verbose output")
	flag.BoolVar(&cfg.timing, "timing", false, "print timing report")
	flag.StringVar(&cfg.cpuprofile, "cpuprofile", "",
		"write cpu profile to `file`")
	flag.Parse()

	log.SetFlags(0)

	if err := run(cfg, os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(cfg config, stdout io.Writer) error {
	if len(cfg.cpuprofile) > 0 {
		f, err := os.Create(cfg.cpuprofile)
		if err != nil {
			return fmt.Errorf("could not create CPU profile: %w", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("could not start CPU profile: %w", err)
		}
		defer pprof.StopCPUProfile()
	}

	level := slog.LevelInfo
	if cfg.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))

	if cfg.rows < 0 {
		return fmt.Errorf("invalid number of rows: %d", cfg.rows)
	}
	ctor, err := prg.ParseConstructor(cfg.prg)
	if err != nil {
		return err
	}
	src, err := randomSource(cfg.seed)
	if err != nil {
		return err
	}
	logger.Debug("configuration",
		slog.Int("rows", cfg.rows),
		slog.String("sid", cfg.sid),
		slog.String("prg", cfg.prg),
		slog.Int("workers", cfg.workers),
		redacted("seed"))

	timing := NewTiming()

	sq, err := newSeedMatrix(src)
	if err != nil {
		return err
	}
	timing.Sample("Seeds", fmt.Sprintf("%d×%d",
		otext.SecurityParameter, otext.SecurityParameter))

	out := sq.ExpandTransposeParallel(ctor, []byte(cfg.sid), cfg.rows,
		cfg.workers)
	timing.Sample("Expand", fmt.Sprintf("%d×%d",
		out.Height(), otext.SecurityParameter))

	stats, err := transfer(cfg.sid, out)
	if err != nil {
		return err
	}
	timing.Sample("Xfer", FileSize(stats.Sum()).String())
	logger.Debug("transfer verified", slog.Uint64("bytes", stats.Sum()))

	if len(cfg.output) > 0 {
		data, err := out.MarshalBinary()
		if err != nil {
			return err
		}
		if err := os.WriteFile(cfg.output, data, 0o644); err != nil {
			return err
		}
		timing.Sample("Write", FileSize(len(data)).String())
		logger.Info("wrote matrix",
			slog.String("file", cfg.output), slog.Int("bytes", len(data)))
	}

	fmt.Fprintf(stdout, "Output: %d rows ∈ {0,1}%s\n",
		out.Height(), superscript.Itoa(otext.SecurityParameter))
	if cfg.verbose {
		for i, row := range out.Rows() {
			if i >= 8 {
				fmt.Fprintf(stdout, " ...\n")
				break
			}
			fmt.Fprintf(stdout, " %4d: %v\n", i, row)
		}
	}
	if cfg.timing {
		timing.Print(stdout, stats)
	}
	return nil
}

// randomSource returns a deterministic source for the hex seed or the
// system random source if seed is empty.
func randomSource(seed string) (io.Reader, error) {
	if len(seed) == 0 {
		return rand.Reader, nil
	}
	data, err := hex.DecodeString(seed)
	if err != nil {
		return nil, fmt.Errorf("invalid seed: %w", err)
	}
	return prg.NewReader(data)
}

func newSeedMatrix(r io.Reader) (*otext.SquareBitMatrix, error) {
	rows := make([]otext.BitVector, otext.SecurityParameter)
	for i := range rows {
		v, err := otext.RandomBitVector(r)
		if err != nil {
			return nil, err
		}
		rows[i] = v
	}
	return otext.NewSquareBitMatrix(otext.NewBitMatrix(rows))
}

// transfer sends the session ID and the matrix over a pipe and
// verifies that the peer received them intact.
func transfer(sid string, m *otext.BitMatrix) (p2p.IOStats, error) {
	c0, c1 := p2p.Pipe()

	errc := make(chan error, 1)
	go func() {
		if err := c0.SendString(sid); err != nil {
			errc <- err
			return
		}
		errc <- otext.SendBitMatrix(c0, m)
	}()

	rsid, err := c1.ReceiveString()
	if err != nil {
		return p2p.IOStats{}, err
	}
	received, err := otext.ReceiveBitMatrix(c1)
	if err != nil {
		return p2p.IOStats{}, err
	}
	if err := <-errc; err != nil {
		return p2p.IOStats{}, err
	}
	if rsid != sid || !received.Equal(m) {
		return p2p.IOStats{}, errVerify
	}
	stats := c0.Stats.Add(c1.Stats)

	if err := c0.Close(); err != nil {
		return stats, err
	}
	return stats, c1.Close()
}

// redacted marks an attribute whose value must not be logged.
func redacted(key string) slog.Attr {
	return slog.String(key, "[redacted]")
}
