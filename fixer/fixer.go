// Package fixer mirrors a source tree into a new destination, repairing corrupted WAV files on the way
package fixer

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"fixwav/audio"
	"fixwav/models"
	"fixwav/repair"
	"fixwav/wavparser"

	"github.com/pkg/errors"
)

// ErrDestinationExists is returned when the destination root is already present
var ErrDestinationExists = errors.New("destination path should not exist")

// Config represents the options of one batch run
type Config struct {
	Source      string
	Destination string
	CopyAll     bool // copy clean and non-WAV files too
	Verify      bool // re-read each repaired file as a standard WAV
	Options     models.RepairOptions
}

// Sinks are where the run reports. Corrupt and Clean receive one path per line.
type Sinks struct {
	Corrupt  io.Writer
	Clean    io.Writer
	Progress io.Writer
}

// Failure records a file that could not be repaired or copied
type Failure struct {
	Path string
	Err  error
}

// Summary counts what happened to every file of a run
type Summary struct {
	Total    int
	Corrupt  int
	Repaired int
	Failed   int
	Copied   int
	Skipped  int
	Failures []Failure
	Duration time.Duration
}

// Fixer handles the batch process
type Fixer struct {
	config   Config
	detector *audio.Detector
	corrupt  *log.Logger
	clean    *log.Logger
	progress io.Writer
}

// NewFixer creates a new fixer. Nil sinks discard their output.
func NewFixer(config Config, sinks Sinks) *Fixer {
	return &Fixer{
		config:   config,
		detector: audio.NewDetector(),
		corrupt:  log.New(orDiscard(sinks.Corrupt), "", 0),
		clean:    log.New(orDiscard(sinks.Clean), "", 0),
		progress: orDiscard(sinks.Progress),
	}
}

func orDiscard(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}
	return w
}

// Run processes every regular file under the source root in sorted order.
// Per-file failures are collected in the summary and do not stop the run.
func (f *Fixer) Run(ctx context.Context) (*Summary, error) {
	if _, err := os.Stat(f.config.Destination); err == nil {
		return nil, errors.Wrap(ErrDestinationExists, f.config.Destination)
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "check destination")
	}

	files, err := collectFiles(f.config.Source)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(f.config.Destination, 0755); err != nil {
		return nil, errors.Wrap(err, "create destination")
	}

	summary := &Summary{}
	startTime := time.Now()

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			summary.Duration = time.Since(startTime)
			return summary, err
		}

		fmt.Fprintln(f.progress, path)
		summary.Total++

		outcome, err := f.processFile(path)
		switch outcome {
		case models.OutcomeRepaired:
			summary.Corrupt++
			summary.Repaired++
		case models.OutcomeFailed:
			summary.Failed++
			summary.Failures = append(summary.Failures, Failure{Path: path, Err: err})
		case models.OutcomeCopied:
			summary.Copied++
		case models.OutcomeSkipped, models.OutcomeClean:
			summary.Skipped++
		}
	}

	summary.Duration = time.Since(startTime)
	return summary, nil
}

func (f *Fixer) processFile(path string) (models.Outcome, error) {
	if !isWav(path) {
		return f.copyIfAll(path)
	}

	corrupt, err := f.detector.IsCorrupt(path)
	if err != nil {
		fmt.Fprintf(f.progress, "ERROR: %s - %v\n", path, err)
		return models.OutcomeFailed, err
	}
	if !corrupt {
		return f.copyIfAll(path)
	}

	f.corrupt.Println(path)
	result, err := repair.CleanWave(path, f.config.Source, f.config.Destination, f.config.Options)
	if err != nil {
		if errors.Is(err, wavparser.ErrMarkerMismatch) {
			fmt.Fprintf(f.progress, "ERROR: %s - ID3 tags not found where expected\n", path)
		} else {
			fmt.Fprintf(f.progress, "ERROR: %s - %v\n", path, err)
		}
		return models.OutcomeFailed, err
	}

	if f.config.Verify {
		if err := f.verify(path, result); err != nil {
			fmt.Fprintf(f.progress, "ERROR: %s - %v\n", path, err)
			return models.OutcomeFailed, err
		}
	}

	if result.Tag.Title != "" {
		fmt.Fprintf(f.progress, "  skipped %d ID3 frames (%q), %d bytes of audio\n", result.Frames, result.Tag.Title, result.PayloadLength)
	} else {
		fmt.Fprintf(f.progress, "  skipped %d ID3 frames, %d bytes of audio\n", result.Frames, result.PayloadLength)
	}
	return models.OutcomeRepaired, nil
}

func (f *Fixer) copyIfAll(path string) (models.Outcome, error) {
	if !f.config.CopyAll {
		return models.OutcomeSkipped, nil
	}
	f.clean.Println(path)
	if err := f.copyFile(path); err != nil {
		fmt.Fprintf(f.progress, "ERROR: %s - %v\n", path, err)
		return models.OutcomeFailed, err
	}
	return models.OutcomeCopied, nil
}

// verify re-opens the repaired file and checks it against the source payload
func (f *Fixer) verify(source string, result *models.RepairResult) error {
	dest, err := repair.DestinationPath(source, f.config.Source, f.config.Destination)
	if err != nil {
		return err
	}

	payload, err := readPayload(source, result.PayloadOffset, result.PayloadLength)
	if err != nil {
		return err
	}

	out, err := os.Open(dest)
	if err != nil {
		return errors.Wrap(err, "open repaired file")
	}
	defer out.Close()

	_, err = audio.Verify(out, payload, repair.OutputFormat, repair.OutputBitDepth)
	return err
}

func readPayload(path string, offset, length int64) ([]byte, error) {
	in, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open source")
	}
	defer in.Close()

	payload := make([]byte, length)
	if _, err := in.ReadAt(payload, offset); err != nil {
		return nil, errors.Wrap(err, "read source payload")
	}
	return payload, nil
}

// copyFile copies a file verbatim to its mirrored destination path
func (f *Fixer) copyFile(path string) error {
	dest, err := repair.DestinationPath(path, f.config.Source, f.config.Destination)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return errors.Wrap(err, "create destination directory")
	}

	inFile, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "open source")
	}
	defer inFile.Close()

	outFile, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return errors.Wrap(err, "create destination")
	}

	if _, err := io.Copy(outFile, inFile); err != nil {
		outFile.Close()
		return errors.Wrap(err, "copy file content")
	}
	return errors.Wrap(outFile.Close(), "close destination")
}

func collectFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "error scanning source")
	}
	sort.Strings(files)
	return files, nil
}

func isWav(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".wav"
}
