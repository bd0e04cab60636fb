package repair

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"fixwav/models"

	"github.com/pkg/errors"
)

// DestinationPath re-roots source from sourceRoot under destRoot
func DestinationPath(source, sourceRoot, destRoot string) (string, error) {
	rel, err := filepath.Rel(sourceRoot, source)
	if err != nil {
		return "", errors.Wrapf(err, "relative path of %s", source)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.Errorf("%s is outside %s", source, sourceRoot)
	}
	return filepath.Join(destRoot, rel), nil
}

// CleanWave repairs source into its mirrored path under destRoot. The output is
// staged in a temp file next to the destination and only renamed into place once
// complete, so a failed repair leaves nothing behind.
func CleanWave(source, sourceRoot, destRoot string, opts models.RepairOptions) (*models.RepairResult, error) {
	dest, err := DestinationPath(source, sourceRoot, destRoot)
	if err != nil {
		return nil, err
	}

	in, err := os.Open(source)
	if err != nil {
		return nil, errors.Wrap(err, "open source")
	}
	defer in.Close()

	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(err, "create destination directory")
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dest)+".*.tmp")
	if err != nil {
		return nil, errors.Wrap(err, "create destination")
	}
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	out := bufio.NewWriter(tmp)
	result, err := Reconstruct(in, out, opts)
	if err != nil {
		return nil, errors.Wrap(err, source)
	}
	if err := out.Flush(); err != nil {
		return nil, errors.Wrap(err, "flush destination")
	}
	if err := tmp.Close(); err != nil {
		return nil, errors.Wrap(err, "close destination")
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return nil, errors.Wrap(err, "chmod destination")
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return nil, errors.Wrap(err, "move destination into place")
	}
	committed = true

	return result, nil
}
