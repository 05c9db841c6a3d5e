package radiance

import(
	"bufio"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// writeStaged runs write against a temporary file next to path, and only
// renames it into place once everything has been flushed and closed. On any
// failure the temporary file is removed and path is left untouched.
func writeStaged(path string, write func(io.Writer) error) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.Wrapf(err, "open+w staging file for '%s'", path)
	}
	staged := tmp.Name()

	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(staged)
		}
	}()

	bw := bufio.NewWriter(tmp)
	if err = write(bw); err != nil {
		return err
	}
	if err = bw.Flush(); err != nil {
		return errors.Wrapf(err, "flush '%s'", staged)
	}
	if err = tmp.Sync(); err != nil {
		return errors.Wrapf(err, "sync '%s'", staged)
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrapf(err, "close '%s'", staged)
	}
	if err = os.Chmod(staged, 0644); err != nil {
		return errors.Wrapf(err, "chmod '%s'", staged)
	}
	if err = os.Rename(staged, path); err != nil {
		return errors.Wrapf(err, "rename '%s' -> '%s'", staged, path)
	}

	return nil
}
