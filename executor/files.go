package executor

import (
	"bufio"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/handsomefox/ridit/filter"
	"github.com/rs/zerolog/log"
	"github.com/zeebo/blake3"
)

// FileExists returns whether the file exists.
func FileExists(filename string) bool {
	if _, err := os.Stat(filename); err != nil {
		return false
	}

	return true
}

// stagingKey keeps two different urls with the same filename apart.
func stagingKey(url string) string {
	sum := blake3.Sum256([]byte(url))
	return hex.EncodeToString(sum[:8])
}

// stagingPath is <staging>/<subreddit>/<key>-<filename>.
func (e *Executor) stagingPath(c *filter.Candidate) string {
	return filepath.Join(e.stagingDir, c.Subreddit, stagingKey(c.URL)+"-"+c.Filename)
}

// stage streams r into the staging file, calling onChunk after every read.
// The file is complete and closed when stage returns without error.
func (e *Executor) stage(c *filter.Candidate, r io.Reader, onChunk func(n int)) (_ string, err error) {
	path := e.stagingPath(c)
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return "", fmt.Errorf("%w: couldn't create staging directory(name=%s)", err, filepath.Dir(path))
	}

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("%w: cannot create file on staging dir", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = cerr
		}
		if err != nil {
			removeStaged(path)
		}
	}()

	fw := bufio.NewWriter(file)
	n, err := io.Copy(fw, &chunkReader{r: r, onChunk: onChunk})
	if err != nil {
		return "", fmt.Errorf("%w: failed to save image from %s", err, c.URL)
	}
	if err := fw.Flush(); err != nil {
		return "", fmt.Errorf("%w: failed to save image from %s", err, c.URL)
	}

	log.Debug().Int64("written_bytes", n).Str("path", path).Msg("staged")
	return path, nil
}

func removeStaged(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Str("path", path).Msg("failed to remove staged file")
	}
}

// copyFile writes src to a private temporary file next to dst and links it into place, so dst
// only ever exists complete. The first writer of dst wins, a later copy finds it present and returns nil.
func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*")
	if err != nil {
		return err
	}
	tmp := out.Name()
	defer os.Remove(tmp)

	if _, err = io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err = out.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp, 0o644); err != nil {
		return err
	}

	if err = os.Link(tmp, dst); err != nil {
		if errors.Is(err, fs.ErrExist) {
			log.Debug().Str("path", dst).Msg("already placed by another download")
			return nil
		}
		return err
	}
	return nil
}

type chunkReader struct {
	r       io.Reader
	onChunk func(n int)
}

func (cr *chunkReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	if n > 0 && cr.onChunk != nil {
		cr.onChunk(n)
	}
	return n, err
}
