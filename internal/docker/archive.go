package docker

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/moby/go-archive"
	"github.com/moby/patternmatcher/ignorefile"
)

// dockerfileContext streams a build context holding nothing but a Dockerfile.
func dockerfileContext(dockerfile []byte) io.ReadCloser {
	pr, pw := io.Pipe()

	go func() {
		tw := tar.NewWriter(pw)

		header := &tar.Header{
			Name: "Dockerfile",
			Mode: 0644,
			Size: int64(len(dockerfile)),
		}

		if err := tw.WriteHeader(header); err != nil {
			pw.CloseWithError(fmt.Errorf("failed to write tar header for Dockerfile: %w\nThis is a system error with tar archive creation", err))
			return
		}

		if _, err := tw.Write(dockerfile); err != nil {
			pw.CloseWithError(fmt.Errorf("failed to write Dockerfile to tar archive: %w\nThis is a system error with tar archive creation", err))
			return
		}

		pw.CloseWithError(tw.Close())
	}()

	return pr
}

// directoryContext tars dir for use as a build context, leaving out whatever
// its .dockerignore excludes.
func directoryContext(dir string) (io.ReadCloser, error) {
	excludes, err := readDockerignore(dir)
	if err != nil {
		return nil, err
	}

	reader, err := archive.TarWithOptions(dir, &archive.TarOptions{
		ExcludePatterns: excludes,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to archive build context %q: %w\nCheck that the directory exists and is readable", dir, err)
	}
	return reader, nil
}

func readDockerignore(dir string) ([]string, error) {
	f, err := os.Open(filepath.Join(dir, ".dockerignore"))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open .dockerignore in %q: %w", dir, err)
	}
	defer f.Close()

	patterns, err := ignorefile.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read .dockerignore in %q: %w", dir, err)
	}
	return patterns, nil
}
