package docker

import (
	"io"

	"github.com/docker/docker/pkg/stdcopy"
)

// demux splits the multiplexed log stream of a non-TTY container into a
// single plain reader.
func demux(rc io.ReadCloser) io.ReadCloser {
	pr, pw := io.Pipe()
	go func() {
		defer rc.Close()
		_, err := stdcopy.StdCopy(pw, pw, rc)
		pw.CloseWithError(err)
	}()
	return pr
}
