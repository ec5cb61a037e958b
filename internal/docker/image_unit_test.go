package docker_test

import (
	"archive/tar"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	imagetypes "github.com/moby/moby/api/types/image"
	"github.com/ryanmoran/dockline/internal/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const buildStream = `{"stream":"Step 1/2 : FROM alpine:latest\n"}
{"stream":" ---> 3f57d9401f8d\n"}
{"stream":"Step 2/2 : RUN echo test\n"}
{"aux":{"ID":"sha256:9c7a54a9a43cca047013b82af109fe963fde787f63f9e016fdc3384500c2823d"}}
{"stream":"Successfully built 9c7a54a9a43c\n"}
`

// readContext unpacks a build context into a map of file name to content.
func readContext(t *testing.T, r io.Reader) map[string]string {
	t.Helper()

	files := map[string]string{}
	tr := tar.NewReader(r)
	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return files
		}
		require.NoError(t, err)

		if header.Typeflag != tar.TypeReg {
			continue
		}
		content, err := io.ReadAll(tr)
		require.NoError(t, err)
		files[header.Name] = string(content)
	}
}

func TestBuildImage(t *testing.T) {
	t.Run("returns the aux id without its algorithm", func(t *testing.T) {
		dir := t.TempDir()
		dockerfile := filepath.Join(dir, "build.Dockerfile")
		require.NoError(t, os.WriteFile(dockerfile, []byte("FROM alpine:latest\n"), 0644))

		var files map[string]string
		transport := &mockTransport{
			doFunc: func(ctx context.Context, req docker.Request, body io.Writer) (int, error) {
				files = readContext(t, req.Body)
				return respond(http.StatusOK, buildStream[:40], buildStream[40:130], buildStream[130:])(ctx, req, body)
			},
		}
		sink := &bytes.Buffer{}

		id, err := docker.NewClient(transport).BuildImage(context.Background(), docker.BuildOptions{
			Dockerfile: dockerfile,
			Tag:        "app:latest",
		}, sink)
		require.NoError(t, err)

		assert.Equal(t, "9c7a54a9a43cca047013b82af109fe963fde787f63f9e016fdc3384500c2823d", id)
		assert.Equal(t, buildStream, sink.String())
		assert.Equal(t, map[string]string{"Dockerfile": "FROM alpine:latest\n"}, files)

		req := transport.lastRequest()
		assert.Equal(t, "/build", req.Path)
		assert.Equal(t, "application/x-tar", req.ContentType)
		assert.Equal(t, "Dockerfile", req.Query.Get("dockerfile"))
		assert.Equal(t, "app:latest", req.Query.Get("t"))
		assert.Equal(t, "1", req.Query.Get("rm"))
		assert.False(t, req.Query.Has("nocache"))
	})

	t.Run("archives a context directory honouring .dockerignore", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "Dockerfile"), []byte("FROM scratch\nCOPY main.go /\n"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "secret.env"), []byte("TOKEN=x\n"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".dockerignore"), []byte("# local only\n*.env\n"), 0644))

		var files map[string]string
		transport := &mockTransport{
			doFunc: func(ctx context.Context, req docker.Request, body io.Writer) (int, error) {
				files = readContext(t, req.Body)
				return respond(http.StatusOK, buildStream)(ctx, req, body)
			},
		}

		_, err := docker.NewClient(transport).BuildImage(context.Background(), docker.BuildOptions{
			ContextDir: dir,
			BuildArgs:  map[string]string{"VERSION": "1.2.3"},
			NoCache:    true,
		}, nil)
		require.NoError(t, err)

		assert.Contains(t, files, "Dockerfile")
		assert.Contains(t, files, "main.go")
		assert.NotContains(t, files, "secret.env")

		query := transport.lastRequest().Query
		assert.Equal(t, "Dockerfile", query.Get("dockerfile"))
		assert.Equal(t, "1", query.Get("nocache"))

		var args map[string]string
		require.NoError(t, json.Unmarshal([]byte(query.Get("buildargs")), &args))
		assert.Equal(t, map[string]string{"VERSION": "1.2.3"}, args)
	})

	t.Run("fails with the daemon message when the build breaks", func(t *testing.T) {
		dir := t.TempDir()
		dockerfile := filepath.Join(dir, "Dockerfile")
		require.NoError(t, os.WriteFile(dockerfile, []byte("FROM alpine:latest\nRUN false\n"), 0644))

		transport := &mockTransport{
			doFunc: func(ctx context.Context, req docker.Request, body io.Writer) (int, error) {
				_, _ = io.Copy(io.Discard, req.Body)
				return respond(http.StatusOK,
					`{"stream":"Step 2/2 : RUN false\n"}`+"\n",
					`{"errorDetail":{"code":1,"message":"exit code: 1"},"error":"The command '/bin/sh -c false' returned a non-zero code: 1"}`+"\n",
				)(ctx, req, body)
			},
		}

		_, err := docker.NewClient(transport).BuildImage(context.Background(), docker.BuildOptions{
			Dockerfile: dockerfile,
			Tag:        "app:latest",
		}, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, docker.ErrFailed)
		assert.Contains(t, err.Error(), "returned a non-zero code: 1")
		assert.Contains(t, err.Error(), `"app:latest"`)
	})

	t.Run("fails when the Dockerfile is missing", func(t *testing.T) {
		transport := &mockTransport{}

		_, err := docker.NewClient(transport).BuildImage(context.Background(), docker.BuildOptions{
			Dockerfile: filepath.Join(t.TempDir(), "missing"),
		}, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
		assert.Empty(t, transport.requests)
	})
}

func TestPullImage(t *testing.T) {
	t.Run("succeeds on 200 and streams progress", func(t *testing.T) {
		progress := `{"status":"Pulling from library/alpine","id":"latest"}` + "\n" +
			`{"status":"Download complete","progressDetail":{},"id":"f18232174bc9"}` + "\n"
		c, transport := newMockClient(http.StatusOK, progress)
		sink := &bytes.Buffer{}

		warning, err := c.PullImage(context.Background(), "alpine", "", sink)
		require.NoError(t, err)
		assert.Empty(t, warning)
		assert.Equal(t, progress, sink.String())

		req := transport.lastRequest()
		assert.Equal(t, "/images/create", req.Path)
		assert.Equal(t, "alpine", req.Query.Get("fromImage"))
		assert.Equal(t, "latest", req.Query.Get("tag"))
	})

	t.Run("trusts the status code over the stream", func(t *testing.T) {
		c, _ := newMockClient(http.StatusOK, `{"error":"manifest unknown"}`+"\n")

		warning, err := c.PullImage(context.Background(), "alpine", "3.20", nil)
		require.NoError(t, err)
		assert.Equal(t, "manifest unknown", warning)
	})

	t.Run("prefers the daemon message on error", func(t *testing.T) {
		c, _ := newMockClient(http.StatusNotFound, `{"message":"pull access denied for nope"}`+"\n")

		_, err := c.PullImage(context.Background(), "nope", "latest", nil)
		require.Error(t, err)
		assert.Equal(t, `failed to pull image "nope:latest": pull access denied for nope (status 404)`, err.Error())
	})
}

func TestRemoveImage(t *testing.T) {
	t.Run("reports untagged and deleted records", func(t *testing.T) {
		c, transport := newMockClient(http.StatusOK, `[{"Untagged":"app:latest"},{"Deleted":"sha256:abc"}]`)

		items, err := c.RemoveImage(context.Background(), "app:latest", true, false, nil)
		require.NoError(t, err)
		assert.Equal(t, []imagetypes.DeleteResponse{{Untagged: "app:latest"}, {Deleted: "sha256:abc"}}, items)

		req := transport.lastRequest()
		assert.Equal(t, http.MethodDelete, req.Method)
		assert.Equal(t, "/images/app:latest", req.Path)
		assert.Equal(t, "true", req.Query.Get("force"))
		assert.Equal(t, "false", req.Query.Get("noprune"))
	})

	t.Run("accepts an empty body", func(t *testing.T) {
		c, _ := newMockClient(http.StatusOK)

		items, err := c.RemoveImage(context.Background(), "app", false, false, nil)
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("carries the daemon message", func(t *testing.T) {
		c, _ := newMockClient(http.StatusConflict, `{"message":"image is being used by running container 1a2b"}`)

		_, err := c.RemoveImage(context.Background(), "app", false, false, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, docker.ErrFailed)
		assert.Contains(t, err.Error(), "image is being used by running container 1a2b")
	})

	t.Run("falls back to a delete error", func(t *testing.T) {
		c, _ := newMockClient(http.StatusInternalServerError)

		_, err := c.RemoveImage(context.Background(), "app", false, false, nil)
		require.Error(t, err)
		assert.Equal(t, `failed to remove image "app" (status 500)`, err.Error())
	})
}

func TestPruneImages(t *testing.T) {
	t.Run("decodes the report", func(t *testing.T) {
		c, transport := newMockClient(http.StatusOK, `{"ImagesDeleted":[{"Deleted":"sha256:abc"}],"SpaceReclaimed":2048}`)

		report, err := c.PruneImages(context.Background(), true, nil)
		require.NoError(t, err)
		assert.Equal(t, imagetypes.PruneReport{
			ImagesDeleted:  []imagetypes.DeleteResponse{{Deleted: "sha256:abc"}},
			SpaceReclaimed: 2048,
		}, report)

		var filters map[string][]string
		require.NoError(t, json.Unmarshal([]byte(transport.lastRequest().Query.Get("filters")), &filters))
		assert.Equal(t, []string{"true"}, filters["dangling"])
	})

	t.Run("carries the daemon message", func(t *testing.T) {
		c, _ := newMockClient(http.StatusConflict, `{"message":"a prune operation is already running"}`)

		_, err := c.PruneImages(context.Background(), false, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "a prune operation is already running")
	})
}

func TestSplitImageReference(t *testing.T) {
	cases := []struct {
		ref, image, tag string
	}{
		{"alpine", "alpine", "latest"},
		{"alpine:3.20", "alpine", "3.20"},
		{"library/alpine:3.20", "alpine", "3.20"},
		{"localhost:5000/team/app", "localhost:5000/team/app", "latest"},
		{"ghcr.io/org/app:v1", "ghcr.io/org/app", "v1"},
		{
			"alpine@sha256:9c7a54a9a43cca047013b82af109fe963fde787f63f9e016fdc3384500c2823d",
			"alpine",
			"sha256:9c7a54a9a43cca047013b82af109fe963fde787f63f9e016fdc3384500c2823d",
		},
	}
	for _, tc := range cases {
		t.Run(tc.ref, func(t *testing.T) {
			image, tag, err := docker.SplitImageReference(tc.ref)
			require.NoError(t, err)
			assert.Equal(t, tc.image, image)
			assert.Equal(t, tc.tag, tag)
		})
	}

	t.Run("rejects an invalid reference", func(t *testing.T) {
		_, _, err := docker.SplitImageReference("Not A Reference")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse image reference")
	})
}
