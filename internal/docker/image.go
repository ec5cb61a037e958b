package docker

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/distribution/reference"
)

// BuildOptions describes an image build.
type BuildOptions struct {
	// ContextDir is the build context. When empty, the context holds only
	// the Dockerfile.
	ContextDir string
	// Dockerfile is the Dockerfile path. With a ContextDir it is relative to
	// the context and defaults to "Dockerfile".
	Dockerfile string
	Tag        string
	BuildArgs  map[string]string
	NoCache    bool
}

// BuildImage sends a build context to the daemon and streams the build
// output to sink. It returns the built image's id, read from the aux record
// the daemon emits at the end of a successful build, without its digest
// algorithm prefix.
func (c Client) BuildImage(ctx context.Context, options BuildOptions, sink io.Writer) (string, error) {
	var (
		buildContext io.ReadCloser
		dockerfile   = options.Dockerfile
	)

	if options.ContextDir == "" {
		content, err := os.ReadFile(options.Dockerfile)
		if err != nil {
			return "", fmt.Errorf("failed to read Dockerfile at %q: %w\nCheck that the file exists and is readable", options.Dockerfile, err)
		}
		buildContext = dockerfileContext(content)
		dockerfile = "Dockerfile"
	} else {
		var err error
		buildContext, err = directoryContext(options.ContextDir)
		if err != nil {
			return "", err
		}
		if dockerfile == "" {
			dockerfile = "Dockerfile"
		}
	}
	defer buildContext.Close()

	query := url.Values{}
	query.Set("dockerfile", dockerfile)
	query.Set("rm", "1")
	if options.Tag != "" {
		query.Set("t", options.Tag)
	}
	if options.NoCache {
		query.Set("nocache", "1")
	}
	if len(options.BuildArgs) > 0 {
		args, err := json.Marshal(options.BuildArgs)
		if err != nil {
			return "", fmt.Errorf("failed to encode build args: %w", err)
		}
		query.Set("buildargs", string(args))
	}

	status, state, err := c.streamed(ctx, Request{
		Method:      http.MethodPost,
		Path:        "/build",
		Query:       query,
		Body:        buildContext,
		ContentType: "application/x-tar",
	}, sink)
	if err != nil {
		return "", fmt.Errorf("failed to build image %q: %w\nCheck Docker daemon logs for details", options.Tag, err)
	}
	return classifyBuildImage(status, state, options.Tag)
}

// SplitImageReference splits a reference such as "alpine", "alpine:3.20" or
// "ghcr.io/org/app@sha256:..." into the image name and the tag or digest the
// pull endpoint expects. A reference without either gets "latest".
func SplitImageReference(ref string) (string, string, error) {
	named, err := reference.ParseNormalizedNamed(ref)
	if err != nil {
		return "", "", fmt.Errorf("failed to parse image reference %q: %w\nUse a form like alpine:3.20 or registry.example.com/app:tag", ref, err)
	}

	if digested, ok := named.(reference.Digested); ok {
		return reference.FamiliarName(named), digested.Digest().String(), nil
	}

	tagged, ok := reference.TagNameOnly(named).(reference.Tagged)
	if !ok {
		return reference.FamiliarName(named), "latest", nil
	}
	return reference.FamiliarName(named), tagged.Tag(), nil
}

// PullImage pulls image:tag from its registry, streaming progress to sink.
// An empty tag pulls "latest". A pull the daemon accepted can still fail part
// way through; the error the progress stream reported is returned as a
// warning alongside a nil error.
func (c Client) PullImage(ctx context.Context, image, tag string, sink io.Writer) (string, error) {
	if tag == "" {
		tag = "latest"
	}

	query := url.Values{}
	query.Set("fromImage", image)
	query.Set("tag", tag)

	ref := image + ":" + tag
	if strings.Contains(tag, ":") {
		ref = image + "@" + tag
	}
	status, state, err := c.streamed(ctx, Request{
		Method: http.MethodPost,
		Path:   "/images/create",
		Query:  query,
	}, sink)
	if err != nil {
		return "", fmt.Errorf("failed to pull image %q: %w\nCheck registry connectivity", ref, err)
	}
	return classifyPullImage(status, state, ref)
}

// RemoveImage deletes an image or tag and reports what was untagged and
// deleted.
func (c Client) RemoveImage(ctx context.Context, ref string, force, noPrune bool, sink io.Writer) ([]ImageDeleteItem, error) {
	query := url.Values{}
	query.Set("force", strconv.FormatBool(force))
	query.Set("noprune", strconv.FormatBool(noPrune))

	status, decoder, err := c.accumulated(ctx, Request{
		Method: http.MethodDelete,
		Path:   "/images/" + url.PathEscape(ref),
		Query:  query,
	}, sink)
	if err != nil {
		return nil, fmt.Errorf("failed to remove image %q: %w", ref, err)
	}
	return classifyRemoveImage(status, decoder, ref)
}

// PruneImages removes unused images. With dangling set only untagged images
// are considered.
func (c Client) PruneImages(ctx context.Context, dangling bool, sink io.Writer) (PruneReport, error) {
	filters, err := json.Marshal(map[string][]string{
		"dangling": {strconv.FormatBool(dangling)},
	})
	if err != nil {
		return PruneReport{}, fmt.Errorf("failed to encode prune filters: %w", err)
	}

	query := url.Values{}
	query.Set("filters", string(filters))

	status, decoder, err := c.accumulated(ctx, Request{
		Method: http.MethodPost,
		Path:   "/images/prune",
		Query:  query,
	}, sink)
	if err != nil {
		return PruneReport{}, fmt.Errorf("failed to prune images: %w", err)
	}
	return classifyPruneImages(status, decoder)
}
