package internal

import (
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultStopTimeout is the timeout in seconds for gracefully stopping a container
	// before the daemon kills it.
	DefaultStopTimeout = 10

	// DefaultTTYRetries is the number of retry attempts for initial TTY resize operations.
	// The container may not be fully ready when we first try to resize, so we retry
	// multiple times with increasing delays.
	DefaultTTYRetries = 10

	// DefaultRetryDelay is the base delay between TTY resize retry attempts.
	// Each retry multiplies this by (retry+1): 10ms, 20ms, 30ms, etc.
	DefaultRetryDelay = 10 * time.Millisecond

	// DefaultImageName tags images built by the up workflow.
	DefaultImageName = ImageName("dockline:latest")

	// DefaultDockerfile is the Dockerfile looked up when none is named.
	DefaultDockerfile = "Dockerfile"
)

// Config holds how to reach the daemon. Values come from the environment and
// may be overridden by command-line flags.
type Config struct {
	Host       string
	APIVersion string
	Debug      bool
}

// RunConfig describes one invocation of the up workflow. The embedded Config
// carries the daemon settings, since up parses every flag itself.
type RunConfig struct {
	Config

	ImageName      ImageName
	Pull           bool
	DockerfilePath string
	ContextDir     string
	WorkingDir     string
	StopTimeout    int
	TTYRetries     int
	RetryDelay     time.Duration

	Args    Command
	Env     Environment
	Volumes []string
	Network string
}

type stringSlice []string

func (s *stringSlice) String() string {
	return strings.Join(*s, ",")
}

func (s *stringSlice) Set(value string) error {
	*s = append(*s, value)
	return nil
}

func lookupEnvironment(environment []string) map[string]string {
	lookup := make(map[string]string)
	for _, variable := range environment {
		key, value, ok := strings.Cut(variable, "=")
		if ok {
			lookup[key] = value
		}
	}
	return lookup
}

// ParseConfig reads DOCKER_HOST, DOCKER_API_VERSION and DOCKLINE_DEBUG from
// environment. An empty host or version is left for the docker client to
// resolve. DOCKLINE_DEBUG accepts anything strconv.ParseBool does; other
// values leave debug output off.
func ParseConfig(environment []string) Config {
	lookup := lookupEnvironment(environment)

	debug, _ := strconv.ParseBool(lookup["DOCKLINE_DEBUG"])

	return Config{
		Host:       lookup["DOCKER_HOST"],
		APIVersion: lookup["DOCKER_API_VERSION"],
		Debug:      debug,
	}
}

// ParseRunConfig parses the arguments of the up workflow. It extracts flags
// (--env, --volume, --dockerfile, --context, --image, --pull, --network,
// --workdir, --stop-timeout and the daemon flags --host, --api-version,
// --debug), captures the remaining arguments as the command to execute, and
// passes the terminal's TERM and COLORTERM through to the container.
func ParseRunConfig(args []string, environment []string) (RunConfig, error) {
	lookup := lookupEnvironment(environment)
	daemon := ParseConfig(environment)

	var (
		additionalEnv  stringSlice
		volumes        stringSlice
		dockerfilePath string
		contextDir     string
		imageName      string
		pull           bool
		network        string
		workingDir     string
		stopTimeout    int
	)

	fs := flag.NewFlagSet("up", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Var(&additionalEnv, "env", "environment variable")
	fs.Var(&volumes, "volume", "volume mount")
	fs.StringVar(&dockerfilePath, "dockerfile", DefaultDockerfile, "Dockerfile path")
	fs.StringVar(&contextDir, "context", "", "build context directory")
	fs.StringVar(&imageName, "image", string(DefaultImageName), "image to build or pull")
	fs.BoolVar(&pull, "pull", false, "pull the image instead of building it")
	fs.StringVar(&network, "network", "", "connect to an existing network instead of creating one")
	fs.StringVar(&workingDir, "workdir", "", "working directory inside the container")
	fs.IntVar(&stopTimeout, "stop-timeout", DefaultStopTimeout, "seconds to wait before the container is killed")
	fs.StringVar(&daemon.Host, "host", daemon.Host, "daemon socket to connect to")
	fs.StringVar(&daemon.APIVersion, "api-version", daemon.APIVersion, "daemon API version")
	fs.BoolVar(&daemon.Debug, "debug", daemon.Debug, "enable debug output")

	if err := fs.Parse(args); err != nil {
		return RunConfig{}, fmt.Errorf("failed to parse arguments: %w\nRun 'dockline up --help' for usage", err)
	}

	var env []string
	value, ok := lookup["TERM"]
	if !ok {
		value = "xterm-256color"
	}
	env = append(env, fmt.Sprintf("TERM=%s", value))

	value, ok = lookup["COLORTERM"]
	if !ok {
		value = "truecolor"
	}
	env = append(env, fmt.Sprintf("COLORTERM=%s", value))

	env = append(env, additionalEnv...)

	return RunConfig{
		Config:         daemon,
		ImageName:      ImageName(imageName),
		Pull:           pull,
		DockerfilePath: dockerfilePath,
		ContextDir:     contextDir,
		WorkingDir:     workingDir,
		StopTimeout:    stopTimeout,
		TTYRetries:     DefaultTTYRetries,
		RetryDelay:     DefaultRetryDelay,
		Args:           Command(fs.Args()),
		Env:            Environment(env),
		Volumes:        volumes,
		Network:        network,
	}, nil
}
