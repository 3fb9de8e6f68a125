package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/melih/dockship/internal/core/domain"
	"github.com/melih/dockship/internal/core/ports"
)

// stubEngine implements the listing and run calls; anything else panics
// through the nil embedded interface.
type stubEngine struct {
	ports.ContainerEngine
	images     []domain.Image
	containers []domain.Container
	runs       []domain.RunSpec
	stopped    []string
}

func (s *stubEngine) ListImages(_ context.Context, name string) ([]domain.Image, error) {
	if name == "" {
		return s.images, nil
	}
	var out []domain.Image
	for _, img := range s.images {
		for _, tag := range img.RepoTags {
			if domain.ParseImageRef(tag).Repository == name {
				out = append(out, img)
				break
			}
		}
	}
	return out, nil
}

func (s *stubEngine) ListContainers(_ context.Context, f domain.ContainerFilter) ([]domain.Container, error) {
	var out []domain.Container
	for _, c := range s.containers {
		if f.Ancestor == "" || c.Image == f.Ancestor {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *stubEngine) RunContainer(_ context.Context, spec domain.RunSpec) (string, error) {
	s.runs = append(s.runs, spec)
	return "0123456789abcdef", nil
}

func (s *stubEngine) StopContainer(_ context.Context, id string) error {
	s.stopped = append(s.stopped, id)
	return nil
}

type result struct {
	out  string
	err  error
	code int
}

func execute(t *testing.T, eng *stubEngine, stdin string, args ...string) result {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("DOCKSHIP_REGION", "")
	t.Setenv("DOCKSHIP_ACCOUNT_ID", "")

	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("region: eu-west-1\n"), 0o600))

	var out, errOut bytes.Buffer
	app := NewApp(strings.NewReader(stdin), &out, &errOut)
	app.newEngine = func(logrus.FieldLogger) (ports.ContainerEngine, func() error, error) {
		return eng, func() error { return nil }, nil
	}

	root := NewRootCmd(app)
	root.SetArgs(append([]string{"--config", cfgPath}, args...))
	root.SetOut(&out)
	root.SetErr(&errOut)
	err := root.ExecuteContext(context.Background())
	return result{out: out.String(), err: err, code: exitCode(err)}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitCodeSuccess},
		{"plain", errors.New("boom"), ExitCodeError},
		{"fatal", domain.Fatal(domain.ErrConflictingContainer, "port 5000", nil), ExitCodeAborted},
		{"wrapped fatal", fmt.Errorf("run: %w", domain.Fatal(domain.ErrMissingImage, "app", nil)), ExitCodeAborted},
		{"credentials", domain.Fatal(domain.ErrCredentialsUnavailable, "aws", nil), ExitCodeNoCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func TestImagesCommand_RendersTable(t *testing.T) {
	eng := &stubEngine{images: []domain.Image{
		{ID: "sha256:aaaaaaaaaaaaaaaaaaaa", RepoTags: []string{"app:latest"}},
		{ID: "sha256:bbbbbbbbbbbbbbbbbbbb"},
	}}

	res := execute(t, eng, "", "images")

	require.NoError(t, res.err)
	assert.Contains(t, res.out, "app:latest")
	assert.Contains(t, res.out, "<none>")
}

func TestRunCommand_UsesConfiguredDefaultPorts(t *testing.T) {
	eng := &stubEngine{images: []domain.Image{{ID: "sha256:a", RepoTags: []string{"app:latest"}}}}

	res := execute(t, eng, "", "run", "app", "-e", "MODE=dev")

	require.NoError(t, res.err)
	require.Len(t, eng.runs, 1)
	assert.Equal(t, domain.PortMap{"5000": "5000/tcp"}, eng.runs[0].Ports)
	assert.Equal(t, map[string]string{"MODE": "dev"}, eng.runs[0].Env)
	assert.Contains(t, res.out, "0123456789abcdef")
}

func TestRunCommand_DeclinedPortConflictAborts(t *testing.T) {
	eng := &stubEngine{containers: []domain.Container{
		{ID: "holder", Image: "other", State: "running", Ports: domain.PortMap{"8080": "80/tcp"}},
	}}

	res := execute(t, eng, "n\n", "run", "app", "-p", "8080:8080")

	assert.Equal(t, ExitCodeAborted, res.code)
	assert.Empty(t, eng.runs)
	assert.Empty(t, eng.stopped)
	assert.Contains(t, res.out, "Stop the container?")
}

func TestRunCommand_YesFlagStopsHolder(t *testing.T) {
	eng := &stubEngine{containers: []domain.Container{
		{ID: "holder", Image: "other", State: "running", Ports: domain.PortMap{"8080": "80/tcp"}},
	}}

	res := execute(t, eng, "", "--yes", "run", "app", "-p", "8080:8080")

	require.NoError(t, res.err)
	assert.Equal(t, []string{"holder"}, eng.stopped)
	assert.Len(t, eng.runs, 1)
}

func TestRunCommand_RejectsBadEnv(t *testing.T) {
	res := execute(t, &stubEngine{}, "", "run", "app", "-e", "NOEQUALS")

	assert.Equal(t, ExitCodeError, res.code)
}

func TestStopCommand_NeedsTarget(t *testing.T) {
	res := execute(t, &stubEngine{}, "", "stop")

	require.Error(t, res.err)
	assert.Equal(t, ExitCodeError, res.code)
}

func TestParseEnv(t *testing.T) {
	vars, err := parseEnv([]string{"A=1", "B=x=y", "C="})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"A": "1", "B": "x=y", "C": ""}, vars)

	vars, err = parseEnv(nil)
	require.NoError(t, err)
	assert.Nil(t, vars)

	_, err = parseEnv([]string{"=v"})
	assert.Error(t, err)
}
