package lifecycle

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/melih/dockship/internal/core/domain"
)

// fakeEngine is an in-memory engine. Images are keyed by repository:tag.
type fakeEngine struct {
	images     []domain.Image
	containers []domain.Container // running containers

	removeFail map[string]error
	buildErr   error

	builds  []string
	runs    []domain.RunSpec
	stopped []string
	removed []string
	tagged  map[string]string
	logins  []domain.Credentials
	pushed  []string
	pruned  int
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{tagged: map[string]string{}, removeFail: map[string]error{}}
}

func (f *fakeEngine) addImage(id string, tags ...string) {
	f.images = append(f.images, domain.Image{ID: id, RepoTags: tags})
}

func matches(img domain.Image, name string) bool {
	if name == "" {
		return true
	}
	for _, t := range img.RepoTags {
		if t == name || domain.ParseImageRef(t).Repository == name {
			return true
		}
	}
	return false
}

func (f *fakeEngine) ListImages(_ context.Context, name string) ([]domain.Image, error) {
	var out []domain.Image
	for _, img := range f.images {
		if matches(img, name) {
			out = append(out, img)
		}
	}
	return out, nil
}

func (f *fakeEngine) InspectImage(_ context.Context, ref string) (domain.Image, error) {
	for _, img := range f.images {
		for _, t := range img.RepoTags {
			if t == ref {
				return img, nil
			}
		}
	}
	return domain.Image{}, domain.ErrImageNotFound
}

func (f *fakeEngine) ListContainers(_ context.Context, filter domain.ContainerFilter) ([]domain.Container, error) {
	var out []domain.Container
	for _, c := range f.containers {
		if filter.Ancestor != "" && c.Image != filter.Ancestor {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeEngine) BuildImage(_ context.Context, dir, tag, _ string) error {
	if f.buildErr != nil {
		return f.buildErr
	}
	f.builds = append(f.builds, tag)
	f.addImage("sha256:built-"+tag, domain.ParseImageRef(tag).String())
	return nil
}

func (f *fakeEngine) RunContainer(_ context.Context, spec domain.RunSpec) (string, error) {
	f.runs = append(f.runs, spec)
	return "c0ffee000000000000", nil
}

func (f *fakeEngine) StopContainer(_ context.Context, id string) error {
	f.stopped = append(f.stopped, id)
	return nil
}

func (f *fakeEngine) PruneContainers(context.Context) (int, error) {
	f.pruned++
	return len(f.stopped), nil
}

func (f *fakeEngine) RemoveImage(_ context.Context, id string, _ bool) error {
	if err := f.removeFail[id]; err != nil {
		return err
	}
	f.removed = append(f.removed, id)
	return nil
}

func (f *fakeEngine) TagImage(_ context.Context, source, target string) error {
	f.tagged[source] = target
	return nil
}

func (f *fakeEngine) Login(_ context.Context, creds domain.Credentials) error {
	f.logins = append(f.logins, creds)
	return nil
}

func (f *fakeEngine) PushImage(_ context.Context, ref string) ([]domain.PushEvent, error) {
	f.pushed = append(f.pushed, ref)
	return []domain.PushEvent{
		{ID: "l1", Status: "Preparing"},
		{ID: "l1", Status: domain.PushStatusPushed},
		{Status: "latest: digest: sha256:abc size: 528"},
	}, nil
}

func (f *fakeEngine) ContainerLogs(context.Context, string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader("hello\n")), nil
}

// mutations counts every call that changes engine state.
func (f *fakeEngine) mutations() int {
	return len(f.builds) + len(f.runs) + len(f.stopped) + len(f.removed) + len(f.tagged) + len(f.pushed) + f.pruned
}

type fakeRegistry struct {
	account     string
	creds       domain.Credentials
	err         error
	accountHits int
}

func (r *fakeRegistry) AccountID(context.Context, string) (string, error) {
	r.accountHits++
	if r.err != nil {
		return "", r.err
	}
	return r.account, nil
}

func (r *fakeRegistry) Credentials(context.Context, string) (domain.Credentials, error) {
	if r.err != nil {
		return domain.Credentials{}, r.err
	}
	return r.creds, nil
}

type fakeBuilder struct {
	prepared []string
	cleaned  int
}

func (b *fakeBuilder) Prepare(_ context.Context, source string, _ []string) (string, func(), error) {
	b.prepared = append(b.prepared, source)
	return source, func() { b.cleaned++ }, nil
}

// scripted answers questions in order and records them.
type scripted struct {
	answers []bool
	asked   []domain.Question
}

func (s *scripted) Confirm(_ context.Context, q domain.Question) (bool, error) {
	s.asked = append(s.asked, q)
	if len(s.answers) == 0 {
		return false, errors.New("unexpected question: " + q.String())
	}
	a := s.answers[0]
	s.answers = s.answers[1:]
	return a, nil
}

type fakeStore struct {
	resets int
}

func (s *fakeStore) Reset() error {
	s.resets++
	return nil
}

func (s *fakeStore) Read() (map[string]any, error) {
	return map[string]any{}, nil
}

type fakeProbe bool

func (p fakeProbe) Restricted() bool { return bool(p) }
