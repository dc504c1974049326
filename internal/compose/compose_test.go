package compose

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chis/uptag/internal/image"
	"github.com/chis/uptag/internal/registry"
	"github.com/chis/uptag/internal/report"
	"github.com/chis/uptag/internal/update"
)

const manifest = `services:
  db:
    # uptag --pattern "<!>.<>"
    image: postgres:14.04
  web:
    build: ./web
  worker:
    build:
      context: worker
      dockerfile: Containerfile
  proxy:
    restart: always
    # uptag --pattern "<!>.<>.<>"
    image: traefik:2.10.4
  broken:
    environment:
      MODE: test
  plain:
    image: redis:7.2
`

const webDockerfile = `# uptag --pattern "<!>.<>"
FROM node:18.04
`

const workerContainerfile = `FROM golang:1.21 AS build
# uptag --pattern "<>-alpine"
FROM alpine:3-alpine
`

func writeFiles(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()

	fs := afero.NewMemMapFs()
	for path, content := range files {
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
	}
	return fs
}

func TestLoad(t *testing.T) {
	fs := writeFiles(t, map[string]string{"/app/docker-compose.yml": manifest})

	f, err := Load(fs, "/app/docker-compose.yml")
	require.NoError(t, err)

	var names []string
	for _, svc := range f.Services {
		names = append(names, svc.Name)
		assert.Equal(t, "/app", svc.Dir)
	}
	assert.Equal(t, []string{"db", "web", "worker", "proxy", "broken", "plain"}, names)
	assert.Equal(t, "/app/docker-compose.yml", f.Path)
	assert.NotNil(t, f.Root)
}

func TestLoadErrors(t *testing.T) {
	fs := writeFiles(t, map[string]string{
		"/app/no-services.yml": "version: \"3.8\"\nnetworks:\n  default:\n    driver: bridge\n",
		"/app/invalid.yml":     "invalid: [yaml: content",
		"/app/list.yml":        "services:\n  - web\n",
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(fs, "/nonexistent/docker-compose.yml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read compose file")
	})

	t.Run("no services", func(t *testing.T) {
		_, err := Load(fs, "/app/no-services.yml")
		assert.ErrorIs(t, err, ErrNoServices)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		_, err := Load(fs, "/app/invalid.yml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse compose file")
	})

	t.Run("services not a mapping", func(t *testing.T) {
		_, err := Load(fs, "/app/list.yml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "services must be a mapping")
	})
}

func TestLoadIncludes(t *testing.T) {
	fs := writeFiles(t, map[string]string{
		"/app/docker-compose.yml": "include:\n  - services/web.yml\n  - path: /shared/db.yml\nservices:\n  main:\n    image: nginx:1.25\n",
		"/app/services/web.yml":   "services:\n  web:\n    build: .\n",
		"/shared/db.yml":          "services:\n  db:\n    image: postgres:16.1\n",
	})

	f, err := Load(fs, "/app/docker-compose.yml")
	require.NoError(t, err)
	require.Len(t, f.Services, 3)

	assert.Equal(t, "main", f.Services[0].Name)
	assert.Equal(t, "web", f.Services[1].Name)
	assert.Equal(t, "/app/services", f.Services[1].Dir)
	assert.Equal(t, "db", f.Services[2].Name)
	assert.Equal(t, "/shared", f.Services[2].Dir)
}

func TestLoadMissingInclude(t *testing.T) {
	fs := writeFiles(t, map[string]string{
		"/app/docker-compose.yml": "include:\n  - missing.yml\n",
	})

	_, err := Load(fs, "/app/docker-compose.yml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load include /app/missing.yml")
}

func service(t *testing.T, f *File, name string) Service {
	t.Helper()
	for _, svc := range f.Services {
		if svc.Name == name {
			return svc
		}
	}
	t.Fatalf("service %s not found", name)
	return Service{}
}

func TestBuildSection(t *testing.T) {
	fs := writeFiles(t, map[string]string{"/app/docker-compose.yml": manifest})
	f, err := Load(fs, "/app/docker-compose.yml")
	require.NoError(t, err)

	tests := []struct {
		service    string
		build      *Build
		dockerfile string
	}{
		{"web", &Build{Context: "./web", Dockerfile: "Dockerfile"}, "/app/web/Dockerfile"},
		{"worker", &Build{Context: "worker", Dockerfile: "Containerfile"}, "/app/worker/Containerfile"},
		{"db", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.service, func(t *testing.T) {
			svc := service(t, f, tt.service)
			build, err := svc.BuildSection()
			require.NoError(t, err)
			assert.Equal(t, tt.build, build)
			if build != nil {
				assert.Equal(t, tt.dockerfile, svc.DockerfilePath(build))
			}
		})
	}
}

func TestImageOccurrence(t *testing.T) {
	fs := writeFiles(t, map[string]string{"/app/docker-compose.yml": manifest})
	f, err := Load(fs, "/app/docker-compose.yml")
	require.NoError(t, err)

	occ, ok, err := service(t, f, "db").ImageOccurrence(f.Path)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, image.Occurrence{
		Image:      image.MustParse("postgres:14.04"),
		Pattern:    "<!>.<>",
		HasPattern: true,
		Source:     "/app/docker-compose.yml",
		Line:       4,
	}, occ)

	occ, ok, err = service(t, f, "proxy").ImageOccurrence(f.Path)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "<!>.<>.<>", occ.Pattern)

	occ, ok, err = service(t, f, "plain").ImageOccurrence(f.Path)
	require.NoError(t, err)
	require.True(t, ok)
	assert.False(t, occ.HasPattern)

	_, ok, err = service(t, f, "broken").ImageOccurrence(f.Path)
	require.NoError(t, err)
	assert.False(t, ok)
}

type fakeSources map[string][]string

func (f fakeSources) Tags(img image.Image) registry.TagSource {
	return registry.NewSliceSource(f[img.Path()]...)
}

func TestCheck(t *testing.T) {
	fs := writeFiles(t, map[string]string{
		"/app/docker-compose.yml":   manifest,
		"/app/web/Dockerfile":       webDockerfile,
		"/app/worker/Containerfile": workerContainerfile,
	})
	f, err := Load(fs, "/app/docker-compose.yml")
	require.NoError(t, err)

	checker := update.NewChecker(fakeSources{
		"postgres": {"15.00", "14.05", "14.04"},
		"node":     {"18.04"},
		"alpine":   {"4-alpine", "3-alpine"},
		"traefik":  {"2.10.4"},
	})

	services := f.Check(context.Background(), fs, checker)
	require.Len(t, services, 6)

	db := services[0]
	assert.Equal(t, "db", db.Key)
	require.Len(t, db.Value.Checks, 1)
	assert.Equal(t, "14.05", db.Value.Checks[0].Result.Outcome.Compatible.Tag)
	assert.Equal(t, "15.00", db.Value.Checks[0].Result.Outcome.Breaking.Tag)

	web := services[1]
	require.Len(t, web.Value.Checks, 1)
	assert.Equal(t, "node:18.04", web.Value.Checks[0].Image().String())

	worker := services[2]
	require.Len(t, worker.Value.Checks, 2)
	var unspecified *update.UnspecifiedPatternError
	assert.ErrorAs(t, worker.Value.Checks[0].Err, &unspecified)
	assert.Equal(t, "4-alpine", worker.Value.Checks[1].Result.Outcome.Compatible.Tag)

	broken := services[4]
	assert.ErrorIs(t, broken.Value.Err, ErrNoImage)
	assert.Empty(t, broken.Value.Checks)

	plain := services[5]
	require.Len(t, plain.Value.Checks, 1)
	assert.ErrorAs(t, plain.Value.Checks[0].Err, &unspecified)

	r := report.ForServices(services)
	assert.Equal(t, []string{"db"}, keys(r.BreakingUpdates))
	assert.Equal(t, []string{"db", "worker"}, keys(r.CompatibleUpdates))
	assert.Equal(t, []string{"web", "proxy"}, keys(r.NoUpdates))
	assert.Equal(t, []string{"worker", "broken", "plain"}, keys(r.Failures))
	assert.Equal(t, report.Failure, r.Level())
}

func TestCheckMissingDockerfile(t *testing.T) {
	fs := writeFiles(t, map[string]string{"/app/docker-compose.yml": "services:\n  web:\n    build: ./web\n"})
	f, err := Load(fs, "/app/docker-compose.yml")
	require.NoError(t, err)

	services := f.Check(context.Background(), fs, update.NewChecker(fakeSources{}))
	require.Len(t, services, 1)
	require.Error(t, services[0].Value.Err)
	assert.Contains(t, services[0].Value.Err.Error(), "failed to read dockerfile")
}

func keys[V any](items []report.Item[string, V]) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Key
	}
	return out
}
