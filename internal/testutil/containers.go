// Package testutil holds helpers shared by container-backed integration tests.
package testutil

import (
	"os"
	"os/exec"
	"strings"

	"github.com/testcontainers/testcontainers-go"
)

// usingPodman reports whether the docker-compatible engine is really Podman,
// judged by DOCKER_HOST first and then by the output of "docker info".
func usingPodman() bool {
	if strings.Contains(os.Getenv("DOCKER_HOST"), "podman") {
		return true
	}
	out, err := exec.Command("docker", "info").CombinedOutput()
	return err == nil && strings.Contains(strings.ToLower(string(out)), "podman")
}

// DetectContainerProvider picks the testcontainers provider for the local engine.
func DetectContainerProvider() testcontainers.ProviderType {
	if usingPodman() {
		return testcontainers.ProviderPodman
	}
	return testcontainers.ProviderDocker
}

// ConfigureRyuk disables the Ryuk reaper under Podman, where it usually lacks
// permissions. It leaves an explicit TESTCONTAINERS_RYUK_DISABLED untouched
// and reports whether it changed anything.
func ConfigureRyuk() bool {
	if os.Getenv("TESTCONTAINERS_RYUK_DISABLED") != "" || !usingPodman() {
		return false
	}
	os.Setenv("TESTCONTAINERS_RYUK_DISABLED", "true")
	return true
}
