package config

import (
	"net"
	"net/url"
	"os"
	"sync"
)

var (
	isDockerOnce   sync.Once
	isDockerResult bool
)

// IsRunningInDocker reports whether the console runs inside a Docker container,
// detected by /.dockerenv. The result is cached after the first call.
func IsRunningInDocker() bool {
	isDockerOnce.Do(func() {
		_, err := os.Stat("/.dockerenv")
		isDockerResult = err == nil
	})
	return isDockerResult
}

// resolveAPIURLForDocker points a loopback API root at host.docker.internal when
// inDocker is true, so a containerized console can reach a backend on the host.
func resolveAPIURLForDocker(apiURL string, inDocker bool) string {
	if !inDocker {
		return apiURL
	}
	u, err := url.Parse(apiURL)
	if err != nil {
		return apiURL
	}
	host := u.Hostname()
	if host != "localhost" && host != "127.0.0.1" {
		return apiURL
	}
	if port := u.Port(); port != "" {
		u.Host = net.JoinHostPort("host.docker.internal", port)
	} else {
		u.Host = "host.docker.internal"
	}
	return u.String()
}
