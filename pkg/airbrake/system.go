// system.go captures host and runtime details included in every notice.

package airbrake

import (
	"os"
	"runtime"
)

// serverEnvKeys is the allow-list of process environment variables copied
// into the notice environment map. Entries are included only when present.
var serverEnvKeys = []string{"SERVER_SOFTWARE", "DOCUMENT_ROOT"}

// runtimeContext describes the process: OS, language runtime, and
// hostname (best-effort; omitted if unavailable).
func runtimeContext() map[string]any {
	ctx := map[string]any{
		ctxOS:       runtime.GOOS + "/" + runtime.GOARCH,
		ctxLanguage: "Go/" + runtime.Version(),
	}
	if hostname, err := os.Hostname(); err == nil && hostname != "" {
		ctx[ctxHostname] = hostname
	}
	return ctx
}

// serverEnvironment captures the allow-listed environment variables.
func serverEnvironment() map[string]string {
	env := make(map[string]string, len(serverEnvKeys))
	for _, key := range serverEnvKeys {
		if value := os.Getenv(key); value != "" {
			env[key] = value
		}
	}
	return env
}
