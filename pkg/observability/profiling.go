package observability

import (
	"os"

	pyroscope "github.com/grafana/pyroscope-go"
)

// StartProfiling attaches a continuous profiler when a server address is
// configured. Failures are silent: profiling must never block startup.
func StartProfiling(appName, serverAddress string) {
	if serverAddress == "" {
		serverAddress = os.Getenv("PYROSCOPE_SERVER_ADDRESS")
	}
	if serverAddress == "" {
		return
	}

	hostname, _ := os.Hostname()
	_, _ = pyroscope.Start(pyroscope.Config{
		ApplicationName: appName,
		ServerAddress:   serverAddress,
		Tags:            map[string]string{"hostname": hostname},
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocObjects,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseObjects,
			pyroscope.ProfileInuseSpace,
		},
	})
}
