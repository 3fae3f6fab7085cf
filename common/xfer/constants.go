package xfer

const (
	// AppPort is the default port the daemon listens on for reports,
	// queries and follow connections.
	AppPort = 9901

	// ServerHeader carries the name of the reporting server when a report
	// is not posted to /serv/{name} directly.
	ServerHeader = "X-Xltop-Server"
)

// Details are some generic details that can be fetched from /api
type Details struct {
	Version  string         `json:"version"`
	Hostname string         `json:"hostname"`
	Tick     string         `json:"tick"`
	Window   string         `json:"window"`
	Nodes    map[string]int `json:"nodes"`
	Cells    int            `json:"cells"`
}
