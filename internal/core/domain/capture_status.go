package domain

// Capture loop states per interface.
const (
	CaptureStarting = "starting"
	CaptureRunning  = "running"
	CaptureFailed   = "failed"
	CaptureStopped  = "stopped"
)

// InterfaceStatus reports the state of one capture loop.
type InterfaceStatus struct {
	Name    string           `json:"name"`
	State   string           `json:"state"`
	Error   string           `json:"error,omitempty"`
	Metrics InterfaceMetrics `json:"metrics"`
}

// InterfaceMetrics holds frame counters for one capture loop.
type InterfaceMetrics struct {
	FramesReceived int64 `json:"frames_received"`
	FramesDecoded  int64 `json:"frames_decoded"`
	FramesDropped  int64 `json:"frames_dropped"` // subscriber buffer full
}
