package types

type HeartbeatRequest struct {
	ScannerID       string `json:"scanner_id"`
	Zone            string `json:"zone,omitempty"`
	FirmwareVersion string `json:"firmware_version,omitempty"`
	IP              string `json:"ip,omitempty"`
}

type HeartbeatResponse struct {
	OK         bool   `json:"ok"`
	ScannerID  string `json:"scanner_id"`
	ServerTime string `json:"server_time"`
}

// ScannerStatus is the management view of one checkpoint device.
type ScannerStatus struct {
	ScannerID       string `json:"scanner_id"`
	Zone            string `json:"zone"`
	Online          bool   `json:"online"`
	LastSeen        string `json:"last_seen,omitempty"` // RFC3339, empty if never
	LastIP          string `json:"last_ip,omitempty"`
	FirmwareVersion string `json:"firmware_version,omitempty"`
}

type ScannerListResponse struct {
	Scanners []ScannerStatus `json:"scanners"`
}
