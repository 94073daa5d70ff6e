package common

type CheckParams struct {
	Class string `json:"class"`
	Retry int    `json:"retry,omitempty"`
}

type CheckResponse struct {
	Class     string `json:"class"`
	Outcome   int    `json:"outcome"`
	Status    string `json:"status"`
	Latest    int64  `json:"latest"`
	Installed int64  `json:"installed"`
}

type DownloadParams struct {
	Class string `json:"class"`
	Force bool   `json:"force,omitempty"`
}

type DownloadResponse struct {
	Class   string `json:"class"`
	Started bool   `json:"started"`
	Target  int64  `json:"target,omitempty"`
}

type CancelParams struct {
	Class string `json:"class"`
}

type CancelResponse struct {
	Class     string `json:"class"`
	Cancelled bool   `json:"cancelled"`
}

type StatusResponse struct {
	Outcome int    `json:"outcome"`
	Status  string `json:"status"`
}

// StatusUpdate is streamed to watchers whenever the orchestrator's
// status changes.
type StatusUpdate struct {
	Outcome int    `json:"outcome"`
	Status  string `json:"status"`
}

type ClassVersion struct {
	Class     string `json:"class"`
	Installed int64  `json:"installed"`
	Latest    int64  `json:"latest"`
}

type VersionsResponse struct {
	Classes []ClassVersion `json:"classes"`
}

type FlushResponse struct {
	Removed int `json:"removed"`
}
