package blockcli

import (
	"encoding/json"

	"github.com/blocklistd/blocklistd/common"
)

func invoke[T any](c *Client, method common.UpdateType, message any) (*T, error) {
	resp, err := c.invoke(method, message)
	if err != nil {
		return nil, err
	}
	var d T
	return &d, json.Unmarshal(resp, &d)
}

// Check runs a freshness check for the given artifact class. retry bounds
// the daemon-side transport retries.
func (c *Client) Check(class string, retry int) (*common.CheckResponse, error) {
	return invoke[common.CheckResponse](c, common.UPDATE_CHECK, &common.CheckParams{
		Class: class,
		Retry: retry,
	})
}

// Download starts the download pipeline for the given artifact class.
func (c *Client) Download(class string, force bool) (*common.DownloadResponse, error) {
	return invoke[common.DownloadResponse](c, common.UPDATE_DOWNLOAD, &common.DownloadParams{
		Class: class,
		Force: force,
	})
}

// Cancel terminates the in-flight pipeline for the given artifact class.
func (c *Client) Cancel(class string) (*common.CancelResponse, error) {
	return invoke[common.CancelResponse](c, common.UPDATE_CANCEL, &common.CancelParams{
		Class: class,
	})
}

// Status returns the daemon's current orchestration status.
func (c *Client) Status() (*common.StatusResponse, error) {
	return invoke[common.StatusResponse](c, common.UPDATE_STATUS, nil)
}

// Watch subscribes this connection to the status broadcast stream. The
// reply carries the current status; use Listen with an UPDATE_STATUS
// handler to receive subsequent changes.
func (c *Client) Watch() (*common.StatusUpdate, error) {
	return invoke[common.StatusUpdate](c, common.UPDATE_WATCH, nil)
}

// Versions reports the installed and latest timestamps per artifact class.
func (c *Client) Versions() (*common.VersionsResponse, error) {
	return invoke[common.VersionsResponse](c, common.UPDATE_VERSIONS, nil)
}

// Flush prunes finished job records from the daemon's state.
func (c *Client) Flush() (*common.FlushResponse, error) {
	return invoke[common.FlushResponse](c, common.UPDATE_FLUSH, nil)
}
