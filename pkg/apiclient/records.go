package apiclient

import (
	"net/url"

	"github.com/marmos91/rowguard/pkg/models"
)

// CreateRecordRequest is the body of CreateRecord.
type CreateRecordRequest struct {
	ProjectID  string  `json:"project_id"`
	Lithology  string  `json:"lithology"`
	TimePeriod string  `json:"time_period"`
	Age        float64 `json:"age"`
	Notes      string  `json:"notes,omitempty"`
}

// RecordFilter selects records for list and bulk operations. Empty
// fields match everything.
type RecordFilter struct {
	ProjectID  string `json:"project_id,omitempty"`
	Lithology  string `json:"lithology,omitempty"`
	TimePeriod string `json:"time_period,omitempty"`
}

func (f RecordFilter) query() url.Values {
	return url.Values{
		"project_id":  {f.ProjectID},
		"lithology":   {f.Lithology},
		"time_period": {f.TimePeriod},
	}
}

// CreateRecord inserts a record. Needs writer on the project.
func (c *Client) CreateRecord(req CreateRecordRequest) (*models.Record, error) {
	return createResource[models.Record](c, "/api/v1/records", req)
}

// ListRecords returns the visible records matching f. Records of projects
// the caller cannot see are silently absent.
func (c *Client) ListRecords(f RecordFilter) ([]models.Record, error) {
	return listResources[models.Record](c, withQuery("/api/v1/records", f.query()))
}

// GetRecord returns a visible record.
func (c *Client) GetRecord(id string) (*models.Record, error) {
	return getResource[models.Record](c, resourcePath("/api/v1/records/%s", id))
}

// UpdateRecord patches one record.
func (c *Client) UpdateRecord(id string, patch models.RecordPatch) (*models.Record, error) {
	return patchResource[models.Record](c, resourcePath("/api/v1/records/%s", id), patch)
}

// UpdateRecords patches every visible record matching f, or none.
func (c *Client) UpdateRecords(f RecordFilter, patch models.RecordPatch) (int64, error) {
	var n count
	body := struct {
		Filter RecordFilter       `json:"filter"`
		Patch  models.RecordPatch `json:"patch"`
	}{f, patch}
	if err := c.patch("/api/v1/records", body, &n); err != nil {
		return 0, err
	}
	return n.Count, nil
}

// DeleteRecord deletes one record. Needs the delete capability.
func (c *Client) DeleteRecord(id string) error {
	return c.delete(resourcePath("/api/v1/records/%s", id), nil)
}

// DeleteRecords deletes every record matching f.
func (c *Client) DeleteRecords(f RecordFilter) (int64, error) {
	var n count
	if err := c.delete(withQuery("/api/v1/records", f.query()), &n); err != nil {
		return 0, err
	}
	return n.Count, nil
}
