package figi

// JobResult is the service's answer for one job, positionally aligned with the request.
// Exactly one of Data, Error or Warning is normally set: Data on a match, Warning when
// the identifier was valid but nothing matched, Error when the job itself was rejected.
type JobResult struct {
	Data    []Record `json:"data,omitempty"`
	Error   string   `json:"error,omitempty"`
	Warning string   `json:"warning,omitempty"`
}

// Matched reports whether the service returned at least one record
func (r JobResult) Matched() bool {
	return len(r.Data) > 0
}

// Message returns the service's error or warning text for an unmatched job
func (r JobResult) Message() string {
	if r.Error != "" {
		return r.Error
	}
	if r.Warning != "" {
		return r.Warning
	}
	return "no data in response"
}
