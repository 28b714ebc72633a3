package figi

// Job is a single mapping request element: one identifier plus its type
// and the optional attributes the service uses to disambiguate listings.
type Job struct {
	IDType   IDType `json:"idType"`
	IDValue  string `json:"idValue"`
	ExchCode string `json:"exchCode,omitempty"`
	Currency string `json:"currency,omitempty"`
	MICCode  string `json:"micCode,omitempty"`
}

// NewJobs builds one job per value, all sharing the same identifier type
func NewJobs(idType IDType, values []string) []Job {
	jobs := make([]Job, len(values))
	for i, v := range values {
		jobs[i] = Job{IDType: idType, IDValue: v}
	}
	return jobs
}
