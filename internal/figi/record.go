package figi

// Columns is the canonical field list returned by the mapping service, in table order
var Columns = []string{
	"figi",
	"name",
	"ticker",
	"exchCode",
	"compositeFIGI",
	"uniqueID",
	"securityType",
	"marketSector",
	"shareClassFIGI",
	"uniqueIDFutOpt",
	"securityType2",
	"securityDescription",
}

// Record is one matched instrument as returned in a mapping response's data array
type Record struct {
	FIGI                string `json:"figi"`
	Name                string `json:"name"`
	Ticker              string `json:"ticker"`
	ExchCode            string `json:"exchCode"`
	CompositeFIGI       string `json:"compositeFIGI"`
	UniqueID            string `json:"uniqueID"`
	SecurityType        string `json:"securityType"`
	MarketSector        string `json:"marketSector"`
	ShareClassFIGI      string `json:"shareClassFIGI"`
	UniqueIDFutOpt      string `json:"uniqueIDFutOpt"`
	SecurityType2       string `json:"securityType2"`
	SecurityDescription string `json:"securityDescription"`
}

// Values projects the record onto Columns
func (r Record) Values() []string {
	return []string{
		r.FIGI,
		r.Name,
		r.Ticker,
		r.ExchCode,
		r.CompositeFIGI,
		r.UniqueID,
		r.SecurityType,
		r.MarketSector,
		r.ShareClassFIGI,
		r.UniqueIDFutOpt,
		r.SecurityType2,
		r.SecurityDescription,
	}
}
