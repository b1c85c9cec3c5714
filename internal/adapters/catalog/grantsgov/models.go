package grantsgov

type searchRequest struct {
	Rows              int    `json:"rows"`
	Keyword           string `json:"keyword,omitempty"`
	OppStatuses       string `json:"oppStatuses"`
	FundingCategories string `json:"fundingCategories,omitempty"`
}

type searchReply struct {
	ErrorCode int        `json:"errorcode"`
	Msg       string     `json:"msg"`
	Data      *replyData `json:"data"`
}

type replyData struct {
	HitCount int      `json:"hitCount"`
	OppHits  []oppHit `json:"oppHits"`
}

type oppHit struct {
	ID         string `json:"id"`
	Number     string `json:"number"`
	Title      string `json:"title"`
	AgencyCode string `json:"agencyCode"`
	Agency     string `json:"agency"`
	AgencyName string `json:"agencyName"`
	OpenDate   string `json:"openDate"`
	CloseDate  string `json:"closeDate"`
	OppStatus  string `json:"oppStatus"`
}

// categoryCodes maps catalog categories onto Grants.gov funding category codes
var categoryCodes = map[string]string{
	"agriculture":            "AG",
	"arts":                   "AR",
	"community development":  "CD",
	"education":              "ED",
	"energy":                 "EN",
	"environment":            "ENV",
	"health":                 "HL",
	"housing":                "HO",
	"science and technology": "ST",
	"technology":             "ST",
}
