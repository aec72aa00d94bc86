package domain

// Remote classification values carried through to the results file.
const (
	RemoteYes     = "Remote"
	RemoteNo      = "Non-Remote"
	RemoteUnknown = "Not Specified"
)

// Sentinels written when a detail page cannot be read.
const (
	DescriptionMissing  = "Description Not Found"
	DescriptionLoadFail = "Error: Failed to load page"
	EmailUnavailable    = "Not Available"
)

// Listing is one discovered posting, before detail enrichment.
type Listing struct {
	City      string
	Title     string
	Link      string
	PostDate  string
	Processed bool
}

// Enriched is a listing after its detail page has been visited.
// String fields keep their sentinel values on failure so the results
// file always has the full column set.
type Enriched struct {
	Listing
	Description string
	Remote      string
	Email       string
	DefaultMail string
	Gmail       string
	Yahoo       string
	Outlook     string
	AOL         string
}

// HistoryRecord is one row of the cross-run ledger of seen links.
type HistoryRecord struct {
	Link        string
	City        string
	Title       string
	DateScraped string
}
