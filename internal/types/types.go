package types

// Stage (c) records ----------------------------------------------------------------

// UseCase is one proposed AI/ML application parsed from generated text.
// Keywords keep their source order; it drives search order, not output order.
type UseCase struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
}

// GroupKey is the aggregation key. Two use cases sharing both fields collapse
// into a single report row.
type GroupKey struct {
	Title       string
	Description string
}

func (u UseCase) Key() GroupKey {
	return GroupKey{Title: u.Title, Description: u.Description}
}

// Resource is a dataset reference returned by a catalog search.
type Resource struct {
	Name   string `json:"name"`
	URL    string `json:"url"`
	Source string `json:"source"`
}

// AggregatedRow is the terminal report unit. The set-valued fields are
// rendered as sorted, de-duplicated, ", "-joined strings.
type AggregatedRow struct {
	Title        string `json:"use_case_title"`
	Description  string `json:"use_case_description"`
	Keywords     string `json:"keyword"`
	DatasetNames string `json:"dataset_name"`
	DatasetLinks string `json:"dataset_link"`
	Sources      string `json:"source"`
}

// Columns returns the row in report column order.
func (r AggregatedRow) Columns() []string {
	return []string{r.Title, r.Description, r.Keywords, r.DatasetNames, r.DatasetLinks, r.Sources}
}

// ReportHeader is the fixed column order of the resource report.
var ReportHeader = []string{
	"Use Case Title",
	"Use Case Description",
	"Keyword",
	"Dataset Name",
	"Dataset Link",
	"Source",
}
