// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// PaperSearchResult is one page of arXiv results for a keyword group.
type PaperSearchResult struct {
	TotalResults int           `json:"total_results" yaml:"total_results"`
	StartIndex   int           `json:"start_index" yaml:"start_index"`
	ItemsPerPage int           `json:"items_per_page" yaml:"items_per_page"`
	Entries      []PaperRecord `json:"entries" yaml:"entries"`
}

// PaperRecord holds the metadata of a single arXiv entry. Optional arXiv
// extension fields are empty when the feed omits them.
type PaperRecord struct {
	ID              string        `json:"id" yaml:"id"`
	Title           string        `json:"title" yaml:"title"`
	Summary         string        `json:"summary" yaml:"summary"`
	Published       string        `json:"published" yaml:"published"`
	Updated         string        `json:"updated" yaml:"updated"`
	Authors         []PaperAuthor `json:"authors" yaml:"authors"`
	Links           []PaperLink   `json:"links" yaml:"links"`
	DOI             string        `json:"doi,omitempty" yaml:"doi,omitempty"`
	Comment         string        `json:"comment,omitempty" yaml:"comment,omitempty"`
	JournalRef      string        `json:"journal_ref,omitempty" yaml:"journal_ref,omitempty"`
	PrimaryCategory string        `json:"primary_category,omitempty" yaml:"primary_category,omitempty"`
	Categories      []string      `json:"categories,omitempty" yaml:"categories,omitempty"`
}

// PaperAuthor is an entry author with an optional affiliation.
type PaperAuthor struct {
	Name        string `json:"name" yaml:"name"`
	Affiliation string `json:"affiliation,omitempty" yaml:"affiliation,omitempty"`
}

// PaperLink is an Atom link element of an entry.
type PaperLink struct {
	Href  string `json:"href" yaml:"href"`
	Rel   string `json:"rel" yaml:"rel"`
	Type  string `json:"type" yaml:"type"`
	Title string `json:"title,omitempty" yaml:"title,omitempty"`
}
