package domain

// Announcement is a back-office notice shown to every user, newest first.
type Announcement struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"` // Markdown source
	CreatedAt string `json:"createdAt"`
}

// Journal is an external publication link. Journals are add/delete only;
// there is no update-in-place.
type Journal struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Publisher string `json:"publisher"`
	Year      int    `json:"year"`
	Link      string `json:"link"`
}

// SeedJournals is the default journal list materialized on first read when
// the journals collection is absent.
func SeedJournals() []Journal {
	return []Journal{
		{ID: "journal_1", Title: "Journal of Orthopaedic & Sports Physical Therapy (JOSPT)", Publisher: "JOSPT", Year: 1979, Link: "https://www.jospt.org/"},
		{ID: "journal_2", Title: "Physical Therapy Journal (PTJ)", Publisher: "Oxford University Press", Year: 1921, Link: "https://academic.oup.com/ptj"},
		{ID: "journal_3", Title: "PubMed", Publisher: "National Library of Medicine (NLM)", Year: 1996, Link: "https://pubmed.ncbi.nlm.nih.gov/"},
		{ID: "journal_4", Title: "The Lancet", Publisher: "Elsevier", Year: 1823, Link: "https://www.thelancet.com/"},
		{ID: "journal_5", Title: "ResearchGate", Publisher: "ResearchGate GmbH", Year: 2008, Link: "https://www.researchgate.net/"},
		{ID: "journal_6", Title: "British Journal of Sports Medicine (BJSM)", Publisher: "BMJ", Year: 1964, Link: "https://bjsm.bmj.com/"},
		{ID: "journal_7", Title: "Archives of Physical Medicine and Rehabilitation", Publisher: "Elsevier", Year: 1920, Link: "https://www.archives-pmr.org/"},
	}
}
