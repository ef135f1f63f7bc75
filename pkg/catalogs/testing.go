package catalogs

// NewTestRecord returns a valid html record for tests.
func NewTestRecord(id, title string) Record {
	return Record{
		ID:           id,
		Title:        title,
		Description:  title + " description",
		Category:     CategoryMath,
		Grade:        "5",
		Topics:       []string{"Arithmetic"},
		Subtopics:    []string{"Addition"},
		ThumbnailURL: "https://example.com/" + id + ".png",
		Content:      "<html><body>" + title + "</body></html>",
		Type:         ContentTypeHTML,
	}
}
