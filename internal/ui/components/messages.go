package components

// OpenReaderMsg asks the app to open a catalog book in the reader tab.
type OpenReaderMsg struct {
	Slug string
	Page int
}
