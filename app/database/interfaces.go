package database

type PageRepository interface {
	GetPage(episodeID string) (*Page, error)
	GetPageCount() (int, error)
	ListEpisodeIDs() ([]string, error)

	UpsertPage(page Page) error
	DeletePage(episodeID string) error
}
