package nav

// Link is one top navigation entry. Key matches the active-screen key the
// layout highlights.
type Link struct {
	Key   string
	Href  string
	Label string
}

func Links() []Link {
	return []Link{
		{Key: "jobcards", Href: "/desk/jobcards", Label: "Job Cards"},
		{Key: "catalog", Href: "/desk/catalog", Label: "Parts Catalog"},
		{Key: "exports", Href: "/desk/exports", Label: "Exports"},
		{Key: "settings", Href: "/desk/settings", Label: "Settings"},
		{Key: "help", Href: "/desk/help", Label: "Help"},
	}
}
