package domain

// Page identifies a view the client can display. Each page maps 1:1 to a
// template resource named after it.
type Page string

const (
	PageLogin    Page = "login"
	PageRegister Page = "register"
	PageCleaner  Page = "cleaner"
	PageManager  Page = "manager"
	PageAdmin    Page = "admin"
)

// Pages lists every page in a stable order.
var Pages = []Page{PageLogin, PageRegister, PageCleaner, PageManager, PageAdmin}

// Template returns the resource name of the page template.
func (p Page) Template() string {
	return string(p) + ".html"
}

// Valid reports whether p is a known page.
func (p Page) Valid() bool {
	for _, known := range Pages {
		if p == known {
			return true
		}
	}
	return false
}

// Authenticated reports whether the page is only reachable with a session.
func (p Page) Authenticated() bool {
	switch p {
	case PageCleaner, PageManager, PageAdmin:
		return true
	default:
		return false
	}
}

// Hash is the navigation fragment. It only matters while unauthenticated.
type Hash string

const (
	HashNone     Hash = ""
	HashLogin    Hash = "#login"
	HashRegister Hash = "#register"
)
