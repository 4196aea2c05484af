package domain

// Session holds the bearer token and the name decoded from it for display.
type Session struct {
	Token string
	Name  string
}

func (s Session) IsAuthenticated() bool {
	return s.Token != ""
}
