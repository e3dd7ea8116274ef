// package services wraps the concert platform's REST API, one service per resource
package services

// Services bundles the per-resource services sharing one [Client].
type Services struct {
	Client     *Client
	Auth       *AuthService
	Users      *UserService
	Concerts   *ConcertService
	Tickets    *TicketService
	Categories *TicketCategoryService
	Comments   *CommentService
	API        *APIService
}

// New builds every service on top of c.
func New(c *Client) *Services {
	return &Services{
		Client:     c,
		Auth:       NewAuthService(c),
		Users:      NewUserService(c),
		Concerts:   NewConcertService(c),
		Tickets:    NewTicketService(c),
		Categories: NewTicketCategoryService(c),
		Comments:   NewCommentService(c),
		API:        NewAPIService(c),
	}
}
