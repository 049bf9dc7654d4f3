package service

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID string
	Email  string
	Admin  bool
}

// owns reports whether the actor may see a resource owned by userID.
func (a Actor) owns(userID string) bool {
	return a.Admin || a.UserID == userID
}
