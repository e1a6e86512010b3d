package authz

// Authenticated callers are either regular users or admins; there are no other roles.

func CanEditPost(userID, authorID int, isAdmin bool) bool {
	return isAdmin || (userID != 0 && userID == authorID)
}

func CanManageUsers(isAdmin bool) bool {
	return isAdmin
}
