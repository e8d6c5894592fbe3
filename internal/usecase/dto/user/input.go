package userdto

type SaveUserInput struct {
	UserID     string
	Role       string
	ReferrerID string
	ManagerID  string
}
