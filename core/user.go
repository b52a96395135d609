package core

type (
	// User is the signed-in profile obtained from the auth provider.
	// Subject is the stable identity key that scopes all library state.
	User struct {
		Subject   string `json:"subject"`
		Login     string `json:"login"`
		Email     string `json:"email"`
		AvatarURL string `json:"avatarUrl"`
		Name      string `json:"name"`
	}
)
