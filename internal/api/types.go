package api

import "github.com/devconnect/devconnect-go/internal/domain"

// AuthResult is the outcome of a successful login or registration.
type AuthResult struct {
	User  domain.User
	Token string
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	User  domain.User `json:"user"`
	Token string      `json:"token"`
}

type likeRequest struct {
	UserEmail string `json:"userEmail"`
}

type commentRequest struct {
	UserEmail string `json:"userEmail,omitempty"`
	Content   string `json:"content"`
}

type followRequest struct {
	UserEmail string `json:"userEmail"`
}

// postResponse wraps the authoritative post snapshot every mutation
// endpoint returns.
type postResponse struct {
	Post domain.Post `json:"post"`
}

type postsResponse struct {
	Posts []domain.Post `json:"posts"`
}

type userPostsResponse struct {
	User  domain.User   `json:"user"`
	Posts []domain.Post `json:"posts"`
}

type followersResponse struct {
	Followers []string `json:"followers"`
	Count     int      `json:"count"`
}

type followingResponse struct {
	Following []string `json:"following"`
	Count     int      `json:"count"`
}
