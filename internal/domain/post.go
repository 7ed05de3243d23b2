package domain

import "time"

// User is the display identity of an account: the session owner, a post
// author, or a profile being viewed.
type User struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

// Comment is a single comment on a post. Replies reuse the same shape,
// nested one level deep under their parent comment.
type Comment struct {
	ID        string    `json:"id"`
	UserEmail string    `json:"userEmail"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	Replies   []Comment `json:"replies,omitempty"`
}

// Post is a single feed entry as the backend returns it. Every mutation
// endpoint responds with the full updated Post; that snapshot is
// authoritative and replaces any local copy wholesale.
type Post struct {
	ID        string    `json:"id"`
	UserEmail string    `json:"userEmail"`
	UserName  string    `json:"userName,omitempty"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`

	// Likes is the set of liker emails. The backend guarantees each email
	// appears at most once.
	Likes []string `json:"likes,omitempty"`

	Comments []Comment `json:"comments,omitempty"`
}

// LikedBy reports whether email is in the post's like set.
func (p *Post) LikedBy(email string) bool {
	for _, e := range p.Likes {
		if e == email {
			return true
		}
	}
	return false
}

// CommentByID returns the comment with the given ID, or nil.
func (p *Post) CommentByID(id string) *Comment {
	for i := range p.Comments {
		if p.Comments[i].ID == id {
			return &p.Comments[i]
		}
	}
	return nil
}
