package models

type User struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	PassHash   []byte `json:"-"`
	Role       string `json:"role"`
	CoverPhoto string `json:"coverPhoto"`
}

// UserOut is the user shape returned to clients
// (no password hash, no email leaks to other users).
type UserOut struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	CoverPhoto string `json:"coverPhoto"`
}

func (u User) Out() UserOut {
	return UserOut{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role,
		CoverPhoto: u.CoverPhoto,
	}
}

const (
	ErrUserID int64 = 0

	RoleUser  = "User"
	RoleAdmin = "Admin"
)

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

type SignUpIn struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginIn struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfileUpdate carries the tri-state profile edit:
// an empty field means "leave unchanged".
type ProfileUpdate struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

type Video struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Video       string `json:"video"`
	Thumbnail   string `json:"thumbnail"`
	Duration    string `json:"duration"`
	Watch       int64  `json:"watch"`
	CreatedAt   int64  `json:"createdAt"`
	Views       int64  `json:"views"`
}

const ErrVideoID int64 = 0

// NewVideoIn describes a finished multipart upload:
// metadata fields plus the temp locations of both assets.
type NewVideoIn struct {
	Title         string
	Description   string
	VideoTmp      string
	VideoName     string
	ThumbnailTmp  string
	ThumbnailName string
}

// VideoUpdate carries the tri-state video edit:
// an empty field means "leave unchanged".
type VideoUpdate struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// WatchPage is everything the watch view needs: the video,
// its comments in chronological order and both engagement sets.
type WatchPage struct {
	Video     Video     `json:"video"`
	Comments  []Comment `json:"comments"`
	Likers    []int64   `json:"likers"`
	Dislikers []int64   `json:"dislikers"`
}

// CommentAuthor is the denormalized snapshot of the poster
// embedded into every comment. It is a copy taken at post
// time and rewritten on profile changes, not a live reference.
type CommentAuthor struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	CoverPhoto string `json:"coverPhoto"`
}

type Comment struct {
	ID        string        `json:"id"`
	VideoID   int64         `json:"videoId"`
	Author    CommentAuthor `json:"user"`
	Comment   string        `json:"comment"`
	CreatedAt int64         `json:"createdAt"`
}
