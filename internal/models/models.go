package models

import "time"

// User represents an account within the Streamia platform.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	IsAdmin      bool
	AvatarID     *int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Avatar holds a profile image payload. Avatars live independently of users;
// a user merely references one.
type Avatar struct {
	ID        int64
	ImageData []byte
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Video is a catalog entry. Thumbnail and VideoData are opaque blobs; large
// video payloads may instead be offloaded to object storage, in which case
// AssetURL points at the stored object.
type Video struct {
	ID          int64
	Title       string
	Description string
	Available   bool
	Thumbnail   []byte
	VideoData   []byte
	AssetURL    string
	AssetStatus string
	ReleaseDate time.Time
	CreatedAt   time.Time
}

const (
	AssetStatusNone    = ""
	AssetStatusPending = "pending"
	AssetStatusReady   = "ready"
	AssetStatusFailed  = "failed"
)

// Category names a catalog grouping. Videos relate to categories through
// category_video join rows.
type Category struct {
	ID   int64
	Name string
}

// Comment is a user remark on a video. Comments are immutable once written.
type Comment struct {
	ID        int64
	UserID    int64
	VideoID   int64
	Content   string
	WrittenAt time.Time
}

// Favorite links a user directly to a video.
type Favorite struct {
	UserID  int64
	VideoID int64
	AddedAt time.Time
}

// Watchlist is a per-user list of videos. Each user owns at most one default
// list; entries live in watchlist_video join rows.
type Watchlist struct {
	ID        int64
	UserID    int64
	CreatedAt time.Time
}

// RefreshToken is the server-side record of an issued refresh token,
// keyed by the jti claim embedded in the signed cookie value.
type RefreshToken struct {
	JTI       string
	UserID    int64
	ExpiresAt time.Time
}

// TokenPair groups the credentials minted at login. The access token is
// returned in the response body; the refresh token only ever travels in an
// HttpOnly cookie.
type TokenPair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshJTI       string
	RefreshExpiresAt time.Time
}
