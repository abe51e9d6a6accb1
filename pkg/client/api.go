package client

import (
	"context"
	"fmt"
	"net/http"
)

// Video is a catalog entry as returned by list endpoints.
type Video struct {
	VideoID     int64  `json:"video_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	IsAvailable bool   `json:"is_available"`
	Thumbnail   string `json:"thumbnail,omitempty"`
	ReleaseDate string `json:"release_date"`
}

// VideoDetail is a single catalog entry including media and categories.
type VideoDetail struct {
	Video
	VideoData  string     `json:"video_data,omitempty"`
	AssetURL   string     `json:"asset_url,omitempty"`
	Categories []Category `json:"categories"`
}

// VideoPage is one page of the catalog.
type VideoPage struct {
	Videos []Video `json:"videos"`
	Total  int64   `json:"total"`
	Offset int     `json:"offset"`
	Limit  int     `json:"limit"`
}

// Category names a catalog grouping.
type Category struct {
	CategoryID int64  `json:"category_id"`
	Name       string `json:"category_name"`
}

// Comment is a user remark on a video.
type Comment struct {
	CommentID int64  `json:"comment_id"`
	UserID    int64  `json:"user_id"`
	VideoID   int64  `json:"video_id"`
	Content   string `json:"comment_content"`
	WrittenAt string `json:"written_at"`
}

type registerPayload struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginData struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Register creates a new account. It does not log in.
func (c *Client) Register(ctx context.Context, username, email, password string) (User, error) {
	return call[User](ctx, c, http.MethodPost, "/api/users/register", registerPayload{
		Username: username,
		Email:    email,
		Password: password,
	})
}

// Login authenticates and starts a session. The refresh cookie lands in the
// cookie jar; the access token and profile land in the Session.
func (c *Client) Login(ctx context.Context, email, password string) (User, error) {
	data, err := call[loginData](ctx, c, http.MethodPost, "/api/users/login", loginPayload{
		Email:    email,
		Password: password,
	})
	if err != nil {
		return User{}, err
	}

	c.session.start(data.Token, data.User)
	return data.User, nil
}

// Logout ends the current device's session.
func (c *Client) Logout(ctx context.Context) error {
	_, err := call[struct{}](ctx, c, http.MethodPost, "/api/users/logout", nil)
	c.session.clear()
	return err
}

// LogoutAll ends the user's sessions on every device.
func (c *Client) LogoutAll(ctx context.Context) error {
	_, err := call[struct{}](ctx, c, http.MethodPost, "/api/users/logout-all", nil)
	c.session.clear()
	return err
}

// Me fetches the logged-in user's profile.
func (c *Client) Me(ctx context.Context) (User, error) {
	if !c.session.Active() {
		return User{}, ErrNotAuthenticated
	}
	return call[User](ctx, c, http.MethodGet, "/api/users/me", nil)
}

// Videos fetches one page of the catalog.
func (c *Client) Videos(ctx context.Context, offset, limit int) (VideoPage, error) {
	return call[VideoPage](ctx, c, http.MethodGet, fmt.Sprintf("/api/videos?offset=%d&limit=%d", offset, limit), nil)
}

// Video fetches a single catalog entry.
func (c *Client) Video(ctx context.Context, videoID int64) (VideoDetail, error) {
	return call[VideoDetail](ctx, c, http.MethodGet, fmt.Sprintf("/api/videos/%d", videoID), nil)
}

// Categories fetches the category catalog.
func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	return call[[]Category](ctx, c, http.MethodGet, "/api/categories", nil)
}

// VideosByCategory fetches one page of videos linked to the category.
func (c *Client) VideosByCategory(ctx context.Context, categoryID int64, offset, limit int) (VideoPage, error) {
	path := fmt.Sprintf("/api/categories/%d/videos?offset=%d&limit=%d", categoryID, offset, limit)
	return call[VideoPage](ctx, c, http.MethodGet, path, nil)
}

// VideoComments fetches a video's comments, newest first.
func (c *Client) VideoComments(ctx context.Context, videoID int64) ([]Comment, error) {
	return call[[]Comment](ctx, c, http.MethodGet, fmt.Sprintf("/api/videos/%d/comments", videoID), nil)
}

type commentPayload struct {
	UserID  int64  `json:"user_id"`
	VideoID int64  `json:"video_id"`
	Content string `json:"comment_content"`
}

// Comment posts a comment on a video as the logged-in user.
func (c *Client) Comment(ctx context.Context, videoID int64, content string) (Comment, error) {
	user := c.session.User()
	if user == nil {
		return Comment{}, ErrNotAuthenticated
	}
	return call[Comment](ctx, c, http.MethodPost, "/api/comments", commentPayload{
		UserID:  user.UserID,
		VideoID: videoID,
		Content: content,
	})
}

// Favorites fetches the logged-in user's favorite videos.
func (c *Client) Favorites(ctx context.Context) ([]Video, error) {
	return call[[]Video](ctx, c, http.MethodGet, "/api/users/me/favorites", nil)
}

// AddFavorite marks a video as a favorite.
func (c *Client) AddFavorite(ctx context.Context, videoID int64) error {
	_, err := call[struct{}](ctx, c, http.MethodPost, fmt.Sprintf("/api/users/me/favorites/%d", videoID), nil)
	return err
}

// RemoveFavorite unmarks a favorite video.
func (c *Client) RemoveFavorite(ctx context.Context, videoID int64) error {
	_, err := call[struct{}](ctx, c, http.MethodDelete, fmt.Sprintf("/api/users/me/favorites/%d", videoID), nil)
	return err
}

// Watchlist fetches the logged-in user's watchlist.
func (c *Client) Watchlist(ctx context.Context) ([]Video, error) {
	return call[[]Video](ctx, c, http.MethodGet, "/api/users/me/watchlist", nil)
}

// AddToWatchlist queues a video on the watchlist.
func (c *Client) AddToWatchlist(ctx context.Context, videoID int64) error {
	_, err := call[struct{}](ctx, c, http.MethodPost, fmt.Sprintf("/api/users/me/watchlist/%d", videoID), nil)
	return err
}

// RemoveFromWatchlist removes a video from the watchlist.
func (c *Client) RemoveFromWatchlist(ctx context.Context, videoID int64) error {
	_, err := call[struct{}](ctx, c, http.MethodDelete, fmt.Sprintf("/api/users/me/watchlist/%d", videoID), nil)
	return err
}

type createCategoryPayload struct {
	Name string `json:"category_name"`
}

// CreateCategory adds a category. Requires an admin session.
func (c *Client) CreateCategory(ctx context.Context, name string) (Category, error) {
	return call[Category](ctx, c, http.MethodPost, "/api/categories", createCategoryPayload{Name: name})
}

type createVideoPayload struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	ReleaseDate string  `json:"release_date,omitempty"`
	IsAvailable bool    `json:"is_available"`
	CategoryIDs []int64 `json:"category_ids,omitempty"`
}

// CreateVideo adds a catalog entry. Requires an admin session.
func (c *Client) CreateVideo(ctx context.Context, title, description, releaseDate string, available bool, categoryIDs []int64) (int64, error) {
	data, err := call[map[string]int64](ctx, c, http.MethodPost, "/api/videos", createVideoPayload{
		Title:       title,
		Description: description,
		ReleaseDate: releaseDate,
		IsAvailable: available,
		CategoryIDs: categoryIDs,
	})
	if err != nil {
		return 0, err
	}
	return data["video_id"], nil
}
