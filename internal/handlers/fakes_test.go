package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"slices"
	"testing"
	"time"

	"github.com/streamia/backend/internal/assets"
	"github.com/streamia/backend/internal/auth"
	"github.com/streamia/backend/internal/models"
	"github.com/streamia/backend/internal/repositories"
)

func newTestSessions(t *testing.T) (*auth.Manager, *auth.InMemoryTokenStore) {
	t.Helper()

	signer, err := auth.NewSigner("handler-test-secret", 15*time.Minute, 7*24*time.Hour)
	if err != nil {
		t.Fatalf("new signer: %v", err)
	}
	store := auth.NewInMemoryTokenStore()
	return auth.NewManager(signer, store), store
}

func userFixture(email, passwordHash string, admin bool) models.User {
	return models.User{
		Username:     "tester",
		Email:        email,
		PasswordHash: passwordHash,
		IsAdmin:      admin,
	}
}

type fakeUserStore struct {
	users  map[int64]models.User
	nextID int64
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[int64]models.User), nextID: 1}
}

func (s *fakeUserStore) Create(_ context.Context, user models.User) (int64, error) {
	for _, existing := range s.users {
		if existing.Email == user.Email {
			return 0, repositories.ErrConflict
		}
	}
	user.ID = s.nextID
	s.nextID++
	s.users[user.ID] = user
	return user.ID, nil
}

func (s *fakeUserStore) FindByEmail(_ context.Context, email string) (models.User, error) {
	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, repositories.ErrNotFound
}

func (s *fakeUserStore) FindByID(_ context.Context, id int64) (models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	return user, nil
}

func (s *fakeUserStore) Update(_ context.Context, user models.User) error {
	for id, existing := range s.users {
		if id != user.ID && existing.Email == user.Email {
			return repositories.ErrConflict
		}
	}
	if _, ok := s.users[user.ID]; !ok {
		return repositories.ErrNotFound
	}
	s.users[user.ID] = user
	return nil
}

type fakeAvatarStore struct {
	avatars   map[int64]models.Avatar
	defaultID int64
	nextID    int64
}

func newFakeAvatarStore() *fakeAvatarStore {
	return &fakeAvatarStore{avatars: make(map[int64]models.Avatar), nextID: 1}
}

func (s *fakeAvatarStore) Create(_ context.Context, imageData []byte) (int64, error) {
	id := s.nextID
	s.nextID++
	s.avatars[id] = models.Avatar{ID: id, ImageData: imageData}
	return id, nil
}

func (s *fakeAvatarStore) FindByID(_ context.Context, id int64) (models.Avatar, error) {
	avatar, ok := s.avatars[id]
	if !ok {
		return models.Avatar{}, repositories.ErrNotFound
	}
	return avatar, nil
}

func (s *fakeAvatarStore) FindDefault(_ context.Context) (models.Avatar, error) {
	if s.defaultID == 0 {
		return models.Avatar{}, repositories.ErrNotFound
	}
	return s.avatars[s.defaultID], nil
}

type fakeVideoStore struct {
	videos map[int64]models.Video
	links  map[int64][]int64
	names  map[int64]string
	nextID int64
}

func newFakeVideoStore() *fakeVideoStore {
	return &fakeVideoStore{
		videos: make(map[int64]models.Video),
		links:  make(map[int64][]int64),
		names:  make(map[int64]string),
		nextID: 1,
	}
}

func (s *fakeVideoStore) sorted() []models.Video {
	out := make([]models.Video, 0, len(s.videos))
	for _, v := range s.videos {
		out = append(out, v)
	}
	slices.SortFunc(out, func(a, b models.Video) int {
		return b.ReleaseDate.Compare(a.ReleaseDate)
	})
	return out
}

func page(videos []models.Video, offset, limit int) []models.Video {
	if offset >= len(videos) {
		return nil
	}
	end := min(offset+limit, len(videos))
	return videos[offset:end]
}

func (s *fakeVideoStore) List(_ context.Context, offset, limit int) ([]models.Video, int64, error) {
	all := s.sorted()
	return page(all, offset, limit), int64(len(all)), nil
}

func (s *fakeVideoStore) ListByCategory(_ context.Context, categoryID int64, offset, limit int) ([]models.Video, int64, error) {
	var matched []models.Video
	for _, v := range s.sorted() {
		if slices.Contains(s.links[v.ID], categoryID) {
			matched = append(matched, v)
		}
	}
	return page(matched, offset, limit), int64(len(matched)), nil
}

func (s *fakeVideoStore) FindByID(_ context.Context, id int64) (models.Video, []models.Category, error) {
	video, ok := s.videos[id]
	if !ok {
		return models.Video{}, nil, repositories.ErrNotFound
	}
	var categories []models.Category
	for _, categoryID := range s.links[id] {
		categories = append(categories, models.Category{ID: categoryID, Name: s.names[categoryID]})
	}
	return video, categories, nil
}

func (s *fakeVideoStore) Create(_ context.Context, video models.Video) (int64, error) {
	video.ID = s.nextID
	s.nextID++
	s.videos[video.ID] = video
	return video.ID, nil
}

func (s *fakeVideoStore) Update(_ context.Context, video models.Video) error {
	if _, ok := s.videos[video.ID]; !ok {
		return repositories.ErrNotFound
	}
	s.videos[video.ID] = video
	return nil
}

func (s *fakeVideoStore) SetCategories(_ context.Context, videoID int64, categoryIDs []int64) error {
	for _, id := range categoryIDs {
		if _, ok := s.names[id]; !ok {
			return repositories.ErrNotFound
		}
	}
	s.links[videoID] = slices.Clone(categoryIDs)
	return nil
}

type fakeCategoryStore struct {
	categories []models.Category
	nextID     int64
	listCalls  int
}

func newFakeCategoryStore() *fakeCategoryStore {
	return &fakeCategoryStore{nextID: 1}
}

func (s *fakeCategoryStore) ListCategories(_ context.Context) ([]models.Category, error) {
	s.listCalls++
	return slices.Clone(s.categories), nil
}

func (s *fakeCategoryStore) Create(_ context.Context, name string) (models.Category, error) {
	for _, c := range s.categories {
		if c.Name == name {
			return models.Category{}, repositories.ErrConflict
		}
	}
	category := models.Category{ID: s.nextID, Name: name}
	s.nextID++
	s.categories = append(s.categories, category)
	return category, nil
}

type fakeCommentStore struct {
	comments []models.Comment
	nextID   int64
}

func newFakeCommentStore() *fakeCommentStore {
	return &fakeCommentStore{nextID: 1}
}

func (s *fakeCommentStore) Create(_ context.Context, comment models.Comment) (models.Comment, error) {
	comment.ID = s.nextID
	s.nextID++
	s.comments = append(s.comments, comment)
	return comment, nil
}

func (s *fakeCommentStore) ListForVideo(_ context.Context, videoID int64) ([]models.Comment, error) {
	var out []models.Comment
	for i := len(s.comments) - 1; i >= 0; i-- {
		if s.comments[i].VideoID == videoID {
			out = append(out, s.comments[i])
		}
	}
	return out, nil
}

type fakeFavoriteStore struct {
	videos    *fakeVideoStore
	favorites map[int64][]int64
}

func newFakeFavoriteStore(videos *fakeVideoStore) *fakeFavoriteStore {
	return &fakeFavoriteStore{videos: videos, favorites: make(map[int64][]int64)}
}

func (s *fakeFavoriteStore) Add(_ context.Context, userID, videoID int64) error {
	if _, ok := s.videos.videos[videoID]; !ok {
		return repositories.ErrNotFound
	}
	if !slices.Contains(s.favorites[userID], videoID) {
		s.favorites[userID] = append(s.favorites[userID], videoID)
	}
	return nil
}

func (s *fakeFavoriteStore) Remove(_ context.Context, userID, videoID int64) error {
	index := slices.Index(s.favorites[userID], videoID)
	if index < 0 {
		return repositories.ErrNotFound
	}
	s.favorites[userID] = slices.Delete(s.favorites[userID], index, index+1)
	return nil
}

func (s *fakeFavoriteStore) ListForUser(_ context.Context, userID int64) ([]models.Video, error) {
	var out []models.Video
	for _, videoID := range s.favorites[userID] {
		out = append(out, s.videos.videos[videoID])
	}
	return out, nil
}

type fakeWatchlistStore struct {
	videos  *fakeVideoStore
	lists   map[int64]models.Watchlist
	entries map[int64][]int64
	nextID  int64
}

func newFakeWatchlistStore(videos *fakeVideoStore) *fakeWatchlistStore {
	return &fakeWatchlistStore{
		videos:  videos,
		lists:   make(map[int64]models.Watchlist),
		entries: make(map[int64][]int64),
		nextID:  1,
	}
}

func (s *fakeWatchlistStore) EnsureForUser(_ context.Context, userID int64) (models.Watchlist, error) {
	if list, ok := s.lists[userID]; ok {
		return list, nil
	}
	list := models.Watchlist{ID: s.nextID, UserID: userID}
	s.nextID++
	s.lists[userID] = list
	return list, nil
}

func (s *fakeWatchlistStore) AddVideo(_ context.Context, watchlistID, videoID int64) error {
	if _, ok := s.videos.videos[videoID]; !ok {
		return repositories.ErrNotFound
	}
	if !slices.Contains(s.entries[watchlistID], videoID) {
		s.entries[watchlistID] = append(s.entries[watchlistID], videoID)
	}
	return nil
}

func (s *fakeWatchlistStore) RemoveVideo(_ context.Context, watchlistID, videoID int64) error {
	index := slices.Index(s.entries[watchlistID], videoID)
	if index < 0 {
		return repositories.ErrNotFound
	}
	s.entries[watchlistID] = slices.Delete(s.entries[watchlistID], index, index+1)
	return nil
}

func (s *fakeWatchlistStore) ListVideos(_ context.Context, watchlistID int64) ([]models.Video, error) {
	var out []models.Video
	for _, videoID := range s.entries[watchlistID] {
		out = append(out, s.videos.videos[videoID])
	}
	return out, nil
}

type fakeIngestor struct {
	jobs []assets.Job
}

func (f *fakeIngestor) Enqueue(_ context.Context, job assets.Job) error {
	f.jobs = append(f.jobs, job)
	return nil
}

type denyLimiter struct{}

func (denyLimiter) Allow(string) bool { return false }

// decodeSuccess unwraps a success envelope into the provided payload type.
func decodeSuccess[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if !envelope.Success {
		t.Fatalf("expected success envelope, got %s", rec.Body.String())
	}

	var data T
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	return data
}

// decodeError unwraps an error envelope and returns its message.
func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var envelope struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if envelope.Success {
		t.Fatal("expected error envelope, got success")
	}
	return envelope.Error
}
