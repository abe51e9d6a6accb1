package handlers

import "net/http"

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Users      UserStore
	Avatars    AvatarStore
	Sessions   SessionManager
	Categories CategoryLister
	Category   CategoryStore
	Cache      CacheInvalidator
	Videos     VideoStore
	Comments   CommentStore
	Favorites  FavoriteStore
	Watchlists WatchlistStore
	Ingestor   AssetIngestor

	LoginLimiter  RateLimiter
	SecureCookies bool
}

// RegisterRoutes wires HTTP handlers into the provided ServeMux.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{}
	auth := AuthHandler{
		Users:         deps.Users,
		Sessions:      deps.Sessions,
		LoginLimiter:  deps.LoginLimiter,
		SecureCookies: deps.SecureCookies,
	}
	users := UserHandler{Users: deps.Users, Avatars: deps.Avatars, Sessions: deps.Sessions}
	categories := CategoryHandler{
		Lister:   deps.Categories,
		Store:    deps.Category,
		Cache:    deps.Cache,
		Sessions: deps.Sessions,
		Users:    deps.Users,
	}
	videos := VideoHandler{Videos: deps.Videos, Sessions: deps.Sessions, Users: deps.Users, Ingestor: deps.Ingestor}
	comments := CommentHandler{Comments: deps.Comments, Sessions: deps.Sessions}
	favorites := FavoriteHandler{Favorites: deps.Favorites, Sessions: deps.Sessions}
	watchlist := WatchlistHandler{Watchlists: deps.Watchlists, Sessions: deps.Sessions}

	mux.HandleFunc("GET /healthz", health.Handle)

	mux.HandleFunc("POST /api/users/register", withValidation(users.Register))
	mux.HandleFunc("POST /api/users/login", auth.Login)
	mux.HandleFunc("GET /api/auth/refresh", auth.Refresh)
	mux.HandleFunc("POST /api/users/logout", auth.Logout)
	mux.HandleFunc("POST /api/users/logout-all", auth.LogoutAll)

	mux.HandleFunc("GET /api/users/me", users.Me)
	mux.HandleFunc("PUT /api/users/me", users.UpdateMe)

	mux.HandleFunc("GET /api/categories", categories.List)
	mux.HandleFunc("GET /api/categories/{categoryId}/videos", videos.ListByCategory)

	mux.HandleFunc("GET /api/videos", videos.List)
	mux.HandleFunc("GET /api/videos/{videoId}", videos.Detail)
	mux.HandleFunc("GET /api/videos/{videoId}/comments", comments.ListForVideo)

	mux.HandleFunc("POST /api/comments", withValidation(comments.Create))

	mux.HandleFunc("GET /api/users/me/favorites", favorites.List)
	mux.HandleFunc("POST /api/users/me/favorites/{videoId}", favorites.Add)
	mux.HandleFunc("DELETE /api/users/me/favorites/{videoId}", favorites.Remove)

	mux.HandleFunc("GET /api/users/me/watchlist", watchlist.List)
	mux.HandleFunc("POST /api/users/me/watchlist/{videoId}", watchlist.Add)
	mux.HandleFunc("DELETE /api/users/me/watchlist/{videoId}", watchlist.Remove)

	mux.HandleFunc("POST /api/categories", withValidation(categories.Create))
	mux.HandleFunc("POST /api/videos", withValidation(videos.Create))
	mux.HandleFunc("PUT /api/videos/{videoId}", videos.Update)
}
