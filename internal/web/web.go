// Package web wires the HTTP surface of the mood tracker: session-backed
// authentication, embedded html/template views, and the route handlers that
// sit between the repositories and the browser.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/abray/moodfm/internal/repositories"
	"github.com/abray/moodfm/internal/server"
	"github.com/abray/moodfm/internal/services"
	"github.com/abray/moodfm/internal/shared"
	"github.com/charmbracelet/log"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// pages lists every view rendered against the shared layout.
var pages = []string{
	"index.html", "register.html", "login.html",
	"mood.html", "playlist.html", "dashboard.html", "error.html",
}

// App holds the dependencies for all web handlers.
type App struct {
	logger      *log.Logger
	users       *repositories.UserRepository
	moods       *repositories.MoodRepository
	sessions    *SessionManager
	recommender services.Recommender
	templates   map[string]*template.Template
}

// AppOpts contains the collaborators an [App] is built from.
type AppOpts struct {
	Logger      *log.Logger
	Users       *repositories.UserRepository
	Moods       *repositories.MoodRepository
	Sessions    *SessionManager
	Recommender services.Recommender // nil disables live suggestions
}

// NewApp creates an App and parses the embedded templates. Each page is
// parsed together with the layout so blocks resolve per view.
func NewApp(opts AppOpts) (*App, error) {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Users == nil || opts.Moods == nil || opts.Sessions == nil {
		return nil, fmt.Errorf("users, moods and sessions are required: %w", shared.ErrInvalidConfig)
	}

	templates := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		t, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", page, err)
		}
		templates[page] = t
	}

	return &App{
		logger:      opts.Logger,
		users:       opts.Users,
		moods:       opts.Moods,
		sessions:    opts.Sessions,
		recommender: opts.Recommender,
		templates:   templates,
	}, nil
}

// Routes registers every handler and middleware on the router.
func (a *App) Routes(router *server.MuxRouter) {
	router.Use(server.Logging(a.logger))
	router.Use(server.Recover(a.logger, http.HandlerFunc(a.InternalError)))

	router.Handle(http.MethodGet, "/", http.HandlerFunc(a.Index))
	router.Handle(http.MethodGet, "/register", http.HandlerFunc(a.RegisterForm))
	router.Handle(http.MethodPost, "/register", http.HandlerFunc(a.Register))
	router.Handle(http.MethodGet, "/login", http.HandlerFunc(a.LoginForm))
	router.Handle(http.MethodPost, "/login", http.HandlerFunc(a.Login))
	router.Handle(http.MethodGet, "/logout", http.HandlerFunc(a.Logout))

	router.Handle(http.MethodGet, "/mood", a.requireUser(a.MoodForm))
	router.Handle(http.MethodPost, "/mood", a.requireUser(a.MoodSubmit))
	router.Handle(http.MethodGet, "/playlist", a.requireUser(a.Playlist))
	router.Handle(http.MethodGet, "/dashboard", a.requireUser(a.Dashboard))

	router.PathPrefix("/static/", http.FileServerFS(staticFS))

	router.NotFound(http.HandlerFunc(a.NotFound))
}

// view is the payload every template receives.
type view struct {
	Title    string
	Flashes  []string
	LoggedIn bool
	Data     any
}

// render writes a page against the shared layout. Template failures after
// the header is written can only be logged.
func (a *App) render(w http.ResponseWriter, r *http.Request, status int, page string, title string, data any) {
	t, ok := a.templates[page]
	if !ok {
		a.logger.Error("unknown template", "page", page)
		http.Error(w, "Something went wrong.", http.StatusInternalServerError)
		return
	}

	_, loggedIn := a.sessions.CurrentUser(r)
	v := view{
		Title:    title,
		Flashes:  a.sessions.Flashes(w, r),
		LoggedIn: loggedIn,
		Data:     data,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := t.ExecuteTemplate(w, "layout.html", v); err != nil {
		a.logger.Error("failed to render template", "page", page, "err", err)
	}
}

// requireUser guards a protected handler: anonymous requests are redirected
// to the login form with a notice, authenticated ones proceed with the
// resolved user id.
func (a *App) requireUser(next func(w http.ResponseWriter, r *http.Request, userID int64)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := a.sessions.CurrentUser(r)
		if !ok {
			a.sessions.Flash(w, r, "Please log in first.")
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}

		// A stale cookie pointing at a missing user is treated as anonymous.
		if _, err := a.users.Get(id); err != nil {
			_ = a.sessions.SignOut(w, r)
			a.sessions.Flash(w, r, "Please log in first.")
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}

		next(w, r, id)
	})
}
