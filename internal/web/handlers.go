package web

import (
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/abray/moodfm/internal/charts"
	"github.com/abray/moodfm/internal/models"
	"github.com/abray/moodfm/internal/services"
	"github.com/abray/moodfm/internal/shared"
)

// recentEntries is how many log rows the dashboard lists beside the charts.
const recentEntries = 5

// Index renders the landing page.
func (a *App) Index(w http.ResponseWriter, r *http.Request) {
	a.render(w, r, http.StatusOK, "index.html", "Welcome", struct {
		Year int
	}{Year: time.Now().Year()})
}

// RegisterForm renders the account creation form.
func (a *App) RegisterForm(w http.ResponseWriter, r *http.Request) {
	a.render(w, r, http.StatusOK, "register.html", "Register", nil)
}

// Register creates an account from the submitted form. Validation and
// duplicate-username failures flash a notice and redirect back without any
// state change.
func (a *App) Register(w http.ResponseWriter, r *http.Request) {
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	confirmation := r.PostFormValue("confirmation")

	if username == "" || password == "" || confirmation == "" {
		a.sessions.Flash(w, r, "Please fill all fields.")
		http.Redirect(w, r, "/register", http.StatusFound)
		return
	}

	if password != confirmation {
		a.sessions.Flash(w, r, "Passwords do not match.")
		http.Redirect(w, r, "/register", http.StatusFound)
		return
	}

	if _, err := a.users.Register(username, password); err != nil {
		if errors.Is(err, shared.ErrUsernameTaken) {
			a.sessions.Flash(w, r, "Username already taken.")
			http.Redirect(w, r, "/register", http.StatusFound)
			return
		}

		a.logger.Error("registration failed", "err", err)
		a.InternalError(w, r)
		return
	}

	a.sessions.Flash(w, r, "Registered successfully! Please log in.")
	http.Redirect(w, r, "/login", http.StatusFound)
}

// LoginForm renders the login form.
func (a *App) LoginForm(w http.ResponseWriter, r *http.Request) {
	a.render(w, r, http.StatusOK, "login.html", "Log In", nil)
}

// Login authenticates the submitted credentials and transitions the session
// to authenticated. Any prior session state is discarded first.
func (a *App) Login(w http.ResponseWriter, r *http.Request) {
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	id, err := a.users.Verify(username, password)
	if err != nil {
		if !errors.Is(err, shared.ErrInvalidCredentials) {
			a.logger.Error("login failed", "err", err)
		}
		a.sessions.Flash(w, r, "Invalid username or password.")
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	if err := a.sessions.SignIn(w, r, id); err != nil {
		a.logger.Error("failed to establish session", "err", err)
		a.InternalError(w, r)
		return
	}

	a.sessions.Flash(w, r, "Logged in successfully!")
	http.Redirect(w, r, "/", http.StatusFound)
}

// Logout tears down the session and returns to the landing page.
func (a *App) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.SignOut(w, r); err != nil {
		a.logger.Error("failed to expire session", "err", err)
	}
	a.sessions.Flash(w, r, "Logged out!")
	http.Redirect(w, r, "/", http.StatusFound)
}

// MoodForm renders the mood entry form.
func (a *App) MoodForm(w http.ResponseWriter, r *http.Request, userID int64) {
	a.render(w, r, http.StatusOK, "mood.html", "How are you feeling?", struct {
		Moods []models.Mood
	}{Moods: models.KnownMoods})
}

// MoodSubmit appends a mood entry and forwards to the playlist suggestion
// for that mood.
func (a *App) MoodSubmit(w http.ResponseWriter, r *http.Request, userID int64) {
	mood := r.PostFormValue("mood")
	note := r.PostFormValue("note")

	if mood == "" {
		a.sessions.Flash(w, r, "Please select a mood.")
		http.Redirect(w, r, "/mood", http.StatusFound)
		return
	}

	if _, err := a.moods.Append(userID, models.Mood(mood), note, time.Time{}); err != nil {
		a.logger.Error("failed to append mood entry", "err", err)
		a.InternalError(w, r)
		return
	}

	a.sessions.Flash(w, r, "Mood logged!")
	http.Redirect(w, r, "/playlist?mood="+template.URLQueryEscaper(mood), http.StatusFound)
}

// Playlist renders track suggestions for the mood given in the query string.
// A missing recommender or an empty result substitutes the static fallback
// playlist with a notice; external failures never bubble up to the user.
func (a *App) Playlist(w http.ResponseWriter, r *http.Request, userID int64) {
	mood := r.URL.Query().Get("mood")
	if mood == "" {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	tracks := []models.Track{}
	if a.recommender != nil {
		tracks = a.recommender.TracksForMood(r.Context(), mood)
	}

	if len(tracks) == 0 {
		a.sessions.Flash(w, r, "Couldn't fetch Spotify data. Showing default playlist.")
		tracks = services.FallbackTracks()
	}

	a.render(w, r, http.StatusOK, "playlist.html", "Your Playlist", struct {
		Mood   string
		Tracks []models.Track
	}{Mood: mood, Tracks: tracks})
}

// Dashboard renders the aggregated mood history: a time-series line chart,
// a frequency pie chart, and the most recent entries. Users with an empty
// log get the no-data state instead of charts.
func (a *App) Dashboard(w http.ResponseWriter, r *http.Request, userID int64) {
	entries, err := a.moods.ListForUser(userID)
	if err != nil {
		a.logger.Error("failed to list mood entries", "err", err)
		a.InternalError(w, r)
		return
	}

	if len(entries) == 0 {
		a.render(w, r, http.StatusOK, "dashboard.html", "Dashboard", struct {
			HasData   bool
			Recent    []models.MoodEntry
			ChartJSON template.JS
		}{HasData: false})
		return
	}

	recent, err := a.moods.RecentForUser(userID, recentEntries)
	if err != nil {
		a.logger.Error("failed to list recent entries", "err", err)
		a.InternalError(w, r)
		return
	}

	seriesLabels, seriesValues := charts.TimeSeries(entries)
	freqLabels, freqValues := charts.Frequency(entries)

	payload, err := json.Marshal(struct {
		SeriesLabels []string `json:"seriesLabels"`
		SeriesValues []int    `json:"seriesValues"`
		FreqLabels   []string `json:"freqLabels"`
		FreqValues   []int    `json:"freqValues"`
	}{seriesLabels, seriesValues, freqLabels, freqValues})
	if err != nil {
		a.logger.Error("failed to marshal chart data", "err", err)
		a.InternalError(w, r)
		return
	}

	a.render(w, r, http.StatusOK, "dashboard.html", "Dashboard", struct {
		HasData   bool
		Recent    []models.MoodEntry
		ChartJSON template.JS
	}{HasData: true, Recent: recent, ChartJSON: template.JS(payload)})
}

// NotFound renders the generic 404 page.
func (a *App) NotFound(w http.ResponseWriter, r *http.Request) {
	a.render(w, r, http.StatusNotFound, "error.html", "Not Found", struct {
		Message string
	}{Message: "Page not found."})
}

// InternalError renders the generic 500 page.
func (a *App) InternalError(w http.ResponseWriter, r *http.Request) {
	a.render(w, r, http.StatusInternalServerError, "error.html", "Error", struct {
		Message string
	}{Message: "Something went wrong."})
}
