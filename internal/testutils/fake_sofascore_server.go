package testutils

import (
	"embed"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
)

//go:embed sofascoredata
var sofascoredata embed.FS

// Ids known to the fake server.
const (
	FakeTournamentID = 325
	FakeSeasonID     = 72034
	FakeTeamID       = 1963
	FakeAPIKey       = "test-key"

	// FakeGroupSeasonID has one standings table per group.
	FakeGroupSeasonID = 72035
	// FakeCupSeasonID has matches but no standings.
	FakeCupSeasonID = 72036
)

// FakeLogo is the body served by /teams/get-logo.
var FakeLogo = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}

type FakeSofascoreServer struct {
	s        *httptest.Server
	requests atomic.Int64

	mu     sync.Mutex
	rounds []string
}

func NewFakeSofascoreServer() *FakeSofascoreServer {
	f := &FakeSofascoreServer{}

	r := chi.NewRouter()
	r.Use(f.count, requireKey)
	r.Get("/search", searchHandler)
	r.Route("/tournaments", func(r chi.Router) {
		r.Get("/detail", tournamentOnly("detail.json"))
		r.Get("/get-seasons", tournamentOnly("seasons.json"))
		r.Get("/get-rounds", seasonOnly("rounds.json"))
		r.Get("/get-last-matches", lastMatchesHandler)
		r.Get("/get-next-matches", nextMatchesHandler)
		r.Get("/get-round-matches", f.roundMatchesHandler)
		r.Get("/get-standings", seasonFiles(map[int]string{
			FakeSeasonID:      "standings.json",
			FakeGroupSeasonID: "standings_groups.json",
		}))
	})
	r.Route("/teams", func(r chi.Router) {
		r.Get("/get-squad", squadHandler)
		r.Get("/get-logo", logoHandler)
	})

	f.s = httptest.NewServer(r)
	return f
}

func (f *FakeSofascoreServer) Close() {
	f.s.Close()
}

func (f *FakeSofascoreServer) URL() string {
	return f.s.URL
}

// Requests is the number of requests served so far.
func (f *FakeSofascoreServer) Requests() int64 {
	return f.requests.Load()
}

// RoundRequests lists the rounds fetched so far as "round/slug".
func (f *FakeSofascoreServer) RoundRequests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.rounds...)
}

func (f *FakeSofascoreServer) roundMatchesHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f.mu.Lock()
	f.rounds = append(f.rounds, q.Get("round")+"/"+q.Get("slug"))
	f.mu.Unlock()
	seasonOnly("round_matches.json")(w, r)
}

func (f *FakeSofascoreServer) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)
		next.ServeHTTP(w, r)
	})
}

func requireKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-RapidAPI-Key") != FakeAPIKey {
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"message":"You are not subscribed to this API."}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func searchHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("q") == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	serveFile(w, "search.json")
}

func tournamentOnly(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("tournamentId") != fmt.Sprint(FakeTournamentID) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		serveFile(w, name)
	}
}

func seasonOnly(name string) http.HandlerFunc {
	return seasonFiles(map[int]string{FakeSeasonID: name})
}

// seasonFiles serves a file per season id and 404 for any other season.
func seasonFiles(files map[int]string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("tournamentId") != fmt.Sprint(FakeTournamentID) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		for id, name := range files {
			if q.Get("seasonId") == fmt.Sprint(id) {
				serveFile(w, name)
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
	}
}

// seasonEvents serves the same match listing for the league and the cup season.
func seasonEvents(name string) http.HandlerFunc {
	return seasonFiles(map[int]string{FakeSeasonID: name, FakeCupSeasonID: name})
}

func lastMatchesHandler(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Query().Get("pageIndex") {
	case "0":
		seasonEvents("last_matches_0.json")(w, r)
	case "1":
		seasonEvents("last_matches_1.json")(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func nextMatchesHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("pageIndex") != "0" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	seasonEvents("next_matches_0.json")(w, r)
}

func squadHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("teamId") != fmt.Sprint(FakeTeamID) {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	serveFile(w, "squad.json")
}

func logoHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(FakeLogo)
}

func serveFile(w http.ResponseWriter, name string) {
	b, err := sofascoredata.ReadFile(fmt.Sprintf("sofascoredata/%s", name))
	if err != nil {
		log.Printf("error reading sofascoredata/%s: %v", name, err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
