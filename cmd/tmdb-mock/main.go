package main

import (
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"strings"
)

func main() {
	var (
		port    = flag.String("port", "9099", "port to listen on")
		data    = flag.String("data", "mock-tmdb.json", "path to mock data file keyed by TMDB id")
		apiKey  = flag.String("api-key", "", "reject requests whose api_key differs (empty accepts any)")
		verbose = flag.Bool("log", false, "enable request logging")
	)
	flag.Parse()

	file, err := os.ReadFile(*data)
	if err != nil {
		log.Fatalf("read mock data: %v", err)
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(file, &payload); err != nil {
		log.Fatalf("parse mock data: %v", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if *verbose {
			log.Printf("%s %s", r.Method, r.URL.Path)
		}
		if *apiKey != "" && r.URL.Query().Get("api_key") != *apiKey {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		// Accept both /movie/{id} and versioned roots such as /3/movie/{id}.
		idx := strings.LastIndex(r.URL.Path, "/movie/")
		if idx < 0 {
			http.NotFound(w, r)
			return
		}
		entry, ok := payload[strings.Trim(r.URL.Path[idx+len("/movie/"):], "/")]
		if !ok {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write(entry); err != nil {
			log.Printf("write response: %v", err)
		}
	})

	addr := ":" + *port
	log.Printf("mock tmdb listening on %s with %d movies", addr, len(payload))
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
