package classifier

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/etongue-project/etongue/internal/model/entities"
)

// NewHTTPMux exposes the classifier's query surface.
//
//	GET /classify/latest      latest classification per station
//	GET /herbs                the herb catalog
//	GET /dataset?limit=50     recently collected dataset rows
func NewHTTPMux(svc *Service) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("ok")) })

	mux.HandleFunc("/classify/latest", func(w http.ResponseWriter, _ *http.Request) {
		out := svc.Latest()
		sort.Slice(out, func(i, j int) bool { return out[i].StationID < out[j].StationID })
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(out)
	})

	mux.HandleFunc("/herbs", func(w http.ResponseWriter, r *http.Request) {
		if name := strings.TrimSpace(r.URL.Query().Get("name")); name != "" {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(entities.LookupHerb(name))
			return
		}
		herbs := make([]entities.Herb, 0, len(entities.HerbCatalog))
		for _, h := range entities.HerbCatalog {
			herbs = append(herbs, h)
		}
		sort.Slice(herbs, func(i, j int) bool { return herbs[i].Name < herbs[j].Name })
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(herbs)
	})

	mux.HandleFunc("/dataset", func(w http.ResponseWriter, r *http.Request) {
		if svc.store == nil {
			http.Error(w, "dataset store not configured", http.StatusServiceUnavailable)
			return
		}
		limit := 50
		if s := r.URL.Query().Get("limit"); s != "" {
			if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 500 {
				limit = n
			}
		}
		rows, err := svc.store.Recent(limit)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if rows == nil {
			rows = []DatasetRow{}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(rows)
	})

	return mux
}
