package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/nrybowski/isis-parser/clns"
	"github.com/nrybowski/isis-parser/isismon/update"
	. "github.com/nrybowski/isis-parser/logging" // nolint
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// LSPList is the list of LSPs in the database.
type LSPList struct {
	LSP []update.Entry `json:"lsp"`
}

// ChangeList is the topology change log.
type ChangeList struct {
	Change []update.Change `json:"change"`
}

func errToHTTP(w http.ResponseWriter, err error, code int) {
	http.Error(w, err.Error(), code)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	jvars, err := json.Marshal(v)
	if err != nil {
		errToHTTP(w, err, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err = io.WriteString(w, string(jvars)); err != nil {
		Debug(DbgFHTTP, "writing response: %s", err)
	}
}

func muxDB(w http.ResponseWriter, r *http.Request, db *update.DB) {
	Debug(DbgFHTTP, "%s %s", r.Method, r.URL)
	writeJSON(w, LSPList{LSP: db.List()})
}

func muxLSP(w http.ResponseWriter, r *http.Request, db *update.DB) {
	Debug(DbgFHTTP, "%s %s", r.Method, r.URL)
	vars := mux.Vars(r)

	lspid, err := clns.ParseLSPID(vars["lspid"])
	if err != nil {
		errToHTTP(w, err, http.StatusBadRequest)
		return
	}
	entry, ok := db.Get(lspid)
	if !ok {
		errToHTTP(w, errors.New("no such LSP "+lspid.String()), http.StatusNotFound)
		return
	}
	writeJSON(w, entry)
}

func muxChanges(w http.ResponseWriter, r *http.Request, db *update.DB) {
	Debug(DbgFHTTP, "%s %s", r.Method, r.URL)
	n := 0
	if s := r.URL.Query().Get("n"); s != "" {
		var err error
		if n, err = strconv.Atoi(s); err != nil || n < 0 {
			errToHTTP(w, errors.New("invalid change count "+strconv.Quote(s)), http.StatusBadRequest)
			return
		}
	}
	writeJSON(w, ChangeList{Change: db.Changes(n)})
}

func muxStats(w http.ResponseWriter, r *http.Request, db *update.DB) {
	Debug(DbgFHTTP, "%s %s", r.Method, r.URL)
	writeJSON(w, db.Stats())
}

// NewRouter returns the management API handler serving db and the metrics
// gathered from gatherer.
func NewRouter(db *update.DB, gatherer prometheus.Gatherer) *mux.Router {
	dbF := func(w http.ResponseWriter, r *http.Request) {
		muxDB(w, r, db)
	}
	lspF := func(w http.ResponseWriter, r *http.Request) {
		muxLSP(w, r, db)
	}
	changesF := func(w http.ResponseWriter, r *http.Request) {
		muxChanges(w, r, db)
	}
	statsF := func(w http.ResponseWriter, r *http.Request) {
		muxStats(w, r, db)
	}
	r := mux.NewRouter()
	r.HandleFunc("/isis/db", dbF).Methods(http.MethodGet)
	r.HandleFunc("/isis/db/{lspid}", lspF).Methods(http.MethodGet)
	r.HandleFunc("/isis/changes", changesF).Methods(http.MethodGet)
	r.HandleFunc("/isis/stats", statsF).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return r
}

// ServeManagement serves h on listen until ctx is done.
func ServeManagement(ctx context.Context, listen string, h http.Handler) error {
	lis, err := net.Listen("tcp", listen)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(sctx)
	}()
	Info("management API listening on %s", lis.Addr())
	if err = srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
