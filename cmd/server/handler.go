package main

import (
    "encoding/json"
    "errors"
    "log/slog"
    "net/http"
    "time"

    "github.com/go-chi/chi/v5"
    "github.com/go-chi/chi/v5/middleware"
    "github.com/prometheus/client_golang/prometheus/promhttp"

    "tickerhub/internal/aggregator"
    "tickerhub/internal/record"
)

type tickerResponse struct {
    Source string               `json:"source"`
    Data   *record.TickerRecord `json:"data"`
}

type errorResponse struct {
    Error   bool   `json:"error"`
    Message string `json:"message"`
}

func newRouter(agg *aggregator.Aggregator, log *slog.Logger) http.Handler {
    r := chi.NewRouter()
    r.Use(middleware.RealIP)
    r.Use(middleware.Recoverer)
    r.Use(middleware.Compress(5))
    r.Use(requestLogger(log))

    r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
        w.WriteHeader(http.StatusOK)
        _, _ = w.Write([]byte("ok"))
    })
    r.Handle("/metrics", promhttp.Handler())
    r.Get("/api/ticker", tickerHandler(agg))
    return r
}

func tickerHandler(agg *aggregator.Aggregator) http.HandlerFunc {
    return func(w http.ResponseWriter, r *http.Request) {
        res, err := agg.GetOrRefresh(r.Context(), r.URL.Query().Get("ticker"))
        if err != nil {
            var aggErr *aggregator.AggregateError
            switch {
            case errors.Is(err, record.ErrInvalidTicker):
                writeJSON(w, http.StatusBadRequest, errorResponse{
                    Error:   true,
                    Message: "missing or invalid ticker. Ex: /api/ticker?ticker=VALE3",
                })
            case errors.As(err, &aggErr):
                writeJSON(w, http.StatusBadGateway, errorResponse{Error: true, Message: aggErr.Error()})
            default:
                writeJSON(w, http.StatusInternalServerError, errorResponse{Error: true, Message: "internal error"})
            }
            return
        }
        writeJSON(w, http.StatusOK, tickerResponse{Source: res.Source, Data: res.Record})
    }
}

func writeJSON(w http.ResponseWriter, status int, v any) {
    w.Header().Set("Content-Type", "application/json; charset=utf-8")
    w.WriteHeader(status)
    enc := json.NewEncoder(w)
    enc.SetEscapeHTML(false)
    _ = enc.Encode(v)
}

func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
    return func(next http.Handler) http.Handler {
        return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
            start := time.Now()
            ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
            next.ServeHTTP(ww, r)
            log.Info("http request",
                "method", r.Method,
                "path", r.URL.Path,
                "status", ww.Status(),
                "took", time.Since(start))
        })
    }
}
