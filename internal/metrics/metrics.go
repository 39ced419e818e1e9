package metrics

import (
    "net/http"
    "sync"
    "time"

    "github.com/prometheus/client_golang/prometheus"
    "github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
    documentsLoaded = prometheus.NewCounterVec(
        prometheus.CounterOpts{
            Namespace: "pageselector",
            Name:      "documents_loaded_total",
            Help:      "Document open attempts by result (success, error)",
        },
        []string{"result"},
    )

    selections = prometheus.NewCounterVec(
        prometheus.CounterOpts{
            Namespace: "pageselector",
            Name:      "selections_total",
            Help:      "Released selections by result (saved, invalid, failed)",
        },
        []string{"result"},
    )

    rasterizeLatency = prometheus.NewHistogram(
        prometheus.HistogramOpts{
            Namespace: "pageselector",
            Name:      "rasterize_duration_seconds",
            Help:      "Time to rasterize a whole document",
            Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
        },
    )

    renderLatency = prometheus.NewHistogram(
        prometheus.HistogramOpts{
            Namespace: "pageselector",
            Name:      "render_duration_seconds",
            Help:      "Time to scale a page to the viewport",
            Buckets:   prometheus.DefBuckets,
        },
    )

    navigations = prometheus.NewCounterVec(
        prometheus.CounterOpts{
            Namespace: "pageselector",
            Name:      "page_navigations_total",
            Help:      "Page changes by direction (prev, next)",
        },
        []string{"direction"},
    )

    once sync.Once
)

// Init registers collectors. Safe to call more than once.
func Init() {
    once.Do(func() {
        prometheus.MustRegister(documentsLoaded, selections, rasterizeLatency, renderLatency, navigations)
    })
}

// Handler returns the http.Handler for /metrics
func Handler() http.Handler { return promhttp.Handler() }

func IncDocument(result string)  { documentsLoaded.WithLabelValues(result).Inc() }
func IncSelection(result string) { selections.WithLabelValues(result).Inc() }
func IncNavigation(dir string)   { navigations.WithLabelValues(dir).Inc() }

func ObserveRasterize(d time.Duration) { rasterizeLatency.Observe(d.Seconds()) }
func ObserveRender(d time.Duration)    { renderLatency.Observe(d.Seconds()) }
