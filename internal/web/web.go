package web

import (
    "context"
    "embed"
    "encoding/json"
    "errors"
    "html/template"
    "net/http"
    "strconv"
    "time"

    "github.com/rs/zerolog"

    "github.com/local/pageselector/internal/dispatcher"
    "github.com/local/pageselector/internal/imagerender"
    "github.com/local/pageselector/internal/limiter"
    "github.com/local/pageselector/internal/logger"
    "github.com/local/pageselector/internal/selector"
    "github.com/local/pageselector/internal/statuscheck"
)

//go:embed templates/*.html
var templatesFS embed.FS

// StatusReporter summarizes subsystem readiness for /web/status.
type StatusReporter interface {
    Summary(ctx context.Context) statuscheck.Summary
}

// Options wires the binding to a session. Every session call runs on Loop.
type Options struct {
    Session   *selector.Session
    Inbox     *selector.Inbox
    Loop      *dispatcher.Loop
    Status    StatusReporter
    UploadDir string
    Quality   int
    Username  string
    Password  string
}

// Web is the browser binding of the page selector: a canvas page, pointer
// and key events over JSON, and the current frame as JPEG.
type Web struct {
    tpl       *template.Template
    session   *selector.Session
    inbox     *selector.Inbox
    loop      *dispatcher.Loop
    status    StatusReporter
    uploadDir string
    quality   int
    username  string
    password  string
    opens     *limiter.Slots
    log       zerolog.Logger
}

func New(opts Options) *Web {
    tpl := template.Must(template.ParseFS(templatesFS, "templates/*.html"))
    inbox := opts.Inbox
    if inbox == nil {
        inbox = selector.NewInbox(0)
    }
    q := opts.Quality
    if q <= 0 {
        q = imagerender.DefaultQuality
    }
    dir := opts.UploadDir
    if dir == "" {
        dir = "uploads"
    }
    return &Web{
        tpl:       tpl,
        session:   opts.Session,
        inbox:     inbox,
        loop:      opts.Loop,
        status:    opts.Status,
        uploadDir: dir,
        quality:   q,
        username:  opts.Username,
        password:  opts.Password,
        opens:     limiter.New(limiter.Options{MaxInflight: 1}),
        log:       logger.Component("web"),
    }
}

func (w *Web) RegisterRoutes(mux *http.ServeMux) {
    mux.HandleFunc("/health", w.handleHealth)
    mux.HandleFunc("/web/login", w.handleLogin)
    mux.HandleFunc("/web/logout", w.handleLogout)
    mux.HandleFunc("/web/", w.requireAuth(w.handleIndex))
    mux.HandleFunc("/web/open", w.requireAuth(w.handleOpen))
    mux.HandleFunc("/web/event", w.requireAuth(w.handleEvent))
    mux.HandleFunc("/web/page.jpg", w.requireAuth(w.handlePage))
    mux.HandleFunc("/web/state", w.requireAuth(w.handleState))
    mux.HandleFunc("/web/status", w.requireAuth(w.handleStatus))
}

func (w *Web) authEnabled() bool { return w.username != "" && w.password != "" }

func (w *Web) render(wr http.ResponseWriter, name string, data any) {
    wr.Header().Set("Content-Type", "text/html; charset=utf-8")
    if err := w.tpl.ExecuteTemplate(wr, name, data); err != nil {
        w.log.Error().Err(err).Str("template", name).Msg("template render failed")
    }
}

// requireAuth checks the login cookie when credentials are configured.
func (w *Web) requireAuth(next http.HandlerFunc) http.HandlerFunc {
    return func(wr http.ResponseWriter, r *http.Request) {
        if !w.authEnabled() {
            next(wr, r)
            return
        }
        c, err := r.Cookie("auth")
        if err != nil || c.Value != "1" {
            http.Redirect(wr, r, "/web/login", http.StatusSeeOther)
            return
        }
        next(wr, r)
    }
}

func (w *Web) handleHealth(wr http.ResponseWriter, r *http.Request) {
    wr.WriteHeader(http.StatusOK)
    _, _ = wr.Write([]byte("ok"))
}

func (w *Web) handleLogin(wr http.ResponseWriter, r *http.Request) {
    if !w.authEnabled() {
        http.Redirect(wr, r, "/web/", http.StatusSeeOther)
        return
    }
    switch r.Method {
    case http.MethodGet:
        w.render(wr, "login.html", map[string]any{"Error": r.URL.Query().Get("error")})
    case http.MethodPost:
        if err := r.ParseForm(); err != nil { http.Redirect(wr, r, "/web/login?error=invalid+form", http.StatusSeeOther); return }
        if r.Form.Get("username") == w.username && r.Form.Get("password") == w.password {
            http.SetCookie(wr, &http.Cookie{Name: "auth", Value: "1", Path: "/", HttpOnly: true})
            http.Redirect(wr, r, "/web/", http.StatusSeeOther)
            return
        }
        w.log.Warn().Str("remote", r.RemoteAddr).Msg("login rejected")
        http.Redirect(wr, r, "/web/login?error=invalid+credentials", http.StatusSeeOther)
    default:
        wr.WriteHeader(http.StatusMethodNotAllowed)
    }
}

func (w *Web) handleLogout(wr http.ResponseWriter, r *http.Request) {
    http.SetCookie(wr, &http.Cookie{Name: "auth", Value: "", Path: "/", MaxAge: -1})
    http.Redirect(wr, r, "/web/login", http.StatusSeeOther)
}

func (w *Web) handleIndex(wr http.ResponseWriter, r *http.Request) {
    if r.URL.Path != "/web/" {
        http.NotFound(wr, r)
        return
    }
    var snap selector.Snapshot
    if err := w.loop.Do(r.Context(), func() { snap = w.session.Snapshot() }); err != nil {
        http.Error(wr, err.Error(), http.StatusServiceUnavailable)
        return
    }
    w.render(wr, "selector.html", map[string]any{
        "State":  snap,
        "Logout": w.authEnabled(),
    })
}

// ErrOpenInFlight rejects an open while another document is still loading.
var ErrOpenInFlight = errors.New("a document is already loading")

// stateResp is returned by every JSON endpoint.
type stateResp struct {
    State         selector.Snapshot       `json:"state"`
    Notifications []selector.Notification `json:"notifications"`
    Error         string                  `json:"error,omitempty"`
}

func (w *Web) respond(wr http.ResponseWriter, status int, snap selector.Snapshot, err error) {
    resp := stateResp{State: snap, Notifications: w.inbox.Drain()}
    if err != nil {
        resp.Error = err.Error()
    }
    wr.Header().Set("Content-Type", "application/json")
    wr.WriteHeader(status)
    _ = json.NewEncoder(wr).Encode(resp)
}

// handleOpen loads an uploaded file or a local path. An empty request is the
// cancelled dialog and leaves the session unchanged. Only one open may be in
// flight; rasterizing blocks the event loop until it finishes.
func (w *Web) handleOpen(wr http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodPost { wr.WriteHeader(http.StatusMethodNotAllowed); return }
    release, ok := w.opens.Allow("open")
    if !ok {
        w.respond(wr, http.StatusTooManyRequests, selector.Snapshot{}, ErrOpenInFlight)
        return
    }
    defer release()
    if err := r.ParseMultipartForm(64 << 20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
        http.Error(wr, "invalid multipart form", http.StatusBadRequest)
        return
    }

    path := r.FormValue("path")
    if file, hdr, err := r.FormFile("file"); err == nil {
        defer file.Close()
        saved, err := saveUpload(w.uploadDir, hdr.Filename, file)
        if err != nil {
            w.log.Error().Err(err).Msg("upload save failed")
            http.Error(wr, "cannot save upload", http.StatusInternalServerError)
            return
        }
        defer removeUpload(saved)
        path = saved
    }
    width := formInt(r, "width")
    height := formInt(r, "height")

    start := time.Now()
    var (
        snap    selector.Snapshot
        openErr error
    )
    err := w.loop.Do(r.Context(), func() {
        if width > 0 && height > 0 {
            w.session.SetViewport(width, height)
        }
        openErr = w.session.Open(r.Context(), path)
        snap = w.session.Snapshot()
    })
    if err != nil {
        http.Error(wr, err.Error(), http.StatusServiceUnavailable)
        return
    }
    if openErr != nil {
        w.respond(wr, http.StatusUnprocessableEntity, snap, openErr)
        return
    }
    if snap.Loaded {
        w.log.Info().
            Str("doc_id", snap.DocumentID).
            Int("pages", snap.PageCount).
            Dur("elapsed", time.Since(start)).
            Msg("document opened")
    }
    w.respond(wr, http.StatusOK, snap, nil)
}

// eventReq is one toolkit event from the browser. Coordinates are display pixels.
type eventReq struct {
    Type   string  `json:"type"`
    X      float64 `json:"x"`
    Y      float64 `json:"y"`
    Key    string  `json:"key"`
    Width  int     `json:"width"`
    Height int     `json:"height"`
}

func (w *Web) handleEvent(wr http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodPost { wr.WriteHeader(http.StatusMethodNotAllowed); return }
    defer r.Body.Close()
    var ev eventReq
    if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
        http.Error(wr, "invalid json", http.StatusBadRequest)
        return
    }

    var h selector.EventHandler = w.session
    var fn func()
    switch ev.Type {
    case "down":
        fn = func() { h.OnPointerDown(ev.X, ev.Y) }
    case "move":
        fn = func() { h.OnPointerMove(ev.X, ev.Y) }
    case "up":
        fn = func() { h.OnPointerUp(ev.X, ev.Y) }
    case "key":
        k := selector.ParseKey(ev.Key)
        fn = func() { h.OnKey(k) }
    case "resize":
        fn = func() { w.session.SetViewport(ev.Width, ev.Height) }
    default:
        http.Error(wr, "unknown event type", http.StatusBadRequest)
        return
    }

    var snap selector.Snapshot
    if err := w.loop.Do(r.Context(), func() { fn(); snap = w.session.Snapshot() }); err != nil {
        http.Error(wr, err.Error(), http.StatusServiceUnavailable)
        return
    }
    w.respond(wr, http.StatusOK, snap, nil)
}

func (w *Web) handlePage(wr http.ResponseWriter, r *http.Request) {
    var (
        data     []byte
        frameErr error
    )
    err := w.loop.Do(r.Context(), func() {
        img, err := w.session.Frame()
        if err != nil {
            frameErr = err
            return
        }
        data, frameErr = imagerender.JPEGBytes(img, w.quality)
    })
    if err != nil {
        http.Error(wr, err.Error(), http.StatusServiceUnavailable)
        return
    }
    if errors.Is(frameErr, selector.ErrNoDocument) {
        http.Error(wr, frameErr.Error(), http.StatusNotFound)
        return
    }
    if frameErr != nil {
        w.log.Error().Err(frameErr).Msg("frame encode failed")
        http.Error(wr, "frame encode failed", http.StatusInternalServerError)
        return
    }
    wr.Header().Set("Content-Type", "image/jpeg")
    wr.Header().Set("Cache-Control", "no-store")
    wr.Header().Set("Content-Length", strconv.Itoa(len(data)))
    _, _ = wr.Write(data)
}

func (w *Web) handleState(wr http.ResponseWriter, r *http.Request) {
    var snap selector.Snapshot
    if err := w.loop.Do(r.Context(), func() { snap = w.session.Snapshot() }); err != nil {
        http.Error(wr, err.Error(), http.StatusServiceUnavailable)
        return
    }
    w.respond(wr, http.StatusOK, snap, nil)
}

func (w *Web) handleStatus(wr http.ResponseWriter, r *http.Request) {
    if w.status == nil {
        http.Error(wr, "status unavailable", http.StatusNotFound)
        return
    }
    wr.Header().Set("Content-Type", "application/json")
    _ = json.NewEncoder(wr).Encode(w.status.Summary(r.Context()))
}

func formInt(r *http.Request, key string) int {
    n, err := strconv.Atoi(r.FormValue(key))
    if err != nil { return 0 }
    return n
}
