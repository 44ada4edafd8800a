package main

import (
	"bytes"
	"context"
	"crypto/tls"
	"embed"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net"
	"net/http"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	qrcode "github.com/skip2/go-qrcode"
	"golang.org/x/crypto/acme/autocert"

	"geomap-dashboard/pkg/dashboard"
	"geomap-dashboard/pkg/datacache"
	"geomap-dashboard/pkg/telemetry"
)

//go:embed public_html/*
var content embed.FS

var (
	urlCSV   = flag.String("url-csv", "url_locations.csv", "Path to the URL dataset CSV (green markers)")
	storeCSV = flag.String("store-csv", "store_locations.csv", "Path to the Store dataset CSV (blue markers)")
	port     = flag.Int("port", 8765, "Port for running the server")
	domain   = flag.String("domain", "", "Use 80 and 443 ports. Automatic HTTPS cert via Let's Encrypt.")
	cluster  = flag.Bool("cluster", true, "Cluster locations on the map by default")
	fastCSV  = flag.Bool("fast-csv", false, "High-speed mode for large CSVs: bulk points, no per-marker popups")
	cacheTTL = flag.Duration("cache-ttl", time.Hour, "How long parsed CSVs stay memoized without a file change")
	version  = flag.Bool("version", false, "Show the application version")
)

var CompileVersion = "dev"

var renderer *dashboard.Renderer

// envOverrides lets a .env file (or the environment) supply values for
// flags the user did not set explicitly. Explicit flags win over env,
// env wins over compiled defaults.
func envOverrides() {
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	apply := func(name, env string) {
		if set[name] {
			return
		}
		if v := os.Getenv(env); v != "" {
			_ = flag.Set(name, v)
		}
	}
	apply("url-csv", "GEOMAP_URL_CSV")
	apply("store-csv", "GEOMAP_STORE_CSV")
	apply("port", "GEOMAP_PORT")
	apply("domain", "GEOMAP_DOMAIN")
	apply("cluster", "GEOMAP_CLUSTER")
	apply("fast-csv", "GEOMAP_FAST_CSV")
	apply("cache-ttl", "GEOMAP_CACHE_TTL")
}

// settingsFromQuery reads the two sidebar toggles from the request,
// falling back to the flag defaults when a parameter is absent. Every
// interaction re-submits the form, so the whole pipeline reruns with
// exactly the state encoded in the URL.
func settingsFromQuery(r *http.Request) dashboard.Settings {
	return dashboard.Settings{
		Cluster: parseBoolDefault(r.URL.Query().Get("cluster"), *cluster),
		Fast:    parseBoolDefault(r.URL.Query().Get("fast"), *fastCSV),
	}
}

func parseBoolDefault(s string, def bool) bool {
	if s == "" {
		return def
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return def
	}
	return v
}

// dashboardHandler renders the embedded page with the current snapshot
// injected as JSON, the same way the map page gets its marker data.
func dashboardHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	telemetry.PageRequestsTotal.Inc()

	snap := renderer.Render(settingsFromQuery(r))

	tmpl := template.Must(template.New("dashboard.html").Funcs(template.FuncMap{
		// template.JS keeps the payload a raw object literal inside the
		// script tag instead of an escaped string.
		"toJSON": func(v any) (template.JS, error) {
			b, err := json.Marshal(v)
			return template.JS(b), err
		},
	}).ParseFS(content, "public_html/dashboard.html"))

	data := struct {
		Snapshot  dashboard.Snapshot
		Version   string
		URLPath   string
		StorePath string
	}{
		Snapshot:  snap,
		Version:   CompileVersion,
		URLPath:   *urlCSV,
		StorePath: *storeCSV,
	}

	// Render into a buffer first so a template failure still yields a
	// clean 500 instead of a half-written page.
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		log.Printf("template: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := buf.WriteTo(w); err != nil {
		log.Printf("write resp: %v", err)
	}
}

// renderHandler exposes the snapshot as JSON so the page (or anything
// else) can re-render without a full page load.
func renderHandler(w http.ResponseWriter, r *http.Request) {
	snap := renderer.Render(settingsFromQuery(r))
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(snap); err != nil {
		log.Printf("encode snapshot: %v", err)
	}
}

// qrPngHandler returns a QR code for the current dashboard URL so the
// view can be opened on a phone. The target defaults to the referring
// page, then to the request's own address.
func qrPngHandler(w http.ResponseWriter, r *http.Request) {
	u := r.URL.Query().Get("u")
	if u == "" {
		if ref := r.Referer(); ref != "" {
			u = ref
		} else {
			scheme := "http"
			if r.TLS != nil {
				scheme = "https"
			}
			u = scheme + "://" + r.Host + "/"
		}
	}
	if len(u) > 4096 {
		u = u[:4096]
	}

	png, err := qrcode.Encode(u, qrcode.Medium, 512)
	if err != nil {
		http.Error(w, "QR encode: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(png)
}

// withServerHeader wraps any handler, adding a Server header and
// answering HEAD / with a bare 200 so probes can see the service is up.
func withServerHeader(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Server", "geomap-dashboard/"+CompileVersion)

		if r.Method == http.MethodHead && r.URL.Path == "/" {
			w.WriteHeader(http.StatusOK)
			return
		}
		h.ServeHTTP(w, r)
	})
}

// serveWithDomain runs the dual-port setup:
//   - :80  — ACME HTTP-01 challenges plus a 301 redirect to https.
//   - :443 — HTTPS with automatic Let's Encrypt certificates.
//
// All errors are logged, never fatal; a broken ACME exchange leaves the
// plain redirect listener running.
func serveWithDomain(domain string, handler http.Handler) {
	certMgr := &autocert.Manager{
		Prompt: autocert.AcceptTOS,
		Cache:  autocert.DirCache("certs"),
		HostPolicy: func(ctx context.Context, host string) error {
			if host == domain || host == "www."+domain {
				return nil
			}
			// Bare IP access: do not block, just skip cert issuance.
			if net.ParseIP(host) != nil {
				return nil
			}
			return errors.New("acme/autocert: host not configured")
		},
	}

	go func() {
		mux80 := http.NewServeMux()
		mux80.Handle("/.well-known/acme-challenge/", certMgr.HTTPHandler(nil))
		mux80.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			target := "https://" + domain + r.URL.RequestURI()
			http.Redirect(w, r, target, http.StatusMovedPermanently)
		})

		log.Printf("HTTP  server (ACME+redirect) ➜ :80")
		if err := (&http.Server{
			Addr:              ":80",
			Handler:           mux80,
			ReadHeaderTimeout: 10 * time.Second,
		}).ListenAndServe(); err != nil {
			log.Printf("HTTP  server error: %v", err)
		}
	}()

	tlsCfg := certMgr.TLSConfig()
	tlsCfg.MinVersion = tls.VersionTLS12

	log.Printf("HTTPS server for %s ➜ :443", domain)
	if err := (&http.Server{
		Addr:              ":443",
		Handler:           handler,
		TLSConfig:         tlsCfg,
		ReadHeaderTimeout: 10 * time.Second,
	}).ListenAndServeTLS("", ""); err != nil {
		log.Printf("HTTPS server error: %v", err)
	}
}

func main() {
	// 1. Config: .env first, then flags, then env for unset flags.
	_ = godotenv.Load(".env")
	flag.Parse()
	envOverrides()

	if *version {
		fmt.Printf("geomap-dashboard version %s\n", CompileVersion)
		return
	}

	if *domain != "" && runtime.GOOS != "windows" && os.Geteuid() != 0 {
		log.Println("⚠  Binding to :80 / :443 requires super-user rights; run with sudo or as root.")
	}

	// 2. Dataset cache with file-change invalidation. Watch both paths
	// up front; a missing file's directory is still watchable so the
	// cache notices the file appearing later.
	cache := datacache.New(*cacheTTL)
	defer cache.Close()
	cache.Watch(*urlCSV)
	cache.Watch(*storeCSV)

	renderer = dashboard.NewRenderer(dashboard.Config{
		URLCSVPath:   *urlCSV,
		StoreCSVPath: *storeCSV,
	}, cache)
	renderer.Logf = log.Printf

	// 3. Routes and embedded static assets.
	staticFS, err := fs.Sub(content, "public_html")
	if err != nil {
		log.Fatalf("static fs: %v", err)
	}
	http.Handle("/static/", http.StripPrefix("/static/",
		http.FileServer(http.FS(staticFS))))
	http.HandleFunc("/", dashboardHandler)
	http.HandleFunc("/api/render", renderHandler)
	http.HandleFunc("/qr.png", qrPngHandler)
	http.Handle("/metrics", telemetry.Handler())

	rootHandler := withServerHeader(http.DefaultServeMux)

	// 4. HTTP or HTTPS serving.
	if *domain != "" {
		go serveWithDomain(*domain, rootHandler)
	} else {
		addr := fmt.Sprintf(":%d", *port)
		go func() {
			log.Printf("HTTP server ➜ http://localhost%s", addr)
			if err := http.ListenAndServe(addr, rootHandler); err != nil {
				log.Printf("HTTP server error: %v", err)
			}
		}()
	}

	// 5. Keep the main goroutine alive.
	select {}
}
