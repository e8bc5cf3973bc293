package http

import (
	stdhttp "net/http"
	"net/http/pprof"

	"github.com/labstack/echo/v4"
)

var pprofProfiles = []string{"allocs", "block", "goroutine", "heap", "mutex", "threadcreate"}

// registerProfiling mounts the pprof handlers under /debug/pprof.
func registerProfiling(e *echo.Echo) {
	g := e.Group("/debug/pprof")
	g.GET("/", echo.WrapHandler(stdhttp.HandlerFunc(pprof.Index)))
	g.GET("/cmdline", echo.WrapHandler(stdhttp.HandlerFunc(pprof.Cmdline)))
	g.GET("/profile", echo.WrapHandler(stdhttp.HandlerFunc(pprof.Profile)))
	g.GET("/symbol", echo.WrapHandler(stdhttp.HandlerFunc(pprof.Symbol)))
	g.GET("/trace", echo.WrapHandler(stdhttp.HandlerFunc(pprof.Trace)))
	for _, name := range pprofProfiles {
		g.GET("/"+name, echo.WrapHandler(pprof.Handler(name)))
	}
}
