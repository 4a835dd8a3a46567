// Package echoutil tunes echo servers the way millbox runs them.
package echoutil

import (
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

// LogHandlerFunc logs each request line, and its response status with
// the handling time once the handler returns.
func LogHandlerFunc(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		meth := c.Request().Method
		path := c.Request().URL
		begin := time.Now()
		c.Logger().Infof("< request @[%s] %s %s", begin, meth, path)

		var err error
		defer func() {
			end := time.Now()
			c.Logger().Infof(
				"> response @[%s] status = %d (for request @[%s] %s %s) in %v / error = %+v",
				end, c.Response().Status, begin, meth, path, end.Sub(begin), err,
			)
		}()

		err = next(c)
		return err
	}
}

var loglevels = map[string]log.Lvl{
	"debug": log.DEBUG,
	"info":  log.INFO,
	"warn":  log.WARN,
	"":      log.WARN,
	"error": log.ERROR,
	"off":   log.OFF,
}

// SetLevel applies a loglevel name to the echo logger. Unknown names
// fall back to warn, with a warning saying so.
func SetLevel(e *echo.Echo, loglevel string) {
	if lvl, ok := loglevels[strings.ToLower(loglevel)]; ok {
		e.Logger.SetLevel(lvl)
		return
	}
	e.Logger.SetLevel(log.WARN)
	e.Logger.Warnf("unknown loglevel: %s . fall-backed to warn", loglevel)
}
