package server

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tartampluch/go-lunar/internal/config"
	"github.com/tartampluch/go-lunar/internal/engine"
	"github.com/tartampluch/go-lunar/internal/lunar"
)

func (s *CalendarServer) newRouter() *gin.Engine {
	// gin's debug mode prints to stdout; requests are logged through slog
	// instead. An explicit GIN_MODE still wins.
	if os.Getenv(gin.EnvGinMode) == "" && gin.Mode() == gin.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.Any(config.RouteRoot, s.handleCalendar)

	api := r.Group(config.RouteAPI)
	{
		api.GET(config.RouteLunar, handleLunar)
		api.GET(config.RouteSolar, handleSolar)
		api.GET(config.RouteDay, handleDay)
		api.GET(config.RouteTerms, handleTerms)
		api.GET(config.RouteYear, handleYear)
		api.GET(config.RouteBirthdays, s.handleBirthdays)
	}
	return r
}

// Conversion is the reply of the lunar and solar endpoints.
type Conversion struct {
	Solar   lunar.SolarDate `json:"solar"`
	Lunar   lunar.LunarDate `json:"lunar"`
	Caption string          `json:"caption"`
	Weekday string          `json:"weekday"`
}

// NewConversion pairs a solar date with its lunar equivalent.
func NewConversion(s lunar.SolarDate, l lunar.LunarDate) Conversion {
	return Conversion{
		Solar:   s,
		Lunar:   l,
		Caption: l.Caption(),
		Weekday: s.Time().Weekday().String(),
	}
}

// status maps lunar errors to HTTP codes: bad syntax is 400, a well-formed
// date the calendar cannot answer for is 422.
func status(err error) int {
	switch {
	case errors.Is(err, lunar.ErrOutOfRange),
		errors.Is(err, lunar.ErrInvalidLeapMonth),
		errors.Is(err, lunar.ErrInvalidDay),
		errors.Is(err, lunar.ErrInvalidMonth):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}

func solarParam(c *gin.Context) (lunar.SolarDate, error) {
	s, err := lunar.ParseSolar(c.Query(config.ParamDate))
	if err != nil {
		return lunar.SolarDate{}, fmt.Errorf("%s: %w", config.ErrBadRequestDate, err)
	}
	return s, nil
}

func yearParam(c *gin.Context) (int, error) {
	y, err := strconv.Atoi(c.Param(config.ParamYear))
	if err != nil {
		return 0, errors.New(config.ErrBadRequestYear)
	}
	return y, nil
}

// handleLunar converts ?date=YYYY-MM-DD (Gregorian) to the lunar calendar.
func handleLunar(c *gin.Context) {
	s, err := solarParam(c)
	if err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	l, err := lunar.SolarToLunar(s)
	if err != nil {
		fail(c, status(err), err)
		return
	}
	success(c, NewConversion(s, l))
}

// handleSolar converts ?date=YYYY-MM-DD (lunar) to Gregorian. The leap month
// is selected with ?leap=true or an "L" before the month; leap=false with an
// "L" date is rejected.
func handleSolar(c *gin.Context) {
	l, err := lunar.ParseLunar(c.Query(config.ParamDate))
	if err != nil {
		fail(c, http.StatusBadRequest, fmt.Errorf("%s: %w", config.ErrBadRequestDate, err))
		return
	}
	if v := c.Query(config.ParamLeap); v != "" {
		leap, err := strconv.ParseBool(v)
		if err != nil {
			fail(c, http.StatusBadRequest, errors.New(config.ErrBadRequestLeap))
			return
		}
		if l.IsLeap && !leap {
			fail(c, http.StatusBadRequest, errors.New(config.ErrLeapConflict))
			return
		}
		l.IsLeap = leap
	}

	s, err := lunar.LunarToSolar(l)
	if err != nil {
		fail(c, status(err), err)
		return
	}
	success(c, NewConversion(s, l))
}

func handleDay(c *gin.Context) {
	s, err := solarParam(c)
	if err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	info, err := lunar.Describe(s)
	if err != nil {
		fail(c, status(err), err)
		return
	}
	success(c, info)
}

func handleTerms(c *gin.Context) {
	y, err := yearParam(c)
	if err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	terms, err := lunar.SolarTerms(y)
	if err != nil {
		fail(c, status(err), err)
		return
	}
	success(c, terms)
}

func handleYear(c *gin.Context) {
	y, err := yearParam(c)
	if err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	info, err := lunar.DescribeYear(y)
	if err != nil {
		fail(c, status(err), err)
		return
	}
	success(c, info)
}

// handleBirthdays lists contacts by next lunar birthday. Before the first
// sync it answers 503 like the feed.
func (s *CalendarServer) handleBirthdays(c *gin.Context) {
	item := s.cache.Load()
	if item == nil {
		c.Header(config.HeaderRetryAfter, config.RetryAfterSeconds)
		fail(c, http.StatusServiceUnavailable, errors.New(config.HTTPMsgInitializing))
		return
	}
	contacts := item.contacts
	if contacts == nil {
		contacts = []engine.BirthdayEntry{}
	}
	success(c, contacts)
}
