// Package iis talks to the university timetable service (IIS-style REST API).
package iis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrNotFound means the service knows nothing about the requested group.
	ErrNotFound = errors.New("schedule not found")
	// ErrUnavailable covers transport failures and unexpected statuses.
	ErrUnavailable = errors.New("schedule service unavailable")
)

// Employee is an instructor as returned by the timetable service.
type Employee struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	MiddleName string `json:"middleName"`
}

// Lesson is a single timetable entry. WeekNumbers nil means the lesson runs
// every week of the rotation; Subgroup 0 means it applies to all subgroups.
type Lesson struct {
	Subject     string     `json:"subject"`
	LessonType  string     `json:"lessonTypeAbbrev"`
	StartTime   string     `json:"startLessonTime"`
	EndTime     string     `json:"endLessonTime"`
	Auditories  []string   `json:"auditories"`
	Employees   []Employee `json:"employees"`
	WeekNumbers []int      `json:"weekNumber"`
	Subgroup    int        `json:"numSubgroup"`
}

// Schedule maps a weekday name to that day's lessons in source order.
// Fetched once per request and never mutated; a refresh replaces the whole map.
type Schedule map[string][]Lesson

type scheduleResponse struct {
	Schedules Schedule `json:"schedules"`
}

type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

// Schedule fetches the weekly timetable for a student group.
func (c *Client) Schedule(ctx context.Context, groupID string) (Schedule, error) {
	u := fmt.Sprintf("%s/schedule?studentGroup=%s", c.baseURL, url.QueryEscape(groupID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	res, err := c.http.Do(req)
	if err != nil {
		c.log.Error("schedule fetch failed", zap.String("group", groupID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		c.log.Error("schedule fetch bad status", zap.String("group", groupID), zap.String("status", res.Status))
		return nil, fmt.Errorf("%w: unexpected status %s", ErrUnavailable, res.Status)
	}

	var payload scheduleResponse
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		c.log.Error("schedule decode failed", zap.String("group", groupID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(payload.Schedules) == 0 {
		return nil, ErrNotFound
	}
	return payload.Schedules, nil
}

// CurrentWeek fetches the active rotation week number (1..4).
func (c *Client) CurrentWeek(ctx context.Context) (int, error) {
	u := c.baseURL + "/schedule/current-week"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	res, err := c.http.Do(req)
	if err != nil {
		c.log.Error("current week fetch failed", zap.Error(err))
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		c.log.Error("current week bad status", zap.String("status", res.Status))
		return 0, fmt.Errorf("%w: unexpected status %s", ErrUnavailable, res.Status)
	}

	var week int
	if err := json.NewDecoder(res.Body).Decode(&week); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return week, nil
}
