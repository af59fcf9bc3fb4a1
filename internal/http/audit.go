package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/readinglog/internal/audit"
	"github.com/mrlokans/readinglog/internal/auth"
	"github.com/mrlokans/readinglog/internal/entities"
)

const (
	activityPageSize = 25
	activityMaxLimit = 100
)

// ActivityController exposes the caller's audit trail.
type ActivityController struct {
	auditService *audit.Service
}

func NewActivityController(auditService *audit.Service) *ActivityController {
	return &ActivityController{
		auditService: auditService,
	}
}

type activityQuery struct {
	page      int
	limit     int
	eventType string
}

func parseActivityQuery(c *gin.Context) activityQuery {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(activityPageSize)))

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > activityMaxLimit {
		limit = activityPageSize
	}
	return activityQuery{page: page, limit: limit, eventType: c.Query("type")}
}

func (ac *ActivityController) load(c *gin.Context, q activityQuery) ([]entities.AuditEvent, int64, int, error) {
	userID := auth.GetUserID(c)
	offset := (q.page - 1) * q.limit

	var (
		events []entities.AuditEvent
		total  int64
		err    error
	)
	if q.eventType != "" {
		events, total, err = ac.auditService.GetEventsByType(entities.AuditEventType(q.eventType), userID, q.limit, offset)
	} else {
		events, total, err = ac.auditService.GetEvents(userID, q.limit, offset)
	}
	if err != nil {
		return nil, 0, 0, err
	}

	totalPages := (int(total) + q.limit - 1) / q.limit
	if totalPages < 1 {
		totalPages = 1
	}
	return events, total, totalPages, nil
}

// ActivityPage renders the activity log
// GET /activity/
func (ac *ActivityController) ActivityPage(c *gin.Context) {
	q := parseActivityQuery(c)
	events, total, totalPages, err := ac.load(c, q)
	if err != nil {
		renderError(c, http.StatusInternalServerError, "Failed to load activity")
		return
	}

	c.HTML(http.StatusOK, "activity.html", gin.H{
		"Title":       "Activity",
		"Events":      events,
		"CurrentPage": q.page,
		"TotalPages":  totalPages,
		"TotalEvents": total,
		"EventType":   q.eventType,
		"EventTypes":  getEventTypes(),
		"Auth":        GetAuthTemplateData(c),
	})
}

// GetActivity returns paginated audit events as JSON
// GET /api/activity/
func (ac *ActivityController) GetActivity(c *gin.Context) {
	q := parseActivityQuery(c)
	events, total, totalPages, err := ac.load(c, q)
	if err != nil {
		respondInternalError(c, err, "load activity")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"events":       events,
		"page":         q.page,
		"limit":        q.limit,
		"total_pages":  totalPages,
		"total_events": total,
	})
}

func getEventTypes() []EventTypeOption {
	return []EventTypeOption{
		{Value: "", Label: "All Events"},
		{Value: string(entities.AuditEventBook), Label: "Books"},
		{Value: string(entities.AuditEventAuth), Label: "Authentication"},
	}
}

type EventTypeOption struct {
	Value string
	Label string
}
