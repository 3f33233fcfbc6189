package adminapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/araddon/dateparse"
	"github.com/gocarina/gocsv"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/riverhouse-belgrade/riverhouse/internal/domain"
	"github.com/riverhouse-belgrade/riverhouse/internal/notify"
	"github.com/riverhouse-belgrade/riverhouse/internal/store"
	"github.com/riverhouse-belgrade/riverhouse/internal/webserver"
)

const (
	exportSheet = "Sheet1"
	mimeXLSX    = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type registrationPayload struct {
	FullName string `json:"fullName" validate:"max=255"`
	Email    string `json:"email" validate:"max=255"`
	Phone    string `json:"phone" validate:"max=64"`
	Message  string `json:"message" validate:"max=5000"`
}

// registrationRow one exported line
type registrationRow struct {
	ID        string `csv:"id"`
	FullName  string `csv:"full_name"`
	Email     string `csv:"email"`
	Phone     string `csv:"phone"`
	Message   string `csv:"message"`
	CreatedAt string `csv:"created_at"`
}

var exportHeader = []string{"id", "full_name", "email", "phone", "message", "created_at"}

func (r registrationRow) values() []string {
	return []string{r.ID, r.FullName, r.Email, r.Phone, r.Message, r.CreatedAt}
}

func registerRegistrationRoutes() {
	webserver.ApiPOST("/register", SubmitRegistration, webserver.PublicLimit())
	webserver.ApiPOST("/send-email", SubmitRegistration, webserver.PublicLimit())
	webserver.ApiGET("/registrations", ListRegistrations, sessionRequired())
	webserver.ApiGET("/registrations/export", ExportRegistrations, sessionRequired())
}

// SubmitRegistration stores a booking inquiry and queues the notification
// emails. Mail delivery never changes the response.
// @Summary submit a booking inquiry
// @Tags Registrations
// @Param body body registrationPayload true "inquiry"
// @Success 200 {object} map[string]bool
// @Router /api/register [post]
func SubmitRegistration(c echo.Context) error {
	var payload registrationPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse registration", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	reg, err := store.NewRegistrationStore(GetDB(c)).Create(c.Request().Context(), store.RegistrationInput{
		FullName: payload.FullName,
		Email:    payload.Email,
		Phone:    payload.Phone,
		Message:  payload.Message,
	})
	if err != nil {
		return failErr(c, err, "save registration")
	}

	if bus := GetAppContext(c).Bus(); bus != nil {
		bus.Publish(notify.TopicRegistrationCreated, reg)
	} else {
		zap.L().Warn("event bus unavailable, registration emails not sent", zap.Int64("registration", reg.ID))
	}
	return okFlag(c)
}

func parseRegistrationFilter(c echo.Context) (store.RegistrationFilter, error) {
	f := store.RegistrationFilter{Q: strings.TrimSpace(c.QueryParam("q"))}
	if v := strings.TrimSpace(c.QueryParam("since")); v != "" {
		t, err := dateparse.ParseLocal(v)
		if err != nil {
			return f, fmt.Errorf("invalid since date %q", v)
		}
		f.Since = t
	}
	if v := strings.TrimSpace(c.QueryParam("until")); v != "" {
		t, err := dateparse.ParseLocal(v)
		if err != nil {
			return f, fmt.Errorf("invalid until date %q", v)
		}
		f.Until = t
	}
	return f, nil
}

// ListRegistrations pages through booking inquiries, newest first
// @Summary list inquiries
// @Tags Registrations
// @Param page query int false "Page number"
// @Param pageSize query int false "Items per page"
// @Param q query string false "Name or email"
// @Param since query string false "Created at or after"
// @Param until query string false "Created before"
// @Success 200 {object} ListResponse
// @Router /api/registrations [get]
func ListRegistrations(c echo.Context) error {
	f, err := parseRegistrationFilter(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_INPUT", err.Error(), nil)
	}
	page, pageSize := parsePagination(c)
	items, total, err := store.NewRegistrationStore(GetDB(c)).List(c.Request().Context(), f, page, pageSize)
	if err != nil {
		return failErr(c, err, "query registrations")
	}
	return paged(c, items, total, page, pageSize)
}

// ExportRegistrations downloads matching inquiries as csv (default) or xlsx
func ExportRegistrations(c echo.Context) error {
	f, err := parseRegistrationFilter(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_INPUT", err.Error(), nil)
	}
	format := strings.ToLower(strings.TrimSpace(c.QueryParam("format")))
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "xlsx" {
		return fail(c, http.StatusBadRequest, "INVALID_INPUT", "format must be csv or xlsx", nil)
	}

	items, err := store.NewRegistrationStore(GetDB(c)).All(c.Request().Context(), f)
	if err != nil {
		return failErr(c, err, "export registrations")
	}
	rows := make([]*registrationRow, 0, len(items))
	for i := range items {
		rows = append(rows, toRegistrationRow(&items[i]))
	}

	filename := fmt.Sprintf("registrations-%s.%s", time.Now().Format("20060102"), format)
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	logOperation(c, "export_registrations", strconv.Itoa(len(rows))+" rows as "+format)

	if format == "xlsx" {
		xlsx := excelize.NewFile()
		writeXLSXRow(xlsx, 1, exportHeader)
		for i, r := range rows {
			writeXLSXRow(xlsx, i+2, r.values())
		}
		buf, err := xlsx.WriteToBuffer()
		if err != nil {
			return failErr(c, err, "export registrations")
		}
		return c.Blob(http.StatusOK, mimeXLSX, buf.Bytes())
	}

	data, err := gocsv.MarshalBytes(&rows)
	if err != nil {
		return failErr(c, err, "export registrations")
	}
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", data)
}

func toRegistrationRow(r *domain.Registration) *registrationRow {
	return &registrationRow{
		ID:        strconv.FormatInt(r.ID, 10),
		FullName:  r.FullName,
		Email:     r.Email,
		Phone:     r.Phone,
		Message:   r.Message,
		CreatedAt: r.CreatedAt.Format(time.RFC3339),
	}
}

func writeXLSXRow(xlsx *excelize.File, row int, values []string) {
	for col, v := range values {
		xlsx.SetCellValue(exportSheet, fmt.Sprintf("%c%d", 'A'+col, row), v)
	}
}
