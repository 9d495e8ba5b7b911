package syncdriver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"offrows/feature/tables/models"
	"offrows/feature/tables/sync"

	"github.com/gofiber/fiber/v2"
)

const apiKeyHeader = "X-API-Key"

// API is the slice of the server the driver talks to.
type API interface {
	PushBatch(ctx context.Context, batch *sync.Batch) (*sync.Result, error)
	FetchTables(ctx context.Context) ([]models.Table, error)
	FetchRows(ctx context.Context, tableID int) ([]models.Row, error)
	FetchViews(ctx context.Context, tableID int) ([]models.View, error)
	// FetchRow and FetchView return nil without error when the record no
	// longer exists on the server.
	FetchRow(ctx context.Context, id int) (*models.Row, error)
	FetchView(ctx context.Context, id int) (*models.View, error)
}

// NewAPI creates the HTTP transport for a server base URL.
func NewAPI(cfg Config) API {
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}
	return &httpAPI{
		baseURL: strings.TrimRight(cfg.ServerURL, "/"),
		apiKey:  cfg.ApiKey,
		timeout: time.Duration(timeout) * time.Second,
	}
}

type httpAPI struct {
	baseURL string
	apiKey  string
	timeout time.Duration
}

func (a *httpAPI) PushBatch(ctx context.Context, batch *sync.Batch) (*sync.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	agent := fiber.Post(a.baseURL + "/tables/sync").
		Timeout(a.timeout).
		JSON(batch)
	if a.apiKey != "" {
		agent.Set(apiKeyHeader, a.apiKey)
	}

	var result sync.Result
	code, body, errs := agent.Struct(&result)
	if len(errs) > 0 {
		return nil, fmt.Errorf("sync request failed: %w", errors.Join(errs...))
	}
	if code != fiber.StatusOK {
		return nil, fmt.Errorf("sync request returned status %d: %s", code, body)
	}
	return &result, nil
}

func (a *httpAPI) FetchTables(ctx context.Context) ([]models.Table, error) {
	var tables []models.Table
	if err := a.get(ctx, "/tables", &tables); err != nil {
		return nil, err
	}
	return tables, nil
}

func (a *httpAPI) FetchRows(ctx context.Context, tableID int) ([]models.Row, error) {
	var rows []models.Row
	if err := a.get(ctx, fmt.Sprintf("/tables/%d/rows", tableID), &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (a *httpAPI) FetchViews(ctx context.Context, tableID int) ([]models.View, error) {
	var views []models.View
	if err := a.get(ctx, fmt.Sprintf("/tables/%d/views", tableID), &views); err != nil {
		return nil, err
	}
	return views, nil
}

func (a *httpAPI) FetchRow(ctx context.Context, id int) (*models.Row, error) {
	var row models.Row
	err := a.get(ctx, fmt.Sprintf("/rows/%d", id), &row)
	if errors.Is(err, errGone) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (a *httpAPI) FetchView(ctx context.Context, id int) (*models.View, error) {
	var view models.View
	err := a.get(ctx, fmt.Sprintf("/views/%d", id), &view)
	if errors.Is(err, errGone) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &view, nil
}

var errGone = errors.New("not found on server")

func (a *httpAPI) get(ctx context.Context, path string, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	agent := fiber.Get(a.baseURL + path).Timeout(a.timeout)
	if a.apiKey != "" {
		agent.Set(apiKeyHeader, a.apiKey)
	}

	code, body, errs := agent.Struct(out)
	if len(errs) > 0 {
		return fmt.Errorf("request for %s failed: %w", path, errors.Join(errs...))
	}
	switch code {
	case fiber.StatusOK:
		return nil
	case fiber.StatusNotFound:
		return errGone
	default:
		return fmt.Errorf("request for %s returned status %d: %s", path, code, body)
	}
}
