package controller

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ai-support-be/internal/dto"
	"ai-support-be/internal/pkg/serverutils"
	"ai-support-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSupportService struct {
	companyId uuid.UUID
	req       *dto.ReplyRequest
}

func (s *stubSupportService) Reply(_ context.Context, companyId uuid.UUID, req *dto.ReplyRequest) (*dto.ReplyResponse, error) {
	s.companyId, s.req = companyId, req
	return &dto.ReplyResponse{SilentReason: "no keys", Intent: "general"}, nil
}

func (s *stubSupportService) Preview(_ context.Context, companyId uuid.UUID, req *dto.ReplyRequest) (*dto.PreviewPromptResponse, error) {
	s.companyId, s.req = companyId, req
	return &dto.PreviewPromptResponse{Prompt: "<prompt/>", Intent: "general"}, nil
}

type stubTemplateService struct {
	upsertErr error
	settings  *dto.CompanySettingsResponse
}

func (s *stubTemplateService) List(context.Context, uuid.UUID) ([]*dto.TemplateResponse, error) {
	return []*dto.TemplateResponse{{Key: "rag_header"}}, nil
}

func (s *stubTemplateService) Upsert(_ context.Context, _ uuid.UUID, key string, req *dto.UpsertTemplateRequest) (*dto.TemplateResponse, error) {
	if s.upsertErr != nil {
		return nil, s.upsertErr
	}
	return &dto.TemplateResponse{Key: key, Content: req.Content}, nil
}

func (s *stubTemplateService) ClearCache(uuid.UUID) *dto.ClearCacheResponse {
	return &dto.ClearCacheResponse{Removed: 3}
}

func (s *stubTemplateService) GetSettings(context.Context, uuid.UUID) (*dto.CompanySettingsResponse, error) {
	return s.settings, nil
}

func (s *stubTemplateService) SaveSettings(_ context.Context, companyId uuid.UUID, _ *dto.CompanySettingsRequest) (*dto.CompanySettingsResponse, error) {
	return &dto.CompanySettingsResponse{CompanyId: companyId}, nil
}

func newTestApp(support service.ISupportService, templates service.ITemplateService) *fiber.App {
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	api := app.Group("/api")
	NewSupportController(support).RegisterRoutes(api)
	NewTemplateController(templates).RegisterRoutes(api)
	return app
}

func do(t *testing.T, app *fiber.App, method, path, body string) (int, serverutils.BaseResponse) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out serverutils.BaseResponse
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return resp.StatusCode, out
}

func TestSupportController(t *testing.T) {
	companyId := uuid.New()

	t.Run("Reply parses and forwards the request", func(t *testing.T) {
		svc := &stubSupportService{}
		app := newTestApp(svc, &stubTemplateService{})

		status, res := do(t, app, http.MethodPost, "/api/support/v1/reply",
			`{"company_id":"`+companyId.String()+`","message":"hi","platform":"web","force_fresh":true}`)

		assert.Equal(t, http.StatusOK, status)
		assert.True(t, res.Success)
		assert.Equal(t, companyId, svc.companyId)
		assert.True(t, svc.req.ForceFresh)
		assert.Equal(t, "web", svc.req.Platform)
	})

	t.Run("Validation failures are 400", func(t *testing.T) {
		app := newTestApp(&stubSupportService{}, &stubTemplateService{})

		cases := []string{
			`{"message":"hi"}`,
			`{"company_id":"not-a-uuid","message":"hi"}`,
			`{"company_id":"` + companyId.String() + `","message":"hi","platform":"telegram"}`,
			`{"company_id":"` + companyId.String() + `","message":"hi","rag":[{"type":"blog","content":"x"}]}`,
			`{broken`,
		}
		for _, body := range cases {
			status, res := do(t, app, http.MethodPost, "/api/support/v1/reply", body)
			assert.Equal(t, http.StatusBadRequest, status, body)
			assert.False(t, res.Success)
		}
	})

	t.Run("Preview", func(t *testing.T) {
		app := newTestApp(&stubSupportService{}, &stubTemplateService{})
		status, res := do(t, app, http.MethodPost, "/api/support/v1/prompt/preview",
			`{"company_id":"`+companyId.String()+`","message":"hi"}`)

		assert.Equal(t, http.StatusOK, status)
		data := res.Data.(map[string]interface{})
		assert.Equal(t, "<prompt/>", data["prompt"])
	})
}

func TestTemplateController(t *testing.T) {
	companyId := uuid.New().String()

	t.Run("List", func(t *testing.T) {
		app := newTestApp(&stubSupportService{}, &stubTemplateService{})
		status, res := do(t, app, http.MethodGet, "/api/support/v1/templates/"+companyId, "")
		assert.Equal(t, http.StatusOK, status)
		assert.Len(t, res.Data, 1)
	})

	t.Run("Bad company id", func(t *testing.T) {
		app := newTestApp(&stubSupportService{}, &stubTemplateService{})
		status, _ := do(t, app, http.MethodGet, "/api/support/v1/templates/xyz", "")
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("Upsert unknown key", func(t *testing.T) {
		app := newTestApp(&stubSupportService{}, &stubTemplateService{upsertErr: service.ErrUnknownTemplateKey})
		status, res := do(t, app, http.MethodPut, "/api/support/v1/templates/"+companyId+"/whatever", `{"content":"x"}`)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Contains(t, res.Message, "unknown template key")
	})

	t.Run("Upsert requires content", func(t *testing.T) {
		app := newTestApp(&stubSupportService{}, &stubTemplateService{})
		status, _ := do(t, app, http.MethodPut, "/api/support/v1/templates/"+companyId+"/rag_header", `{}`)
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("Clear cache", func(t *testing.T) {
		app := newTestApp(&stubSupportService{}, &stubTemplateService{})
		status, res := do(t, app, http.MethodDelete, "/api/support/v1/templates/"+companyId+"/cache", "")
		assert.Equal(t, http.StatusOK, status)
		assert.EqualValues(t, 3, res.Data.(map[string]interface{})["removed"])
	})

	t.Run("Missing settings are 404", func(t *testing.T) {
		app := newTestApp(&stubSupportService{}, &stubTemplateService{})
		status, _ := do(t, app, http.MethodGet, "/api/support/v1/settings/"+companyId, "")
		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("Out of range sampling is rejected", func(t *testing.T) {
		app := newTestApp(&stubSupportService{}, &stubTemplateService{})
		status, _ := do(t, app, http.MethodPut, "/api/support/v1/settings/"+companyId, `{"temperature":3}`)
		assert.Equal(t, http.StatusBadRequest, status)
	})
}
