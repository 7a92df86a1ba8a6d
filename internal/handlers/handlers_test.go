package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"emo-pages-backend/internal/config"
	"emo-pages-backend/internal/metrics"
	"emo-pages-backend/internal/models"
	"emo-pages-backend/internal/services"
	"emo-pages-backend/internal/testutil"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	*httptest.Server
	anon *services.AnonymousService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	store := testutil.NewStore(t)
	m := metrics.New()
	hub := services.NewInboxHub()
	pages := services.NewPageService(store, m)
	anon := services.NewAnonymousService(pages, hub)
	viewer := services.NewViewer(pages)
	links := services.NewLinks("https://emo.example")
	tokens := services.NewStreamTokens("test-secret", time.Hour)

	images, err := services.NewImageService(context.Background(), config.ImagesConfig{
		Region:       "us-east-1",
		Bucket:       "emo-images",
		AccessKey:    "AKIDEXAMPLE",
		SecretKey:    "secret",
		Endpoint:     "http://localhost:9000",
		UploadPrefix: "emo_pages",
	})
	require.NoError(t, err)

	rt := &Router{
		Schema:    NewSchemaHandler(),
		Pages:     NewPageHandler(pages, viewer, links),
		Anonymous: NewAnonymousHandler(anon, links, tokens, 8*time.Second),
		Images:    NewImageHandler(images),
		WebSocket: NewWebSocketHandler(viewer, anon, links, hub, 0, time.Hour),
		Tokens:    tokens,
		Metrics:   m,
		Ping:      store.Ping,
	}

	srv := httptest.NewServer(rt.Handler())
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, anon: anon}
}

func (s *testServer) do(t *testing.T, method, path string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, s.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, buf.Bytes()
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(data, &v), string(data))
	return v
}

func (s *testServer) createPage(t *testing.T, req CreatePageRequest) PageResponse {
	t.Helper()
	resp, body := s.do(t, http.MethodPost, "/api/v1/pages", req)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	return decode[PageResponse](t, body)
}

func TestSchemaEndpoints(t *testing.T) {
	s := newTestServer(t)

	resp, body := s.do(t, http.MethodGet, "/api/v1/schema", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	schema := decode[SchemaResponse](t, body)
	assert.Len(t, schema.Types, 6)
	assert.Equal(t, 500, schema.Limits.MaxMessageLength)
	assert.Equal(t, 72, schema.Limits.ExpiryHours)

	resp, body = s.do(t, http.MethodGet, "/api/v1/schema/types/birthday", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"receiverName"`)

	resp, _ = s.do(t, http.MethodGet, "/api/v1/schema/types/anonymous", nil)
	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Equal(t, anonymousPath, resp.Header.Get("Location"))

	resp, body = s.do(t, http.MethodGet, "/api/v1/schema/types/qa", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Invalid page type", decode[ErrorResponse](t, body).Error)
}

func TestCreateAndViewPage(t *testing.T) {
	s := newTestServer(t)

	created := s.createPage(t, CreatePageRequest{
		Type: models.PageTypeValentineWish,
		Tone: models.TonePlayful,
		Content: map[string]any{
			"receiverName":  "Jo",
			"wishType":      "playful",
			"customMessage": strings.Repeat("x", 600),
		},
	})
	assert.Len(t, created.Page.Slug, 13)
	assert.Len(t, created.Page.Content.String("customMessage"), 500)
	assert.Equal(t, "https://emo.example/view/"+created.Page.Slug, created.Links.View)
	assert.NotNil(t, created.Page.ExpiresAt)

	resp, body := s.do(t, http.MethodGet, "/api/v1/pages/"+created.Page.Slug, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var view struct {
		Page         *models.Page `json:"page"`
		Presentation struct {
			Kind string   `json:"kind"`
			Data wishData `json:"data"`
		} `json:"presentation"`
	}
	require.NoError(t, json.Unmarshal(body, &view))
	assert.Equal(t, "valentine_wish", view.Presentation.Kind)
	assert.Equal(t, "Hey Jo! Guess what? You're stuck with me on Valentine's Day...", view.Presentation.Data.Message)

	resp, body = s.do(t, http.MethodGet, "/api/v1/pages/"+created.Page.Slug+"/preview", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, decode[PageResponse](t, body).Links.WhatsApp, "https://wa.me/?text=")
}

type wishData struct {
	Message string `json:"message"`
}

func TestCreatePage_Errors(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		body   any
		status int
		want   string
	}{
		{"missing required", CreatePageRequest{Type: models.PageTypeBirthday, Content: map[string]any{}}, http.StatusBadRequest, "receiverName: is required"},
		{"unknown type", CreatePageRequest{Type: "poem"}, http.StatusBadRequest, "type: invalid page type"},
		{"bad tone", CreatePageRequest{Type: models.PageTypeValentine, Tone: "sarcastic"}, http.StatusBadRequest, ""},
		{"bad body", "not an object", http.StatusBadRequest, msgInvalidBody},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := s.do(t, http.MethodPost, "/api/v1/pages", tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			if tt.want != "" {
				assert.Equal(t, tt.want, decode[ErrorResponse](t, body).Error)
			}
		})
	}

	resp, _ := s.do(t, http.MethodPost, "/api/v1/pages", CreatePageRequest{Type: models.PageTypeAnonymous})
	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Equal(t, anonymousPath, resp.Header.Get("Location"))
}

func TestGetPage_NotFound(t *testing.T) {
	s := newTestServer(t)

	resp, body := s.do(t, http.MethodGet, "/api/v1/pages/doesnotexist0", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, msgPageNotFound, decode[ErrorResponse](t, body).Error)
}

func TestAnonymousFlow(t *testing.T) {
	s := newTestServer(t)

	resp, body := s.do(t, http.MethodPost, "/api/v1/anonymous", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[CreateAnonymousResponse](t, body)
	require.NotEmpty(t, created.OwnerToken)
	assert.Empty(t, created.Page.OwnerToken(), "page payload never carries the token")
	slug := created.Page.Slug

	resp, body = s.do(t, http.MethodGet, "/api/v1/anonymous/"+slug, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotContains(t, string(body), created.OwnerToken)

	for _, text := range []string{"A", "B", "C"} {
		resp, body = s.do(t, http.MethodPost, "/api/v1/anonymous/"+slug+"/responses", ReplyRequest{Response: text})
		require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
		reply := decode[ReplyResponse](t, body)
		assert.Equal(t, "Thank you!", reply.Message)
		assert.Equal(t, "https://emo.example/anonymous", reply.CreateURL)
	}
	resp, _ = s.do(t, http.MethodPost, "/api/v1/anonymous/"+slug+"/responses", ReplyRequest{Response: "  "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = s.do(t, http.MethodGet, "/api/v1/anonymous/"+slug+"/inbox?token="+url.QueryEscape(created.OwnerToken), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	inbox := decode[InboxResponse](t, body)
	require.Len(t, inbox.Responses, 3)
	assert.Equal(t, "C", inbox.Responses[0].Response)
	assert.Equal(t, "A", inbox.Responses[2].Response)
	assert.NotEmpty(t, inbox.StreamToken)
	assert.Equal(t, 8, inbox.PollInterval)
}

func TestInbox_Unauthorized(t *testing.T) {
	s := newTestServer(t)
	link, err := s.anon.Create(context.Background())
	require.NoError(t, err)

	for _, path := range []string{
		"/api/v1/anonymous/" + link.Page.Slug + "/inbox",
		"/api/v1/anonymous/" + link.Page.Slug + "/inbox?token=wrong",
		"/api/v1/anonymous/nosuchslug000/inbox?token=" + link.OwnerToken,
	} {
		resp, body := s.do(t, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
		assert.Equal(t, "Unauthorized inbox access.", decode[ErrorResponse](t, body).Error)
	}
}

func TestImageUpload(t *testing.T) {
	s := newTestServer(t)

	resp, body := s.do(t, http.MethodPost, "/api/v1/images/uploads", services.UploadRequest{Filename: "us.jpg", ContentType: "image/jpeg"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	upload := decode[services.UploadResponse](t, body)
	assert.Contains(t, upload.UploadURL, "X-Amz-Signature=")
	assert.True(t, strings.HasPrefix(upload.PublicURL, "http://localhost:9000/emo-images/emo_pages/"))

	resp, _ = s.do(t, http.MethodPost, "/api/v1/images/uploads", services.UploadRequest{Filename: "a.txt", ContentType: "text/plain"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	resp, _ := s.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	s.createPage(t, CreatePageRequest{Type: models.PageTypeMemory, Content: map[string]any{"receiverName": "Ana"}})
	resp, body := s.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `emopages_pages_created_total{type="memory"} 1`)
}

func dial(t *testing.T, s *testServer, path string) *websocket.Conn {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(s.URL, "http")+path, nil)
	require.NoError(t, err)
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(10*time.Second)))
	return conn
}

func readUntil(t *testing.T, conn *websocket.Conn, msgType string) map[string]any {
	t.Helper()
	for {
		var msg map[string]any
		require.NoError(t, conn.ReadJSON(&msg))
		if msg["type"] == msgType {
			return msg
		}
	}
}

func TestWebSocket_ViewValentine(t *testing.T) {
	s := newTestServer(t)
	created := s.createPage(t, CreatePageRequest{Type: models.PageTypeValentine, Content: map[string]any{"receiverName": "Sam"}})

	conn := dial(t, s, "/ws/view/"+created.Page.Slug)
	pres := readUntil(t, conn, services.MsgPresentation)
	assert.Equal(t, "valentine", pres["data"].(map[string]any)["kind"])

	require.NoError(t, conn.WriteJSON(services.WSMessage{Type: services.MsgYes}))
	state := readUntil(t, conn, services.MsgValentine)["data"].(map[string]any)
	assert.Equal(t, "celebrating", state["phase"])
	assert.Equal(t, "Yay!", state["headline"])
}

func TestWebSocket_ViewNotFound(t *testing.T) {
	s := newTestServer(t)

	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(s.URL, "http")+"/ws/view/nosuchslug000", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWebSocket_InboxPushesNewReplies(t *testing.T) {
	s := newTestServer(t)
	link, err := s.anon.Create(context.Background())
	require.NoError(t, err)

	_, body := s.do(t, http.MethodGet, "/api/v1/anonymous/"+link.Page.Slug+"/inbox?token="+link.OwnerToken, nil)
	inbox := decode[InboxResponse](t, body)

	conn := dial(t, s, "/ws/inbox?token="+inbox.StreamToken)
	first := readUntil(t, conn, services.MsgInbox)["data"].(map[string]any)
	assert.Empty(t, first["responses"])

	resp, _ := s.do(t, http.MethodPost, "/api/v1/anonymous/"+link.Page.Slug+"/responses", ReplyRequest{Response: "hello"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	pushed := readUntil(t, conn, services.MsgInbox)["data"].(map[string]any)
	responses := pushed["responses"].([]any)
	require.Len(t, responses, 1)
	assert.Equal(t, "hello", responses[0].(map[string]any)["response"])
}

func TestWebSocket_InboxRejectsBadToken(t *testing.T) {
	s := newTestServer(t)

	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(s.URL, "http")+"/ws/inbox?token=forged", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
