package e2e

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/daybook/internal/db"
	"github.com/daybook/internal/handler"
	"github.com/daybook/internal/router"
	"github.com/daybook/internal/secure"
	"github.com/daybook/internal/service"
	"github.com/gin-gonic/gin"
)

const masterKey = "e2e master key"

type e2eSuite struct {
	client  httpClient
	baseURL string
	dataDir string
}

type httpClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type localClient struct {
	handler http.Handler
}

func newLocalClient(handler http.Handler) *localClient {
	return &localClient{handler: handler}
}

func (c *localClient) Do(req *http.Request) (*http.Response, error) {
	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)
	return w.Result(), nil
}

func TestE2E_AllInterfaces(t *testing.T) {
	suite := newE2ESuite(t)

	t.Run("reminders", suite.testReminders)
	t.Run("tasks and comments", suite.testTasksAndComments)
	t.Run("knowledge base", suite.testKnowledgeBase)
	t.Run("projects", suite.testProjects)
	t.Run("vault", suite.testVault)
	t.Run("documents on disk", suite.testDocumentsOnDisk)
}

func newE2ESuite(t *testing.T) *e2eSuite {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dataDir := t.TempDir()
	stores, err := db.Open(dataDir)
	if err != nil {
		t.Fatalf("failed to open stores: %v", err)
	}

	api := handler.NewAPI(handler.Services{
		Reminders: service.NewReminderService(stores.Records, nil, false),
		Tasks:     service.NewTaskService(stores.Records),
		Comments:  service.NewCommentService(stores.Records),
		Knowledge: service.NewKnowledgeService(stores.Knowledge),
		Projects:  service.NewProjectService(stores.Projects),
		Vault:     service.NewVaultService(stores.Vault, secure.MinIterations, nil),
	}, nil)

	return &e2eSuite{
		client:  newLocalClient(router.SetupRouter(api, nil)),
		baseURL: "http://daybook.local",
		dataDir: dataDir,
	}
}

func (s *e2eSuite) testReminders(t *testing.T) {
	resp := s.mustRequestJSON(t, http.MethodPost, "/api/reminders", map[string]interface{}{
		"title": "月底对账", "date": "2024-01-31", "recurrence": "Monthly",
	})
	var created struct {
		Reminder db.Reminder `json:"reminder"`
	}
	s.expectStatus(t, resp, http.StatusOK)
	decodeJSON(t, resp, &created)
	if created.Reminder.ID == "" || created.Reminder.Recurrence != "Monthly" {
		t.Fatalf("unexpected created reminder: %+v", created.Reminder)
	}

	resp = s.mustRequest(t, http.MethodGet, "/api/reminders/projected?start=2024-01-01&end=2024-04-30", nil, nil)
	s.expectStatus(t, resp, http.StatusOK)
	var projected struct {
		Reminders []service.ScheduledReminder `json:"reminders"`
	}
	decodeJSON(t, resp, &projected)
	got := make([]string, 0, len(projected.Reminders))
	for _, r := range projected.Reminders {
		got = append(got, r.DisplayDate)
	}
	if strings.Join(got, ",") != "2024-01-31,2024-02-29,2024-03-31,2024-04-30" {
		t.Fatalf("unexpected projection: %v", got)
	}

	resp = s.mustRequestJSON(t, http.MethodPut, "/api/reminders/"+created.Reminder.ID, map[string]interface{}{
		"title": "月底对账", "date": "2024-01-31", "recurrence": "sometimes",
	})
	s.expectStatus(t, resp, http.StatusBadRequest)

	resp = s.mustRequest(t, http.MethodGet, "/api/reminders/upcoming?weeks=2", nil, nil)
	s.expectStatus(t, resp, http.StatusOK)

	resp = s.mustRequest(t, http.MethodGet, "/api/reminders/calendar", nil, nil)
	s.expectStatus(t, resp, http.StatusOK)

	resp = s.mustRequest(t, http.MethodDelete, "/api/reminders/does-not-exist", nil, nil)
	s.expectStatus(t, resp, http.StatusNotFound)
}

func (s *e2eSuite) testTasksAndComments(t *testing.T) {
	resp := s.mustRequestJSON(t, http.MethodPost, "/api/tasks", map[string]interface{}{"title": "续保"})
	s.expectStatus(t, resp, http.StatusOK)
	var created struct {
		Task db.Task `json:"task"`
	}
	decodeJSON(t, resp, &created)

	resp = s.mustRequestJSON(t, http.MethodPost, "/api/comments", map[string]interface{}{
		"item_type": "task", "item_id": created.Task.ID, "text": "比价三家",
	})
	s.expectStatus(t, resp, http.StatusOK)

	resp = s.mustRequest(t, http.MethodGet, "/api/comments/latest", nil, nil)
	s.expectStatus(t, resp, http.StatusOK)
	var feed struct {
		Comments []service.CommentFeedEntry `json:"comments"`
	}
	decodeJSON(t, resp, &feed)
	if len(feed.Comments) != 1 || feed.Comments[0].ItemTitle != "续保" || feed.Comments[0].ItemType != "Task" {
		t.Fatalf("unexpected comment feed: %+v", feed.Comments)
	}

	resp = s.mustRequestJSON(t, http.MethodPut, "/api/tasks/"+created.Task.ID+"/status", map[string]interface{}{"status": "Completed"})
	s.expectStatus(t, resp, http.StatusOK)

	resp = s.mustRequest(t, http.MethodGet, "/api/tasks?active=true", nil, nil)
	var active struct {
		Tasks []db.Task `json:"tasks"`
	}
	decodeJSON(t, resp, &active)
	if len(active.Tasks) != 0 {
		t.Fatalf("expected no active tasks, got %d", len(active.Tasks))
	}

	resp = s.mustRequest(t, http.MethodGet, "/api/all_data", nil, nil)
	s.expectStatus(t, resp, http.StatusOK)
	var all struct {
		Reminders []db.Reminder `json:"reminders"`
		Tasks     []db.Task     `json:"tasks"`
	}
	decodeJSON(t, resp, &all)
	if len(all.Reminders) != 1 || len(all.Tasks) != 1 {
		t.Fatalf("unexpected all_data payload: %d reminders, %d tasks", len(all.Reminders), len(all.Tasks))
	}
}

func (s *e2eSuite) testKnowledgeBase(t *testing.T) {
	for _, payload := range []map[string]interface{}{
		{"title": "Docker 速查", "data": "docker ps\n\ndocker logs"},
		{"title": "备忘", "data": "记得更新 docker 镜像"},
	} {
		resp := s.mustRequestJSON(t, http.MethodPost, "/api/kb", payload)
		s.expectStatus(t, resp, http.StatusOK)
	}

	resp := s.mustRequest(t, http.MethodGet, "/api/kb/search?q=docker", nil, nil)
	s.expectStatus(t, resp, http.StatusOK)
	var results struct {
		Items []db.KnowledgeItem `json:"items"`
	}
	decodeJSON(t, resp, &results)
	if len(results.Items) != 2 || results.Items[0].Title != "Docker 速查" {
		t.Fatalf("unexpected search results: %+v", results.Items)
	}

	resp = s.mustRequest(t, http.MethodGet, "/api/kb/"+results.Items[0].ID, nil, nil)
	s.expectStatus(t, resp, http.StatusOK)
	body := readBody(t, resp)
	if !strings.Contains(body, `"html"`) {
		t.Fatalf("expected rendered html in body: %s", body)
	}
}

func (s *e2eSuite) testProjects(t *testing.T) {
	resp := s.mustRequestJSON(t, http.MethodPost, "/api/projects", map[string]interface{}{
		"name": "马拉松备赛", "start_date": "2024-06-01", "end_date": "2024-10-31",
	})
	s.expectStatus(t, resp, http.StatusOK)
	var created struct {
		Project db.Project `json:"project"`
	}
	decodeJSON(t, resp, &created)
	base := "/api/projects/" + created.Project.ID

	resp = s.mustRequestJSON(t, http.MethodPost, base+"/tasks", map[string]interface{}{
		"name": "基础期", "start_date": "2024-06-01", "end_date": "2024-07-31",
	})
	s.expectStatus(t, resp, http.StatusOK)
	var parent struct {
		Task db.ProjectTask `json:"task"`
	}
	decodeJSON(t, resp, &parent)

	resp = s.mustRequestJSON(t, http.MethodPost, base+"/tasks", map[string]interface{}{
		"parent_id": parent.Task.ID, "name": "长距离", "start_date": "2024-07-01", "end_date": "2024-08-15",
	})
	s.expectStatus(t, resp, http.StatusConflict)

	resp = s.mustRequestJSON(t, http.MethodPost, base+"/tasks", map[string]interface{}{
		"parent_id": parent.Task.ID, "name": "长距离", "start_date": "2024-07-01", "end_date": "2024-07-31",
	})
	s.expectStatus(t, resp, http.StatusOK)
	var child struct {
		Task db.ProjectTask `json:"task"`
	}
	decodeJSON(t, resp, &child)

	resp = s.mustRequestJSON(t, http.MethodPut, base+"/tasks/"+parent.Task.ID+"/status", map[string]interface{}{"status": "Completed"})
	s.expectStatus(t, resp, http.StatusConflict)

	resp = s.mustRequestJSON(t, http.MethodPost, base+"/tasks/"+child.Task.ID+"/comments", map[string]interface{}{"text": "配速 6:00"})
	s.expectStatus(t, resp, http.StatusOK)

	resp = s.mustRequest(t, http.MethodDelete, base+"/tasks/"+parent.Task.ID, nil, nil)
	s.expectStatus(t, resp, http.StatusOK)

	resp = s.mustRequest(t, http.MethodGet, base, nil, nil)
	s.expectStatus(t, resp, http.StatusOK)
	var fetched struct {
		Project db.Project `json:"project"`
	}
	decodeJSON(t, resp, &fetched)
	if len(fetched.Project.Tasks) != 0 {
		t.Fatalf("expected subtree removal, got %+v", fetched.Project.Tasks)
	}
}

func (s *e2eSuite) testVault(t *testing.T) {
	resp := s.mustRequest(t, http.MethodGet, "/api/secure/status", nil, nil)
	var status struct {
		Initialized bool `json:"initialized"`
	}
	decodeJSON(t, resp, &status)
	if status.Initialized {
		t.Fatal("vault should start uninitialized")
	}

	resp = s.mustRequestJSON(t, http.MethodPost, "/api/secure/init", map[string]interface{}{"master_key": masterKey})
	s.expectStatus(t, resp, http.StatusOK)

	resp = s.mustRequestJSON(t, http.MethodPost, "/api/secure/add", map[string]interface{}{
		"master_key": masterKey,
		"item":       map[string]interface{}{"title": "路由器", "user_id": "admin", "password": "router-pass", "url": "http://192.168.1.1"},
	})
	s.expectStatus(t, resp, http.StatusOK)
	var added struct {
		Item service.VaultItem `json:"item"`
	}
	decodeJSON(t, resp, &added)

	resp = s.mustRequestJSON(t, http.MethodPost, "/api/secure/items", map[string]interface{}{"master_key": "guess"})
	s.expectStatus(t, resp, http.StatusUnauthorized)

	resp = s.mustRequestJSON(t, http.MethodPut, "/api/secure/"+added.Item.ID, map[string]interface{}{
		"master_key": masterKey,
		"item":       map[string]interface{}{"title": "路由器", "user_id": "admin", "password": "new-pass"},
	})
	s.expectStatus(t, resp, http.StatusOK)

	resp = s.mustRequestJSON(t, http.MethodPost, "/api/secure/items", map[string]interface{}{"master_key": masterKey})
	s.expectStatus(t, resp, http.StatusOK)
	var listed struct {
		Items []service.VaultItem `json:"items"`
	}
	decodeJSON(t, resp, &listed)
	if len(listed.Items) != 1 || listed.Items[0].Password != "new-pass" {
		t.Fatalf("unexpected vault items: %+v", listed.Items)
	}
}

func (s *e2eSuite) testDocumentsOnDisk(t *testing.T) {
	for _, name := range []string{db.RecordsFile, db.KnowledgeFile, db.VaultFile, db.ProjectsFile} {
		raw, err := os.ReadFile(filepath.Join(s.dataDir, name))
		if err != nil {
			t.Fatalf("expected %s to exist: %v", name, err)
		}
		if !json.Valid(raw) {
			t.Fatalf("%s is not valid json", name)
		}
	}

	raw, err := os.ReadFile(filepath.Join(s.dataDir, db.VaultFile))
	if err != nil {
		t.Fatalf("failed to read vault: %v", err)
	}
	if bytes.Contains(raw, []byte("new-pass")) || bytes.Contains(raw, []byte("router-pass")) {
		t.Fatal("vault document contains plaintext secrets")
	}
}

func (s *e2eSuite) expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		body := readBody(t, resp)
		t.Fatalf("expected status %d, got %d: %s", want, resp.StatusCode, body)
	}
}

func (s *e2eSuite) mustRequest(t *testing.T, method, path string, body io.Reader, headers map[string]string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, s.baseURL+path, body)
	if err != nil {
		t.Fatalf("failed to build request %s %s: %v", method, path, err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, path, err)
	}
	return resp
}

func (s *e2eSuite) mustRequestJSON(t *testing.T, method, path string, payload map[string]interface{}) *http.Response {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}
	headers := map[string]string{"Content-Type": "application/json"}
	return s.mustRequest(t, method, path, bytes.NewReader(data), headers)
}

func decodeJSON(t *testing.T, resp *http.Response, dst interface{}) {
	t.Helper()
	body := readBody(t, resp)
	if err := json.Unmarshal([]byte(body), dst); err != nil {
		t.Fatalf("failed to decode json: %v\nbody=%s", err, body)
	}
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	return string(data)
}
