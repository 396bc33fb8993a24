// Package fakegenie provides an in-memory Genie workspace for tests.
//
// It serves the Genie spaces, permissions and statement execution endpoints
// over HTTP, enforces the server-side rules of the serialized space schema
// (sorted sections, one text instruction, thirty data sources) and supports
// injecting failures and concurrent edits.
package fakegenie

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hashicorp-forge/geniectl/pkg/genie"
	"github.com/hashicorp-forge/geniectl/pkg/serialized"
)

// DefaultToken is the bearer token the server accepts unless Token is
// changed.
const DefaultToken = "dapi-fake-token"

// DefaultOwner is the user that owns every space created on the server.
const DefaultOwner = "owner@example.com"

// Failure is a canned error response for matching requests.
type Failure struct {
	// Method and Path select requests; empty matches any. Path is a prefix.
	Method string
	Path   string

	StatusCode int
	ErrorCode  string
	Message    string

	// Times is how many matching requests fail. Zero means one.
	Times int
}

func (f *Failure) matches(r *http.Request) bool {
	if f.Method != "" && f.Method != r.Method {
		return false
	}
	return f.Path == "" || strings.HasPrefix(r.URL.Path, f.Path)
}

type spaceEntry struct {
	space   genie.Space
	acl     []genie.AccessControlRequest
	exports int
}

// Server is a fake workspace. Configure the exported fields before the
// first request.
type Server struct {
	// Token is the accepted bearer token.
	Token string

	// PageSize is the number of spaces per list page.
	PageSize int

	// StatementHandler answers statement executions. The default succeeds
	// every statement with an empty result.
	StatementHandler func(req genie.ExecuteStatementRequest) genie.StatementResponse

	// AfterExport runs after an export response has been prepared and
	// before it is written, with the number of exports of the space so far.
	// Use it to simulate another writer editing the space.
	AfterExport func(s *Server, spaceID string, n int)

	srv *httptest.Server

	mu         sync.Mutex
	spaces     map[string]*spaceEntry
	order      []string
	statements []genie.ExecuteStatementRequest
	failures   []*Failure
	requests   map[string]int
}

// NewServer starts a fake workspace. Call Close when done.
func NewServer() *Server {
	s := &Server{
		Token:    DefaultToken,
		PageSize: 50,
		spaces:   map[string]*spaceEntry{},
		requests: map[string]int{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/2.0/genie/spaces", s.handleListSpaces)
	mux.HandleFunc("POST /api/2.0/genie/spaces", s.handleCreateSpace)
	mux.HandleFunc("GET /api/2.0/genie/spaces/{id}", s.handleGetSpace)
	mux.HandleFunc("PATCH /api/2.0/genie/spaces/{id}", s.handleUpdateSpace)
	mux.HandleFunc("DELETE /api/2.0/genie/spaces/{id}", s.handleDeleteSpace)
	mux.HandleFunc("GET /api/2.0/permissions/genie/{id}", s.handleGetPermissions)
	mux.HandleFunc("GET /api/2.0/permissions/genie/{id}/permissionLevels", s.handlePermissionLevels)
	mux.HandleFunc("PATCH /api/2.0/permissions/genie/{id}", s.handleWritePermissions)
	mux.HandleFunc("PUT /api/2.0/permissions/genie/{id}", s.handleWritePermissions)
	mux.HandleFunc("POST /api/2.0/sql/statements/", s.handleExecute)

	s.srv = httptest.NewServer(s.middleware(mux))
	return s
}

// URL is the workspace host.
func (s *Server) URL() string {
	return s.srv.URL
}

// Close shuts the server down.
func (s *Server) Close() {
	s.srv.Close()
}

// Config returns a client config pointing at the server.
func (s *Server) Config() *genie.Config {
	cfg := genie.DefaultConfig()
	cfg.Host = s.URL()
	cfg.Auth = genie.TokenAuth(s.Token)
	cfg.WarehouseID = "fake-warehouse"
	cfg.RetryDelay = time.Millisecond
	return cfg
}

// FailNext makes matching requests fail.
func (s *Server) FailNext(f Failure) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f.Times <= 0 {
		f.Times = 1
	}
	if f.StatusCode == 0 {
		f.StatusCode = http.StatusInternalServerError
	}
	s.failures = append(s.failures, &f)
}

// Requests returns how many requests were received for method and an exact
// path.
func (s *Server) Requests(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[method+" "+path]
}

// AddSpace stores a space directly and returns its id.
func (s *Server) AddSpace(space genie.Space) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addSpaceLocked(space)
}

func (s *Server) addSpaceLocked(space genie.Space) string {
	if space.SpaceID == "" {
		space.SpaceID = strings.ReplaceAll(uuid.NewString(), "-", "")
	}
	s.spaces[space.SpaceID] = &spaceEntry{
		space: space,
		acl:   []genie.AccessControlRequest{genie.GrantUser(DefaultOwner, genie.CanManage)},
	}
	s.order = append(s.order, space.SpaceID)
	return space.SpaceID
}

// SerializedSpace returns the stored document of a space.
func (s *Server) SerializedSpace(spaceID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.spaces[spaceID]; ok {
		return e.space.SerializedSpace
	}
	return ""
}

// SetSerializedSpace replaces the stored document without any checks.
func (s *Server) SetSerializedSpace(spaceID, doc string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.spaces[spaceID]; ok {
		e.space.SerializedSpace = doc
	}
}

// Statements returns every executed statement in order.
func (s *Server) Statements() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.statements))
	for _, st := range s.statements {
		out = append(out, st.Statement)
	}
	return out
}

// SpaceCount returns the number of stored spaces.
func (s *Server) SpaceCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.spaces)
}

func (s *Server) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests[r.Method+" "+r.URL.Path]++
		var failure *Failure
		for i, f := range s.failures {
			if f.matches(r) {
				failure = f
				if f.Times--; f.Times <= 0 {
					s.failures = append(s.failures[:i], s.failures[i+1:]...)
				}
				break
			}
		}
		s.mu.Unlock()

		if r.Header.Get("Authorization") != "Bearer "+s.Token {
			writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "invalid access token")
			return
		}
		if failure != nil {
			code := failure.ErrorCode
			if code == "" {
				code = "INTERNAL_ERROR"
			}
			msg := failure.Message
			if msg == "" {
				msg = "injected failure"
			}
			writeError(w, failure.StatusCode, code, msg)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, map[string]string{"error_code": code, "message": msg})
}

func notFound(w http.ResponseWriter, spaceID string) {
	writeError(w, http.StatusNotFound, "RESOURCE_DOES_NOT_EXIST",
		fmt.Sprintf("Genie space %s does not exist.", spaceID))
}

// checkDocument applies the rules the real service enforces on writes.
func checkDocument(doc string) error {
	parsed, err := serialized.Parse([]byte(doc))
	if err != nil {
		return err
	}
	if parsed.Version() != serialized.Version {
		return fmt.Errorf("unsupported version %d", parsed.Version())
	}
	if err := parsed.CheckOrder(); err != nil {
		return err
	}
	return parsed.Validate()
}

func (s *Server) handleListSpaces(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := 0
	if token := r.URL.Query().Get("page_token"); token != "" {
		n, err := strconv.Atoi(token)
		if err != nil || n < 0 || n > len(s.order) {
			writeError(w, http.StatusBadRequest, "INVALID_PARAMETER_VALUE", "invalid page_token")
			return
		}
		start = n
	}
	end := start + s.PageSize
	if end > len(s.order) {
		end = len(s.order)
	}

	resp := genie.ListSpacesResponse{Spaces: []genie.Space{}}
	for _, id := range s.order[start:end] {
		space := s.spaces[id].space
		space.SerializedSpace = ""
		resp.Spaces = append(resp.Spaces, space)
	}
	if end < len(s.order) {
		resp.NextPageToken = strconv.Itoa(end)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateSpace(w http.ResponseWriter, r *http.Request) {
	var req genie.CreateSpaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "MALFORMED_REQUEST", err.Error())
		return
	}
	if req.Title == "" || req.WarehouseID == "" {
		writeError(w, http.StatusBadRequest, "INVALID_PARAMETER_VALUE", "title and warehouse_id are required")
		return
	}
	if err := checkDocument(req.SerializedSpace); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_PARAMETER_VALUE", err.Error())
		return
	}

	s.mu.Lock()
	id := s.addSpaceLocked(genie.Space{
		Title:           req.Title,
		Description:     req.Description,
		WarehouseID:     req.WarehouseID,
		SerializedSpace: req.SerializedSpace,
	})
	space := s.spaces[id].space
	s.mu.Unlock()

	space.SerializedSpace = ""
	writeJSON(w, http.StatusOK, space)
}

func (s *Server) handleGetSpace(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	export := r.URL.Query().Get("include_serialized_space") == "true"

	s.mu.Lock()
	e, ok := s.spaces[id]
	if !ok {
		s.mu.Unlock()
		notFound(w, id)
		return
	}
	space := e.space
	if export {
		e.exports++
	} else {
		space.SerializedSpace = ""
	}
	n := e.exports
	hook := s.AfterExport
	s.mu.Unlock()

	if export && hook != nil {
		hook(s, id, n)
	}
	writeJSON(w, http.StatusOK, space)
}

func (s *Server) handleUpdateSpace(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req genie.UpdateSpaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "MALFORMED_REQUEST", err.Error())
		return
	}
	if req.SerializedSpace != "" {
		if err := checkDocument(req.SerializedSpace); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_PARAMETER_VALUE", err.Error())
			return
		}
	}

	s.mu.Lock()
	e, ok := s.spaces[id]
	if !ok {
		s.mu.Unlock()
		notFound(w, id)
		return
	}
	if req.Title != "" {
		e.space.Title = req.Title
	}
	if req.Description != "" {
		e.space.Description = req.Description
	}
	if req.WarehouseID != "" {
		e.space.WarehouseID = req.WarehouseID
	}
	if req.SerializedSpace != "" {
		e.space.SerializedSpace = req.SerializedSpace
	}
	space := e.space
	s.mu.Unlock()

	space.SerializedSpace = ""
	writeJSON(w, http.StatusOK, space)
}

func (s *Server) handleDeleteSpace(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.spaces[id]; !ok {
		notFound(w, id)
		return
	}
	delete(s.spaces, id)
	for i, other := range s.order {
		if other == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

// workspaceAdmins always holds CAN_MANAGE through inheritance and cannot be
// removed by replacing the ACL.
var workspaceAdmins = genie.AccessControlResponse{
	GroupName: "admins",
	AllPermissions: []genie.Permission{{
		PermissionLevel:     genie.CanManage,
		Inherited:           true,
		InheritedFromObject: []string{"/directories/"},
	}},
}

func (s *Server) permissionsLocked(id string, e *spaceEntry) genie.ObjectPermissions {
	perms := genie.ObjectPermissions{
		ObjectID:   "genie/" + id,
		ObjectType: "genie",
	}

	admins := workspaceAdmins
	admins.AllPermissions = append([]genie.Permission(nil), workspaceAdmins.AllPermissions...)
	for _, entry := range e.acl {
		if entry.GroupName == "admins" {
			admins.AllPermissions = append(admins.AllPermissions, genie.Permission{PermissionLevel: entry.PermissionLevel})
			continue
		}
		perms.AccessControlList = append(perms.AccessControlList, genie.AccessControlResponse{
			UserName:             entry.UserName,
			GroupName:            entry.GroupName,
			ServicePrincipalName: entry.ServicePrincipalName,
			AllPermissions:       []genie.Permission{{PermissionLevel: entry.PermissionLevel}},
		})
	}
	perms.AccessControlList = append(perms.AccessControlList, admins)

	sort.SliceStable(perms.AccessControlList, func(i, j int) bool {
		return perms.AccessControlList[i].Principal() < perms.AccessControlList[j].Principal()
	})
	return perms
}

func (s *Server) handleGetPermissions(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.spaces[id]
	if !ok {
		notFound(w, id)
		return
	}
	writeJSON(w, http.StatusOK, s.permissionsLocked(id, e))
}

func (s *Server) handlePermissionLevels(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	s.mu.Lock()
	_, ok := s.spaces[id]
	s.mu.Unlock()
	if !ok {
		notFound(w, id)
		return
	}

	writeJSON(w, http.StatusOK, genie.PermissionLevelsResponse{
		PermissionLevels: []genie.PermissionLevelDescription{
			{PermissionLevel: genie.CanRead, Description: "Can view the space"},
			{PermissionLevel: genie.CanRun, Description: "Can ask questions in the space"},
			{PermissionLevel: genie.CanEdit, Description: "Can edit the space configuration"},
			{PermissionLevel: genie.CanManage, Description: "Can manage the space and its permissions"},
		},
	})
}

func (s *Server) handleWritePermissions(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var body struct {
		AccessControlList []genie.AccessControlRequest `json:"access_control_list"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "MALFORMED_REQUEST", err.Error())
		return
	}
	for _, entry := range body.AccessControlList {
		if err := entry.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_PARAMETER_VALUE", err.Error())
			return
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.spaces[id]
	if !ok {
		notFound(w, id)
		return
	}

	if r.Method == http.MethodPut {
		e.acl = append([]genie.AccessControlRequest(nil), body.AccessControlList...)
	} else {
		for _, entry := range body.AccessControlList {
			replaced := false
			for i, existing := range e.acl {
				if existing.Principal() == entry.Principal() {
					e.acl[i] = entry
					replaced = true
					break
				}
			}
			if !replaced {
				e.acl = append(e.acl, entry)
			}
		}
	}
	writeJSON(w, http.StatusOK, s.permissionsLocked(id, e))
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	var req genie.ExecuteStatementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "MALFORMED_REQUEST", err.Error())
		return
	}
	if req.WarehouseID == "" {
		writeError(w, http.StatusBadRequest, "INVALID_PARAMETER_VALUE", "warehouse_id is required")
		return
	}

	s.mu.Lock()
	s.statements = append(s.statements, req)
	handler := s.StatementHandler
	s.mu.Unlock()

	var resp genie.StatementResponse
	if handler != nil {
		resp = handler(req)
	} else {
		resp = genie.StatementResponse{Status: genie.StatementStatus{State: genie.StatementSucceeded}}
	}
	if resp.StatementID == "" {
		resp.StatementID = uuid.NewString()
	}
	writeJSON(w, http.StatusOK, resp)
}

// Result builds a succeeded statement response with string columns.
func Result(columns []string, rows ...[]string) genie.StatementResponse {
	manifest := &genie.ResultManifest{Format: "JSON_ARRAY"}
	manifest.Schema.ColumnCount = len(columns)
	for i, name := range columns {
		manifest.Schema.Columns = append(manifest.Schema.Columns, genie.Column{Name: name, TypeName: "STRING", Position: i})
	}

	data := &genie.ResultData{RowCount: int64(len(rows))}
	for _, row := range rows {
		values := make([]*string, len(row))
		for i := range row {
			v := row[i]
			values[i] = &v
		}
		data.DataArray = append(data.DataArray, values)
	}
	manifest.TotalRowCount = int64(len(rows))

	return genie.StatementResponse{
		Status:   genie.StatementStatus{State: genie.StatementSucceeded},
		Manifest: manifest,
		Result:   data,
	}
}

// Failed builds a failed statement response.
func Failed(code, msg string) genie.StatementResponse {
	return genie.StatementResponse{
		Status: genie.StatementStatus{
			State: genie.StatementFailed,
			Error: &genie.StatementError{ErrorCode: code, Message: msg},
		},
	}
}

// LookupEnv resolves the workspace environment variables to this server,
// for commands that read their connection settings from the environment.
func (s *Server) LookupEnv(key string) (string, bool) {
	switch key {
	case "DATABRICKS_HOST":
		return s.URL(), true
	case "DATABRICKS_TOKEN":
		return s.Token, true
	case "DATABRICKS_WAREHOUSE_ID":
		return "fake-warehouse", true
	}
	return "", false
}
